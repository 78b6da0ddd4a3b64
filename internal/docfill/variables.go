package docfill

import (
	"fmt"
	"strings"
	"time"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// DateLayout is the date format printed on service documents
const DateLayout = "02/01/2006"

var warrantyLabels = map[string]string{
	"LP":   "Em garantia",
	"IW":   "Em garantia",
	"OW":   "Fora de garantia",
	"VOID": "Garantia anulada",
}

// WarrantyLabel turns a warranty code into the text printed on documents
func WarrantyLabel(code string) string {
	if label, ok := warrantyLabels[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return label
	}
	return code
}

// ReplacedParts lists the parts of a stop as "CODE xQTY", comma separated
func ReplacedParts(parts []models.Part) string {
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, fmt.Sprintf("%s x%d", p.Code, p.Quantity))
	}
	return strings.Join(items, ", ")
}

// BuildVariables computes the variable context for one stop. order may be nil when
// the service order log has no entry yet; the variables only it provides are then
// left out so the document shows their placeholders.
func BuildVariables(route *models.Route, stop *models.Stop, order *models.ServiceOrder, now time.Time) Variables {
	vars := Variables{
		models.VarOrderID:       stop.OrderID,
		models.VarCustomerName:  stop.CustomerName,
		models.VarProductModel:  stop.Model,
		models.VarCity:          stop.City,
		models.VarNeighborhood:  stop.Neighborhood,
		models.VarRequestDate:   stop.RequestDate,
		models.VarWarrantyType:  WarrantyLabel(stop.WarrantyCode),
		models.VarReplacedParts: ReplacedParts(stop.Parts),
		models.VarObservations:  stop.StatusComment,
		models.VarCurrentDate:   now.Format(DateLayout),
	}
	if route != nil && route.TechnicianName != "" {
		vars[models.VarTechnicianName] = route.TechnicianName
	}
	if order != nil {
		vars[models.VarSerialNumber] = order.SerialNumber
		if order.Observations != "" {
			vars[models.VarObservations] = order.Observations
		}
	}
	return vars
}
