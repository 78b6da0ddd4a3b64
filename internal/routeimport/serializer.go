package routeimport

import (
	"strconv"
	"strings"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// HeaderPartSlots is the minimum number of part groups in the serialized header
const HeaderPartSlots = 5

// SerializedHeader is the header line written by Serialize for stops with at most
// HeaderPartSlots parts
var SerializedHeader = buildHeader(HeaderPartSlots)

func buildHeader(slots int) string {
	cells := make([]string, 0, int(fieldCount)+3*slots)
	for _, col := range columns {
		cells = append(cells, col.Header)
	}
	for i := 0; i < slots; i++ {
		cells = append(cells, partCodeHeader, partDescriptionHeader, partQuantityHeader)
	}
	return strings.Join(cells, "\t")
}

// Serialize renders stops in the import format so they can be edited as text.
// Stop tags and tracking codes are not part of the format. Lines end after the
// last part of each stop, so row length varies. The header gets one part group
// per part of the longest stop, never fewer than HeaderPartSlots.
func Serialize(stops []models.Stop) string {
	slots := HeaderPartSlots
	for _, s := range stops {
		slots = max(slots, len(s.Parts))
	}

	var b strings.Builder
	b.WriteString(buildHeader(slots))

	for _, s := range stops {
		cells := []string{
			s.OrderID,
			s.CustomerName,
			s.City,
			s.Neighborhood,
			s.State,
			s.Model,
			s.Turnaround,
			s.RequestDate,
			s.FirstVisit,
			s.WarrantyCode,
			s.StatusComment,
		}
		for _, p := range s.Parts {
			cells = append(cells, p.Code, p.Description, strconv.Itoa(p.Quantity))
		}
		for i := range cells {
			cells[i] = flatten(cells[i])
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(cells, "\t"))
	}
	return b.String()
}

// flatten removes characters that would split a cell when the text is parsed again
func flatten(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
