package routeimport

import (
	"strconv"
	"strings"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// Result is the outcome of parsing pasted route text.
// Rows counts non-blank data lines; Skipped counts those dropped for lacking an order id.
type Result struct {
	Stops   []models.Stop
	Rows    int
	Skipped int
}

// Parse extracts stops from pasted text whose first line is the header.
// Extraction is best effort: rows without an order id and part groups with a
// missing or non-positive quantity are left out, and nothing here returns an error.
// Text without a header yields no stops.
func Parse(text string) Result {
	res := Result{Stops: []models.Stop{}}

	lines := splitLines(text)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return res
	}
	cm := ResolveColumns(lines[0])

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		res.Rows++

		stop, ok := parseRow(splitColumns(line), cm)
		if !ok {
			res.Skipped++
			continue
		}
		res.Stops = append(res.Stops, stop)
	}
	return res
}

// ParseStops is Parse without the row counts
func ParseStops(text string) []models.Stop {
	return Parse(text).Stops
}

func parseRow(cells []string, cm ColumnMap) (models.Stop, bool) {
	get := func(f Field) string {
		return cell(cells, cm.Index(f))
	}

	orderID := get(FieldOrderID)
	if orderID == "" {
		return models.Stop{}, false
	}

	stop := models.Stop{
		OrderID:       orderID,
		CustomerName:  get(FieldCustomerName),
		City:          get(FieldCity),
		Neighborhood:  get(FieldNeighborhood),
		State:         get(FieldState),
		Model:         get(FieldModel),
		Turnaround:    get(FieldTurnaround),
		RequestDate:   get(FieldRequestDate),
		FirstVisit:    get(FieldFirstVisit),
		WarrantyCode:  get(FieldWarranty),
		StatusComment: get(FieldStatusComment),
		Tag:           models.StopTagStandard,
		Parts:         []models.Part{},
	}

	for _, g := range cm.Groups {
		code := cell(cells, g.Code)
		qty, err := strconv.Atoi(cell(cells, g.Quantity))
		if code == "" || err != nil || qty <= 0 {
			continue
		}
		stop.Parts = append(stop.Parts, models.Part{
			Code:        code,
			Description: cell(cells, g.Description),
			Quantity:    qty,
		})
	}
	return stop, true
}

// cell returns the trimmed value at i, or "" when i is unmapped or past the end of the row
func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// DuplicateOrderIDs lists order ids that appear on more than one stop, in first-seen order
func DuplicateOrderIDs(stops []models.Stop) []string {
	seen := make(map[string]int, len(stops))
	var dups []string
	for _, s := range stops {
		seen[s.OrderID]++
		if seen[s.OrderID] == 2 {
			dups = append(dups, s.OrderID)
		}
	}
	return dups
}
