// Package completion decides which stops of a route have been serviced, using the
// service order log kept by the field-service system.
package completion

import (
	"time"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// CompletedAfter reports whether an order completed at completedAt counts for a
// route created at routeCreatedAt. Only completions strictly after the route was
// created count, so an older order that reused the same number never marks a new
// stop as done.
func CompletedAfter(completedAt, routeCreatedAt time.Time) bool {
	return completedAt.After(routeCreatedAt)
}

// Index groups order log entries by order id
type Index map[string][]time.Time

// NewIndex builds an Index from log entries
func NewIndex(entries []models.ServiceOrder) Index {
	idx := make(Index, len(entries))
	for _, e := range entries {
		idx[e.OrderID] = append(idx[e.OrderID], e.CompletedAt)
	}
	return idx
}

// CompletedAt returns the earliest completion of orderID that counts for a route
// created at routeCreatedAt.
func (idx Index) CompletedAt(orderID string, routeCreatedAt time.Time) (time.Time, bool) {
	var (
		first time.Time
		found bool
	)
	for _, at := range idx[orderID] {
		if !CompletedAfter(at, routeCreatedAt) {
			continue
		}
		if !found || at.Before(first) {
			first, found = at, true
		}
	}
	return first, found
}

// IsComplete reports whether stop is done for a route created at routeCreatedAt
func IsComplete(stop models.Stop, routeCreatedAt time.Time, entries []models.ServiceOrder) bool {
	for _, e := range entries {
		if e.OrderID == stop.OrderID && CompletedAfter(e.CompletedAt, routeCreatedAt) {
			return true
		}
	}
	return false
}

// Ratio returns done/total, or 0 for an empty route
func Ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// Evaluate annotates every stop of route with its completion state
func Evaluate(route *models.Route, entries []models.ServiceOrder) models.RouteProgress {
	idx := NewIndex(entries)

	progress := models.RouteProgress{
		RouteID: route.ID,
		Total:   len(route.Stops),
		Stops:   make([]models.StopStatus, 0, len(route.Stops)),
	}
	for _, stop := range route.Stops {
		status := models.StopStatus{Stop: stop}
		if at, ok := idx.CompletedAt(stop.OrderID, route.CreatedAt); ok {
			status.Complete = true
			status.CompletedAt = &at
			progress.Done++
		}
		progress.Stops = append(progress.Stops, status)
	}
	progress.Percent = int(Ratio(progress.Done, progress.Total) * 100)
	return progress
}
