package models

import "time"

// ServiceOrder is a row of the service order log. The log is maintained by another
// system; this service only reads it.
type ServiceOrder struct {
	OrderID      string    `json:"order_id"`
	CompletedAt  time.Time `json:"completed_at"`
	SerialNumber string    `json:"serial_number"`
	Observations string    `json:"observations"`
}

// StopStatus is a stop annotated with its completion state
type StopStatus struct {
	Stop
	Complete    bool       `json:"complete"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RouteProgress is the completion summary of a route
type RouteProgress struct {
	RouteID int          `json:"route_id"`
	Done    int          `json:"done"`
	Total   int          `json:"total"`
	Percent int          `json:"percent"`
	Stops   []StopStatus `json:"stops"`
}
