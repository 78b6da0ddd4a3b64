package models

import "time"

// StopTag classifies what the technician does at a stop
type StopTag string

const (
	StopTagStandard StopTag = "standard"
	StopTagPickup   StopTag = "pickup"   // collect the unit for bench repair
	StopTagDelivery StopTag = "delivery" // return a repaired unit
)

// Valid reports whether t is one of the known stop tags
func (t StopTag) Valid() bool {
	switch t {
	case StopTagStandard, StopTagPickup, StopTagDelivery:
		return true
	}
	return false
}

// RouteType is the coverage area of a route
type RouteType string

const (
	RouteTypeUrban    RouteType = "urban"
	RouteTypeRegional RouteType = "regional"
)

func (t RouteType) Valid() bool {
	return t == RouteTypeUrban || t == RouteTypeRegional
}

// Part is a replacement component required at a stop
type Part struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity"`
	TrackingCode string `json:"tracking_code"` // filled by operators after import
}

// Stop is one planned visit, identified by its service order number
type Stop struct {
	OrderID       string  `json:"order_id"`
	CustomerName  string  `json:"customer_name"`
	City          string  `json:"city"`
	Neighborhood  string  `json:"neighborhood"`
	State         string  `json:"state"`
	Model         string  `json:"model"`
	Turnaround    string  `json:"turnaround"`     // TAT window as exported by the service system
	RequestDate   string  `json:"request_date"`   // kept as typed by the operator
	FirstVisit    string  `json:"first_visit"`    // kept as typed by the operator
	WarrantyCode  string  `json:"warranty_code"`  // e.g. LP (in warranty) / OW (out of warranty)
	StatusComment string  `json:"status_comment"`
	Tag           StopTag `json:"tag"`
	Parts         []Part  `json:"parts"`
}

// Route is an ordered set of stops assigned to one technician
type Route struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	TechnicianID   int        `json:"technician_id"`
	TechnicianName string     `json:"technician_name"` // Denormalized for display and documents
	DepartureDate  *time.Time `json:"departure_date,omitempty"`
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
	RouteType      RouteType  `json:"route_type"`
	VehiclePlate   string     `json:"vehicle_plate"`
	Active         bool       `json:"active"` // false once finalized
	Stops          []Stop     `json:"stops"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FindStop returns the stop with the given order id, or nil
func (r *Route) FindStop(orderID string) *Stop {
	for i := range r.Stops {
		if r.Stops[i].OrderID == orderID {
			return &r.Stops[i]
		}
	}
	return nil
}

// OrderIDs lists the order ids of the route in stop order
func (r *Route) OrderIDs() []string {
	ids := make([]string, 0, len(r.Stops))
	for _, s := range r.Stops {
		ids = append(ids, s.OrderID)
	}
	return ids
}

// RouteMetadata is the route-level part of create/update requests
type RouteMetadata struct {
	Name           string     `json:"name"`
	TechnicianID   int        `json:"technician_id"`
	TechnicianName string     `json:"technician_name"`
	DepartureDate  *time.Time `json:"departure_date,omitempty"`
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
	RouteType      RouteType  `json:"route_type"`
	VehiclePlate   string     `json:"vehicle_plate"`
}

// CreateRouteRequest represents the request body for creating a route from pasted text
type CreateRouteRequest struct {
	RouteMetadata
	Text string `json:"text"`
}

// UpdateRouteRequest represents the request body for editing a route.
// Tags holds classification changes made explicitly in the edit form, keyed by order id.
type UpdateRouteRequest struct {
	RouteMetadata
	Text string             `json:"text"`
	Tags map[string]StopTag `json:"tags,omitempty"`
}

// ImportPreviewRequest carries pasted text to parse without saving
type ImportPreviewRequest struct {
	Text string `json:"text"`
}

// ImportPreview is the parse result shown before a route is saved
type ImportPreview struct {
	Stops      []Stop   `json:"stops"`
	Rows       int      `json:"rows"`
	Skipped    int      `json:"skipped"`
	Duplicates []string `json:"duplicates,omitempty"` // order ids listed more than once
}

// TrackingCodeRequest sets the shipment tracking code of one part
type TrackingCodeRequest struct {
	TrackingCode string `json:"tracking_code"`
}

// StopTagRequest changes the classification of one stop
type StopTagRequest struct {
	Tag StopTag `json:"tag"`
}
