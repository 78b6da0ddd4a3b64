package models

import "time"

// FieldType is the kind of value drawn by a field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeCheckbox FieldType = "checkbox"
)

// VariableKey names a value computed at fill time instead of typed by the operator
type VariableKey string

const (
	VarOrderID        VariableKey = "order_id"
	VarCustomerName   VariableKey = "customer_name"
	VarProductModel   VariableKey = "product_model"
	VarSerialNumber   VariableKey = "serial_number"
	VarCity           VariableKey = "city"
	VarNeighborhood   VariableKey = "neighborhood"
	VarRequestDate    VariableKey = "request_date"
	VarWarrantyType   VariableKey = "warranty_type"
	VarReplacedParts  VariableKey = "replaced_parts"
	VarObservations   VariableKey = "observations"
	VarTechnicianName VariableKey = "technician_name"
	VarCurrentDate    VariableKey = "current_date"
)

// VariableKeys is the closed set of bindable variables
var VariableKeys = []VariableKey{
	VarOrderID,
	VarCustomerName,
	VarProductModel,
	VarSerialNumber,
	VarCity,
	VarNeighborhood,
	VarRequestDate,
	VarWarrantyType,
	VarReplacedParts,
	VarObservations,
	VarTechnicianName,
	VarCurrentDate,
}

// Valid reports whether k belongs to VariableKeys
func (k VariableKey) Valid() bool {
	for _, v := range VariableKeys {
		if v == k {
			return true
		}
	}
	return false
}

// DocumentTemplate is an uploaded PDF whose fields are filled programmatically
type DocumentTemplate struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	FileKey   string    `json:"file_key"` // object key in the template bucket
	CreatedAt time.Time `json:"created_at"`
}

// FieldDefinition places one named value on a template page.
// X and Y use a top-left origin, in the same units as the page size.
type FieldDefinition struct {
	ID          string      `json:"id"`
	TemplateID  int         `json:"template_id"`
	Name        string      `json:"name"`
	Type        FieldType   `json:"type"`
	Page        int         `json:"page"` // 1-based
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	VariableKey VariableKey `json:"variable_key,omitempty"`
}

// Bound reports whether the field takes its value from a variable
func (f FieldDefinition) Bound() bool {
	return f.VariableKey != ""
}

// SaveFieldsRequest replaces the whole field layout of a template
type SaveFieldsRequest struct {
	Fields []FieldDefinition `json:"fields"`
}

// FillDocumentRequest asks for a template filled for one stop of a route
type FillDocumentRequest struct {
	RouteID int               `json:"route_id"`
	OrderID string            `json:"order_id"`
	Values  map[string]string `json:"values"` // manual values keyed by field id
}
