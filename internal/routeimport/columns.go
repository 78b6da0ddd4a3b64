// Package routeimport turns spreadsheet text pasted by operators into route stops,
// renders stops back into that text, and reconciles re-imported stops with the
// operator-entered state of a saved route.
package routeimport

import (
	"regexp"
	"strings"
)

// Field is a logical column of the import format
type Field int

const (
	FieldOrderID Field = iota
	FieldCustomerName
	FieldCity
	FieldNeighborhood
	FieldState
	FieldModel
	FieldTurnaround
	FieldRequestDate
	FieldFirstVisit
	FieldWarranty
	FieldStatusComment
	fieldCount
)

// column describes how a logical field appears in a header. Header is the spelling
// written by Serialize; Aliases are the lower-cased spellings accepted on import,
// tried in order.
type column struct {
	Header  string
	Aliases []string
}

var columns = [fieldCount]column{
	FieldOrderID:       {"SO Nro.", []string{"so nro.", "so nro", "so", "os", "nº os", "ordem de serviço", "order id"}},
	FieldCustomerName:  {"Nome Consumidor", []string{"nome consumidor", "consumidor", "cliente", "customer name"}},
	FieldCity:          {"Cidade", []string{"cidade", "city"}},
	FieldNeighborhood:  {"Bairro", []string{"bairro", "neighborhood"}},
	FieldState:         {"UF", []string{"uf", "estado", "state"}},
	FieldModel:         {"Modelo", []string{"modelo", "model", "produto"}},
	FieldTurnaround:    {"TAT", []string{"tat", "prazo"}},
	FieldRequestDate:   {"Data Solicitação", []string{"data solicitação", "data solicitacao", "dt solicitação", "request date"}},
	FieldFirstVisit:    {"1ª Visita", []string{"1ª visita", "1a visita", "primeira visita", "first visit"}},
	FieldWarranty:      {"Garantia", []string{"garantia", "wty", "warranty"}},
	FieldStatusComment: {"Status Comment", []string{"status comment", "comentário", "comentario", "obs"}},
}

// Part group markers. A group starts at a code column and is followed by an
// optional description column and a quantity column.
const (
	partCodeHeader        = "COD"
	partDescriptionHeader = "DESCRIÇÃO"
	partQuantityHeader    = "QTD"
)

var (
	partCodeMarkers        = []string{"cod"}
	partDescriptionMarkers = []string{"descrição", "descricao", "desc"}
	partQuantityMarkers    = []string{"qtd"}
)

// PartGroup holds the column indexes of one repeating part group.
// Description is -1 when the group has no description column.
type PartGroup struct {
	Code        int
	Description int
	Quantity    int
}

// ColumnMap is the resolved layout of one pasted header
type ColumnMap struct {
	index  [fieldCount]int
	Groups []PartGroup
}

// Index returns the column index of f, or -1 when the header lacks it
func (m ColumnMap) Index(f Field) int {
	if f < 0 || f >= fieldCount {
		return -1
	}
	return m.index[f]
}

// Empty reports whether no logical field and no part group was recognized
func (m ColumnMap) Empty() bool {
	for _, i := range m.index {
		if i >= 0 {
			return false
		}
	}
	return len(m.Groups) == 0
}

// ResolveColumns maps the logical fields and part groups of a header line to
// column indexes.
func ResolveColumns(header string) ColumnMap {
	var m ColumnMap
	for f := range m.index {
		m.index[f] = -1
	}
	if strings.TrimSpace(header) == "" {
		return m
	}

	cells := splitColumns(header)
	for i := range cells {
		cells[i] = strings.ToLower(cells[i])
	}

	for f, col := range columns {
		for _, alias := range col.Aliases {
			if idx := indexOf(cells, alias); idx >= 0 {
				m.index[f] = idx
				break
			}
		}
	}

	for i, cell := range cells {
		if !oneOf(cell, partCodeMarkers) {
			continue
		}
		group := PartGroup{Code: i, Description: -1, Quantity: -1}
		switch {
		case i+1 < len(cells) && oneOf(cells[i+1], partQuantityMarkers):
			group.Quantity = i + 1
		case i+2 < len(cells) && oneOf(cells[i+1], partDescriptionMarkers) && oneOf(cells[i+2], partQuantityMarkers):
			group.Description = i + 1
			group.Quantity = i + 2
		}
		if group.Quantity >= 0 {
			m.Groups = append(m.Groups, group)
		}
	}
	return m
}

// whitespaceRun matches runs of two or more blanks, or any run containing a tab
var whitespaceRun = regexp.MustCompile(`[ \t\v\f\x{00A0}]*\t[ \t\v\f\x{00A0}]*|[ \v\f\x{00A0}]{2,}`)

// splitColumns normalizes a pasted line into trimmed cells. Every tab is a delimiter,
// so empty spreadsheet cells keep their position; runs of two or more spaces left by
// copying from fixed-width reports count as one delimiter.
func splitColumns(line string) []string {
	line = strings.Trim(line, " \r\u00a0")
	line = whitespaceRun.ReplaceAllStringFunc(line, func(run string) string {
		if n := strings.Count(run, "\t"); n > 0 {
			return strings.Repeat("\t", n)
		}
		return "\t"
	})
	cells := strings.Split(line, "\t")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func indexOf(cells []string, want string) int {
	for i, c := range cells {
		if c == want {
			return i
		}
	}
	return -1
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
