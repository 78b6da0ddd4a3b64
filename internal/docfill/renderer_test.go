package docfill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisid/smartos-sub000/internal/models"
)

type draw struct {
	Kind string
	Page int
	X, Y float64
	Text string
}

type fakeDocument struct {
	heights []float64
	draws   []draw
	out     []byte
	err     error
}

func (d *fakeDocument) PageCount() int              { return len(d.heights) }
func (d *fakeDocument) PageHeight(page int) float64 { return d.heights[page-1] }
func (d *fakeDocument) DrawText(page int, x, y float64, text string) {
	d.draws = append(d.draws, draw{"text", page, x, y, text})
}
func (d *fakeDocument) DrawCheck(page int, x, y float64) {
	d.draws = append(d.draws, draw{"check", page, x, y, ""})
}
func (d *fakeDocument) Bytes() ([]byte, error) { return d.out, d.err }

type fakeLoader struct {
	doc  *fakeDocument
	err  error
	keys []string
}

func (l *fakeLoader) Load(_ context.Context, key string) (Document, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	return l.doc, nil
}

func twoPages() *fakeDocument {
	return &fakeDocument{heights: []float64{842, 600}, out: []byte("%PDF")}
}

func TestPlace_TextCoordinates(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "f1", Type: models.FieldTypeText, Page: 1, X: 40, Y: 100},
		{ID: "f2", Type: models.FieldTypeText, Page: 2, X: 10, Y: 20},
	}

	report := Place(doc, fields, FillContext{Values: map[string]string{"f1": "Maria", "f2": "Recife"}})
	assert.Equal(t, 2, report.Drawn)
	assert.Equal(t, []draw{
		{"text", 1, 40, 842 - 100 - TextBaselineOffset, "Maria"},
		{"text", 2, 10, 600 - 20 - TextBaselineOffset, "Recife"},
	}, doc.draws)
}

func TestPlace_VariableBindingWins(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "f1", Type: models.FieldTypeText, Page: 1, X: 1, Y: 2, VariableKey: models.VarOrderID},
	}
	fill := FillContext{
		Values:    map[string]string{"f1": "typed by hand"},
		Variables: Variables{models.VarOrderID: "OS-1"},
	}

	Place(doc, fields, fill)
	require.Len(t, doc.draws, 1)
	assert.Equal(t, "OS-1", doc.draws[0].Text)
}

func TestPlace_MissingManualValueSkipsField(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "f1", Type: models.FieldTypeText, Page: 1},
		{ID: "f2", Type: models.FieldTypeText, Page: 1},
	}

	report := Place(doc, fields, FillContext{Values: map[string]string{"f2": "x"}})
	assert.Equal(t, 1, report.Drawn)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, doc.draws, 1)
}

func TestPlace_Checkbox(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "on", Type: models.FieldTypeCheckbox, Page: 1, X: 50, Y: 60},
		{ID: "off", Type: models.FieldTypeCheckbox, Page: 1, X: 50, Y: 80},
	}

	Place(doc, fields, FillContext{Values: map[string]string{"on": "true", "off": "false"}})
	assert.Equal(t, []draw{
		{"check", 1, 50 + CheckOffsetX, 842 - 60 - CheckOffsetY, ""},
	}, doc.draws)
}

func TestPlace_PageClamp(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "a", Type: models.FieldTypeText, Page: 9, X: 5, Y: 5},
		{ID: "b", Type: models.FieldTypeText, Page: 0, X: 5, Y: 5},
	}

	Place(doc, fields, FillContext{Values: map[string]string{"a": "A", "b": "B"}})
	require.Len(t, doc.draws, 2)
	for _, d := range doc.draws {
		assert.Equal(t, 1, d.Page)
		assert.Equal(t, 842-5-TextBaselineOffset, d.Y)
	}
}

func TestPlace_UnresolvedBindingUsesPlaceholder(t *testing.T) {
	doc := twoPages()
	fields := []models.FieldDefinition{
		{ID: "s", Type: models.FieldTypeText, Page: 1, VariableKey: models.VarSerialNumber},
		{ID: "c", Type: models.FieldTypeCheckbox, Page: 1, VariableKey: models.VariableKey("voltage")},
	}

	report := Place(doc, fields, FillContext{Variables: Variables{models.VariableKey("voltage"): "true"}})
	assert.Equal(t, []models.VariableKey{models.VarSerialNumber, "voltage"}, report.Unresolved)
	require.Len(t, doc.draws, 2)
	assert.Equal(t, "<<serial_number>>", doc.draws[0].Text)
	assert.Equal(t, "<<voltage>>", doc.draws[1].Text)
}

func TestPlace_DoesNotMutateInputs(t *testing.T) {
	fields := []models.FieldDefinition{
		{ID: "f1", Type: models.FieldTypeText, Page: 7, X: 1, Y: 1, VariableKey: models.VarCity},
	}
	fill := FillContext{Values: map[string]string{"f1": "x"}, Variables: Variables{models.VarCity: "Natal"}}

	Place(twoPages(), fields, fill)
	assert.Equal(t, 7, fields[0].Page)
	assert.Equal(t, map[string]string{"f1": "x"}, fill.Values)
	assert.Equal(t, Variables{models.VarCity: "Natal"}, fill.Variables)
}

func TestRender(t *testing.T) {
	loader := &fakeLoader{doc: twoPages()}
	r := NewRenderer(loader)

	out, report, err := r.Render(context.Background(),
		models.DocumentTemplate{ID: 3, FileKey: "templates/os.pdf"},
		[]models.FieldDefinition{{ID: "f1", Type: models.FieldTypeText, Page: 1}},
		FillContext{Values: map[string]string{"f1": "ok"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), out)
	assert.Equal(t, 1, report.Drawn)
	assert.Equal(t, []string{"templates/os.pdf"}, loader.keys)
}

func TestRender_FetchFailureIsTerminal(t *testing.T) {
	cause := errors.New("connection reset")
	loader := &fakeLoader{err: cause}

	out, _, err := NewRenderer(loader).Render(context.Background(), models.DocumentTemplate{FileKey: "k"}, nil, FillContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateFetch)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, out)
	assert.Len(t, loader.keys, 1)
}

func TestRender_OutputFailure(t *testing.T) {
	doc := twoPages()
	doc.err = errors.New("broken")

	out, _, err := NewRenderer(&fakeLoader{doc: doc}).Render(context.Background(), models.DocumentTemplate{}, nil, FillContext{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTemplateFetch)
	assert.Nil(t, out)
}

func TestChecked(t *testing.T) {
	for _, v := range []string{"true", "1", "X", "sim", " on "} {
		assert.True(t, Checked(v), v)
	}
	for _, v := range []string{"false", "0", "", "não", "maybe"} {
		assert.False(t, Checked(v), v)
	}
}

func TestBuildVariables(t *testing.T) {
	route := &models.Route{TechnicianName: "Carlos Lima"}
	stop := &models.Stop{
		OrderID:       "OS-1",
		CustomerName:  "Maria",
		Model:         "WF50",
		City:          "Recife",
		Neighborhood:  "Boa Viagem",
		RequestDate:   "01/10/2026",
		WarrantyCode:  "lp",
		StatusComment: "ligar antes",
		Parts:         []models.Part{{Code: "DC92-1", Quantity: 1}, {Code: "DC97-2", Quantity: 3}},
	}
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

	vars := BuildVariables(route, stop, nil, now)
	assert.Equal(t, "OS-1", vars[models.VarOrderID])
	assert.Equal(t, "Em garantia", vars[models.VarWarrantyType])
	assert.Equal(t, "DC92-1 x1, DC97-2 x3", vars[models.VarReplacedParts])
	assert.Equal(t, "ligar antes", vars[models.VarObservations])
	assert.Equal(t, "Carlos Lima", vars[models.VarTechnicianName])
	assert.Equal(t, "16/10/2026", vars[models.VarCurrentDate])
	_, hasSerial := vars[models.VarSerialNumber]
	assert.False(t, hasSerial)

	vars = BuildVariables(route, stop, &models.ServiceOrder{SerialNumber: "SN123", Observations: "troca de placa"}, now)
	assert.Equal(t, "SN123", vars[models.VarSerialNumber])
	assert.Equal(t, "troca de placa", vars[models.VarObservations])

	for key := range vars {
		assert.True(t, key.Valid(), key)
	}
}

func TestWarrantyLabel_Unknown(t *testing.T) {
	assert.Equal(t, "XYZ", WarrantyLabel("XYZ"))
}
