package routeimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisid/smartos-sub000/internal/models"
)

func sampleStops() []models.Stop {
	return []models.Stop{
		{
			OrderID:       "4172639001",
			CustomerName:  "Maria Souza",
			City:          "Fortaleza",
			Neighborhood:  "Aldeota",
			State:         "CE",
			Model:         "UN55TU8000",
			Turnaround:    "3",
			RequestDate:   "02/10/2026",
			FirstVisit:    "05/10/2026",
			WarrantyCode:  "LP",
			StatusComment: "aguardando peça",
			Tag:           models.StopTagPickup,
			Parts: []models.Part{
				{Code: "BN94-16105A", Description: "Placa principal", Quantity: 1, TrackingCode: "QB123456789BR"},
				{Code: "BN44-01054A", Quantity: 2},
			},
		},
		{
			OrderID: "4172639002",
			City:    "Caucaia",
			Tag:     models.StopTagStandard,
			Parts:   []models.Part{},
		},
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	original := sampleStops()

	parsed := ParseStops(Serialize(original))
	require.Len(t, parsed, len(original))

	for i := range original {
		want := cloneStop(original[i])
		want.Tag = models.StopTagStandard
		for j := range want.Parts {
			want.Parts[j].TrackingCode = ""
		}
		assert.Equal(t, want, parsed[i])
	}
}

func TestSerialize_LineShape(t *testing.T) {
	out := Serialize(sampleStops())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, SerializedHeader, lines[0])

	headerCols := strings.Count(lines[0], "\t") + 1
	assert.Equal(t, int(fieldCount)+3*HeaderPartSlots, headerCols)
	assert.Equal(t, int(fieldCount)+6, strings.Count(lines[1], "\t")+1)
	assert.Equal(t, int(fieldCount), strings.Count(lines[2], "\t")+1)
}

func TestSerialize_FlattensCellBreaks(t *testing.T) {
	stops := []models.Stop{{OrderID: "OS-1", CustomerName: "João\tda  Silva\n", Parts: []models.Part{}}}
	parsed := ParseStops(Serialize(stops))
	require.Len(t, parsed, 1)
	assert.Equal(t, "João da Silva", parsed[0].CustomerName)
}

func TestSerialize_Empty(t *testing.T) {
	assert.Equal(t, SerializedHeader, Serialize(nil))
}

func TestSerialize_MoreThanFiveParts(t *testing.T) {
	pasted := "SO Nro.\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\n" +
		"OS-1\tP1\t1\tP2\t1\tP3\t1\tP4\t1\tP5\t1\tP6\t1\tP7\t2\n" +
		"OS-2\tQ1\t1\n"
	stops := ParseStops(pasted)
	require.Len(t, stops[0].Parts, 7)

	text := Serialize(stops)
	header := strings.Split(text, "\n")[0]
	assert.Equal(t, 7, strings.Count(header, "COD"))

	again := ParseStops(text)
	require.Len(t, again, 2)
	assert.Equal(t, stops[0].Parts, again[0].Parts)
	assert.Equal(t, "P7", again[0].Parts[6].Code)
	assert.Len(t, again[1].Parts, 1)
}
