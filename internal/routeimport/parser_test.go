package routeimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisid/smartos-sub000/internal/models"
)

func TestParse_Example(t *testing.T) {
	res := Parse("SO Nro.\tCOD\tQTD\nOS-1\tBN94-001\t2\n\tBN94-002\t1")

	require.Len(t, res.Stops, 1)
	stop := res.Stops[0]
	assert.Equal(t, "OS-1", stop.OrderID)
	assert.Equal(t, models.StopTagStandard, stop.Tag)
	assert.Equal(t, []models.Part{{Code: "BN94-001", Quantity: 2}}, stop.Parts)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 1, res.Skipped)
}

func TestParse_FullRow(t *testing.T) {
	text := "SO Nro.\tNome Consumidor\tCidade\tBairro\tUF\tModelo\tTAT\tData Solicitação\t1ª Visita\tGarantia\tStatus Comment\tCOD\tDescrição\tQTD\n" +
		"4172639001\tMaria Souza\tFortaleza\tAldeota\tCE\tUN55TU8000\t3\t02/10/2026\t05/10/2026\tLP\taguardando peça\tBN94-16105A\tPlaca principal\t1\r\n"

	stops := ParseStops(text)
	require.Len(t, stops, 1)
	assert.Equal(t, models.Stop{
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
		Tag:           models.StopTagStandard,
		Parts:         []models.Part{{Code: "BN94-16105A", Description: "Placa principal", Quantity: 1}},
	}, stops[0])
}

func TestParse_MalformedRowTolerance(t *testing.T) {
	text := "SO Nro.\tCidade\n" +
		"A1\tRecife\n" +
		"A2\tOlinda\n" +
		"\tPaulista\n" +
		"A4\tIgarassu\n"

	res := Parse(text)
	assert.Equal(t, 4, res.Rows)
	require.Len(t, res.Stops, 3)
	assert.Equal(t, []string{"A1", "A2", "A4"}, []string{res.Stops[0].OrderID, res.Stops[1].OrderID, res.Stops[2].OrderID})
}

func TestParse_QuantityValidation(t *testing.T) {
	tests := []struct {
		qty   string
		parts int
	}{
		{"0", 0},
		{"-3", 0},
		{"abc", 0},
		{"", 0},
		{"4", 1},
	}
	for _, tt := range tests {
		t.Run(tt.qty, func(t *testing.T) {
			stops := ParseStops("SO Nro.\tCOD\tQTD\nOS-9\tGH82-1\t" + tt.qty)
			require.Len(t, stops, 1)
			require.Len(t, stops[0].Parts, tt.parts)
			if tt.parts == 1 {
				assert.Equal(t, 4, stops[0].Parts[0].Quantity)
			}
		})
	}
}

func TestParse_BadGroupDoesNotAbortRow(t *testing.T) {
	stops := ParseStops("SO Nro.\tCOD\tQTD\tCOD\tQTD\tCidade\nOS-1\tX1\tzero\tX2\t3\tNatal")
	require.Len(t, stops, 1)
	assert.Equal(t, "Natal", stops[0].City)
	assert.Equal(t, []models.Part{{Code: "X2", Quantity: 3}}, stops[0].Parts)
}

func TestParse_ShortRowsDefaultToEmpty(t *testing.T) {
	stops := ParseStops("SO Nro.\tCidade\tModelo\tCOD\tQTD\nOS-1")
	require.Len(t, stops, 1)
	assert.Equal(t, "", stops[0].City)
	assert.Equal(t, "", stops[0].Model)
	assert.NotNil(t, stops[0].Parts)
	assert.Empty(t, stops[0].Parts)
}

func TestParse_NoHeader(t *testing.T) {
	for _, text := range []string{"", "\n", "   \nOS-1\tX"} {
		res := Parse(text)
		assert.NotNil(t, res.Stops)
		assert.Empty(t, res.Stops)
	}
}

func TestParse_HeaderWithoutOrderColumn(t *testing.T) {
	res := Parse("Cidade\tModelo\nRecife\tX\nNatal\tY")
	assert.Empty(t, res.Stops)
	assert.Equal(t, 2, res.Skipped)
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	res := Parse("SO Nro.\n\nOS-1\n   \nOS-2\n")
	assert.Equal(t, 2, res.Rows)
	assert.Len(t, res.Stops, 2)
}

func TestDuplicateOrderIDs(t *testing.T) {
	stops := ParseStops("SO Nro.\nA\nB\nA\nC\nA\nB")
	assert.Equal(t, []string{"A", "B"}, DuplicateOrderIDs(stops))
	assert.Nil(t, DuplicateOrderIDs(ParseStops("SO Nro.\nA\nB")))
}
