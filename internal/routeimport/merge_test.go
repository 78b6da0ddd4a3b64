package routeimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisid/smartos-sub000/internal/models"
)

func previousStops() []models.Stop {
	return []models.Stop{
		{
			OrderID: "OS-1",
			Tag:     models.StopTagDelivery,
			Parts: []models.Part{
				{Code: "BN94-001", Quantity: 2, TrackingCode: "QB111BR"},
				{Code: "BN94-002", Quantity: 1, TrackingCode: "QB222BR"},
			},
		},
		{
			OrderID: "OS-2",
			Tag:     models.StopTagPickup,
			Parts:   []models.Part{},
		},
	}
}

func TestMerge_PreservesTrackingCodes(t *testing.T) {
	next := ParseStops("SO Nro.\tCOD\tQTD\tCOD\tQTD\nOS-1\tBN94-002\t5\tBN94-001\t2")

	merged := Merge(next, previousStops(), nil)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Parts, 2)
	assert.Equal(t, models.Part{Code: "BN94-002", Quantity: 5, TrackingCode: "QB222BR"}, merged[0].Parts[0])
	assert.Equal(t, models.Part{Code: "BN94-001", Quantity: 2, TrackingCode: "QB111BR"}, merged[0].Parts[1])
}

func TestMerge_DropsVanishedParts(t *testing.T) {
	next := ParseStops("SO Nro.\tCOD\tQTD\nOS-1\tBN94-001\t2")

	merged := Merge(next, previousStops(), nil)
	require.Len(t, merged, 1)
	for _, p := range merged[0].Parts {
		assert.NotEqual(t, "BN94-002", p.Code)
	}
	assert.Len(t, merged[0].Parts, 1)
}

func TestMerge_NewPartsStartUntracked(t *testing.T) {
	next := ParseStops("SO Nro.\tCOD\tQTD\nOS-1\tBN94-999\t1")

	merged := Merge(next, previousStops(), nil)
	assert.Equal(t, "", merged[0].Parts[0].TrackingCode)
}

func TestMerge_NewStopHasNoHistory(t *testing.T) {
	next := []models.Stop{{
		OrderID: "OS-3",
		Tag:     models.StopTagStandard,
		Parts:   []models.Part{{Code: "BN94-001", Quantity: 1, TrackingCode: "stale"}},
	}}

	merged := Merge(next, previousStops(), nil)
	assert.Equal(t, models.StopTagStandard, merged[0].Tag)
	assert.Equal(t, "", merged[0].Parts[0].TrackingCode)
}

func TestMerge_TagCarriedForward(t *testing.T) {
	next := ParseStops("SO Nro.\nOS-2\nOS-1")

	merged := Merge(next, previousStops(), nil)
	require.Len(t, merged, 2)
	assert.Equal(t, "OS-2", merged[0].OrderID)
	assert.Equal(t, models.StopTagPickup, merged[0].Tag)
	assert.Equal(t, models.StopTagDelivery, merged[1].Tag)
}

func TestMerge_ExplicitTagWins(t *testing.T) {
	next := ParseStops("SO Nro.\nOS-1\nOS-2")

	merged := Merge(next, previousStops(), TagOverrides{
		"OS-1": models.StopTagStandard,
		"OS-2": models.StopTag("bogus"),
	})
	assert.Equal(t, models.StopTagStandard, merged[0].Tag)
	assert.Equal(t, models.StopTagPickup, merged[1].Tag)
}

func TestMerge_Idempotent(t *testing.T) {
	next := ParseStops("SO Nro.\tCOD\tQTD\tCOD\tQTD\nOS-1\tBN94-001\t2\tBN94-777\t1\nOS-5\tX\t1")
	overrides := TagOverrides{"OS-5": models.StopTagDelivery}

	once := Merge(next, previousStops(), overrides)
	twice := Merge(next, once, overrides)
	assert.Equal(t, once, twice)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	next := ParseStops("SO Nro.\tCOD\tQTD\nOS-1\tBN94-001\t2")
	prev := previousStops()

	merged := Merge(next, prev, nil)
	merged[0].Parts[0].TrackingCode = "changed"

	assert.Equal(t, "", next[0].Parts[0].TrackingCode)
	assert.Equal(t, "QB111BR", prev[0].Parts[0].TrackingCode)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, previousStops(), nil))
	merged := Merge(ParseStops("SO Nro.\nOS-1"), nil, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, models.StopTagStandard, merged[0].Tag)
}

func TestMerge_RepeatedPartCodes(t *testing.T) {
	prev := []models.Stop{{
		OrderID: "OS-1",
		Tag:     models.StopTagStandard,
		Parts: []models.Part{
			{Code: "GH59-001", Quantity: 1, TrackingCode: "QB1BR"},
			{Code: "BN94-001", Quantity: 1, TrackingCode: "QB2BR"},
			{Code: "GH59-001", Quantity: 1, TrackingCode: "QB3BR"},
		},
	}}
	next := ParseStops("SO Nro.\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\tCOD\tQTD\n" +
		"OS-1\tGH59-001\t1\tGH59-001\t2\tGH59-001\t1\tBN94-001\t1")

	merged := Merge(next, prev, nil)
	require.Len(t, merged[0].Parts, 4)
	assert.Equal(t, "QB1BR", merged[0].Parts[0].TrackingCode)
	assert.Equal(t, "QB3BR", merged[0].Parts[1].TrackingCode)
	assert.Equal(t, "", merged[0].Parts[2].TrackingCode)
	assert.Equal(t, "QB2BR", merged[0].Parts[3].TrackingCode)
	assert.Equal(t, "QB1BR", prev[0].Parts[0].TrackingCode)
}
