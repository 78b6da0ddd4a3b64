package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("05/10/2026")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.October, d.Month())
	assert.Equal(t, 5, d.Day())

	_, err = ParseDate("2026-10-05")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC) // 23:30 the day before in BRT
	start := StartOfDay(in)
	assert.Equal(t, 15, start.Day())
	assert.Equal(t, 0, start.Hour())
}

func TestSetLocation_Unknown(t *testing.T) {
	before := Location
	assert.Error(t, SetLocation("Nowhere/Atlantis"))
	assert.Equal(t, before, Location)
}
