package timeutil

import (
	"time"
)

// Location is the business timezone used for dates printed on documents
var Location = time.FixedZone("BRT", -3*60*60)

// SetLocation switches the business timezone. Unknown names keep the current one.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Location = loc
	return nil
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(Location)
}

// ToLocal converts any time to the business timezone
func ToLocal(t time.Time) time.Time {
	return t.In(Location)
}

// ParseDate parses a dd/mm/yyyy date as typed in route spreadsheets
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location)
}

// StartOfDay returns 00:00:00 of t's day in the business timezone
func StartOfDay(t time.Time) time.Time {
	l := t.In(Location)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Location)
}

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)
