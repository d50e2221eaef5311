package tracker

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses an exercise date, YYYY-MM-DD or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
}

// DisplayDate renders t as D/M/YYYY, non zero padded, using the local
// calendar fields. This is the date format of the legacy wire contract.
func DisplayDate(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}
