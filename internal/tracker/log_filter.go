package tracker

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidLogFilter = errors.New("invalid log filter date")

// LogFilter is the date window of an exercise log query. It is decided once
// per request, so exactly one of the four from/to combinations applies and a
// single query and response write follow from it.
type LogFilter struct {
	From *time.Time
	To   *time.Time
}

func ParseLogFilter(fromStr, toStr string) (LogFilter, error) {
	var filter LogFilter
	if fromStr != "" {
		from, err := ParseDate(fromStr)
		if err != nil {
			return LogFilter{}, fmt.Errorf("%w: from: %s", ErrInvalidLogFilter, fromStr)
		}
		filter.From = &from
	}
	if toStr != "" {
		to, err := ParseDate(toStr)
		if err != nil {
			return LogFilter{}, fmt.Errorf("%w: to: %s", ErrInvalidLogFilter, toStr)
		}
		filter.To = &to
	}
	return filter, nil
}
