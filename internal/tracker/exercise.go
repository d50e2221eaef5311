package tracker

import "time"

// Exercise is a single logged exercise entry, duration is in minutes.
type Exercise struct {
	ID          int
	UserID      int
	Description string
	Duration    int
	Date        time.Time
	CreatedAt   time.Time
}
