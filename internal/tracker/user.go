package tracker

import "time"

// User is a registered tracker user. UserID is the public identifier handed
// out at registration, the row id stays internal.
type User struct {
	ID        int       `json:"-"`
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"-"`
}
