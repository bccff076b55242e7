package user

import "time"

// User is a chat participant. ChatID is the delivery address.
type User struct {
	ID        int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}
