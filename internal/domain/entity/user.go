package entity

import (
	"time"
)

// User is a registered visitor identified by email.
type User struct {
	ID        string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
