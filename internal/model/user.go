package model

import "time"

// User is an authenticated account. Each user is its own pricing tenant: the
// email doubles as the tenant identifier for artifact directories.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
