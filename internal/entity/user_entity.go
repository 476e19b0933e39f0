package entity

import "time"

// User rows are owned by the auth service; this engine only reads them to
// satisfy session ownership.
type User struct {
	Id           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
