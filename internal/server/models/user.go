// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account on the server of record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	LastSyncAt   *time.Time
	CreatedAt    time.Time
}
