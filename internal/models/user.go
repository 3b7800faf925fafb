package models

import "time"

// User is the database row shape for the users table.
type User struct {
	UserID       string
	FirmID       string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	AuditFields
	RefreshTokenHash   *string
	RefreshTokenExpiry *time.Time
	DeletedAt          *time.Time
}
