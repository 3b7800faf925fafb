package domain

import "time"

// UserRole controls what a team member may do within their firm.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// User is a team member of an accounting firm.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (UUID)
	FirmID       string   `json:"firmID"` // FK -> Firm.FirmID (Not Null)
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	AuditFields
	RefreshTokenHash   *string    `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`
	DeletedAt          *time.Time `json:"deletedAt,omitempty"`
}
