package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleOwner    Role = "owner"
	RoleViewer   Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleOwner, RoleViewer:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	Email        string  `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"type:text;not null"             json:"-"`
	Name         string  `gorm:"type:text;not null"             json:"name"`
	Role         Role    `gorm:"type:text;not null;index"       json:"role"`
	Phone        *string `gorm:"type:text"                      json:"phone,omitempty"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) Is(id uuid.UUID) bool {
	return u != nil && u.ID == id
}

// DisplayName falls back to a generic label, used in notification text.
func (u *User) DisplayName(fallback string) string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return fallback
	}
	return u.Name
}

// UserProfile represents public user information
type UserProfile struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Role  Role    `json:"role"`
	Phone *string `json:"phone,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Phone: u.Phone,
	}
}
