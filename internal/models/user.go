package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// ParseRole accepts the three known role names, case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperadmin:
		return RoleSuperadmin, true
	default:
		return "", false
	}
}

func (role Role) String() string {
	return string(role)
}

type User struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	UserID               string    `gorm:"uniqueIndex;not null" json:"userId"`
	PasswordHash         string    `gorm:"not null" json:"-"`
	Email                string    `gorm:"not null" json:"email"`
	Role                 Role      `gorm:"not null;default:user" json:"role"`
	RegisteredTeacherIDs []string  `gorm:"serializer:json" json:"registeredTeacherIds,omitempty"`
	CreatedAt            time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
