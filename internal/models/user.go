package models

import (
	"strings"
	"time"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"` // Hide from JSON responses
	FirstName  string     `gorm:"size:150" json:"first_name"`
	LastName   string     `gorm:"size:150" json:"last_name"`
	Role       string     `gorm:"size:20;not null;default:patient;index" json:"role"`
	Phone      string     `gorm:"size:20" json:"phone"`
	Address    string     `gorm:"size:255" json:"address"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined time.Time  `gorm:"autoCreateTime;index" json:"date_joined"`
	LastLogin  *time.Time `gorm:"index" json:"last_login"`
}

func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName falls back from the full name to the username, then the email.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}
