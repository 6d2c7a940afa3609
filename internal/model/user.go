package model

import (
	"time"
)

type UserRole string

const (
	HR       UserRole = "hr"
	Employee UserRole = "employee"
)

// swagger:model User
type User struct {
	BaseModel
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;unique;not null" json:"email"`
	Password     string    `gorm:"size:100;not null" json:"-"`
	Role         UserRole  `gorm:"type:enum('hr','employee');default:'employee'" json:"role"`
	Organization string    `gorm:"size:100" json:"organization"`
	Department   string    `gorm:"size:100" json:"department"`
	Avatar       string    `gorm:"size:255" json:"avatar"`
	Disabled     bool      `gorm:"default:false" json:"disabled"`
	LastLogin    time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen     time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
