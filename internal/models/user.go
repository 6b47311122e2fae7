package models

import (
	"time"
)

type UserType string

const (
	UserTypeStudent UserType = "STUDENT"
	UserTypeStaff   UserType = "STAFF"
	UserTypeGuest   UserType = "GUEST"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150)" json:"last_name"`
	GradYear     *int      `gorm:"index" json:"grad_year"`
	Type         UserType  `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"type"`
	PictureURL   string    `gorm:"type:varchar(500)" json:"picture_url"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Memberships  []Membership  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DeviceTokens []DeviceToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
