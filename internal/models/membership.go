package models

import "time"

type Membership struct {
	OrganizationID uint64    `gorm:"primarykey" json:"organization_id"`
	UserID         uint64    `gorm:"primarykey;index" json:"user_id"`
	Points         uint      `gorm:"not null;default:0" json:"points"`
	Active         bool      `gorm:"not null;default:true;index" json:"active"`
	JoinedAt       time.Time `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty" validate:"-"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
