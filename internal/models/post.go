package models

import "time"

type Post struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	Title          string    `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Content        string    `gorm:"type:text" json:"content"`
	Published      bool      `gorm:"not null;default:false;index" json:"published"`
	Date           time.Time `gorm:"autoUpdateTime;index" json:"date"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty" validate:"-"`
}
