package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrganizationType string

const (
	OrganizationTypeGlobal OrganizationType = "GLOBAL"
	OrganizationTypeClass  OrganizationType = "CLASS"
	OrganizationTypeClub   OrganizationType = "CLUB"
)

// DayOfWeek counts from Monday = 0.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

type Organization struct {
	ID               uint64                      `gorm:"primarykey" json:"id"`
	Name             string                      `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Type             OrganizationType            `gorm:"type:varchar(20);not null;index" json:"type" validate:"required,oneof=GLOBAL CLASS CLUB"`
	Description      string                      `gorm:"type:text" json:"description"`
	Day              *DayOfWeek                  `json:"day" validate:"omitempty,min=0,max=6"`
	Time             *string                     `gorm:"type:varchar(5)" json:"time" validate:"omitempty,datetime=15:04"`
	Location         *string                     `gorm:"type:varchar(200)" json:"location"`
	Link             string                      `gorm:"type:varchar(500)" json:"link" validate:"omitempty,url"`
	IcalLinks        datatypes.JSONSlice[string] `json:"ical_links" validate:"dive,url"`
	Required         bool                        `gorm:"not null;default:false;index" json:"required"`
	RequiredGradYear *int                        `gorm:"index" json:"required_grad_year"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`

	// Relations
	Admins      []User             `gorm:"many2many:organization_admins;constraint:OnDelete:CASCADE" json:"-"`
	Advisors    []User             `gorm:"many2many:organization_advisors;constraint:OnDelete:CASCADE" json:"-"`
	Links       []OrganizationLink `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Memberships []Membership       `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Posts       []Post             `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}

// OrganizationLink is a named URL shown on an organization's page.
type OrganizationLink struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	Title          string    `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	URL            string    `gorm:"type:varchar(500);not null" json:"url" validate:"required,url"`
	CreatedAt      time.Time `json:"created_at"`
}
