package model

import "time"

// Shop is a salon profile. OwnerID is the opaque principal id issued by the
// identity provider; the unique index enforces one shop per owner.
type Shop struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	OwnerID       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"owner_id"`
	Name          string    `gorm:"not null" json:"name"`
	Address       string    `gorm:"type:text;not null" json:"address"`
	Phone         string    `gorm:"type:varchar(30);not null" json:"phone"`
	BusinessHours string    `gorm:"type:varchar(100)" json:"business_hours"` // free text, e.g. "10:00-20:00"
	LastOrder     string    `gorm:"type:varchar(100)" json:"last_order"`
	Holiday       string    `gorm:"type:varchar(100)" json:"holiday"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Menus []Menu `gorm:"foreignKey:ShopID" json:"menus,omitempty"`
}

func (Shop) TableName() string {
	return "shops"
}
