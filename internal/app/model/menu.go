package model

import "time"

type MenuCategory string

const (
	CategoryCut       MenuCategory = "cut"
	CategoryColor     MenuCategory = "color"
	CategoryTreatment MenuCategory = "treatment"
	CategoryStraight  MenuCategory = "straight"
	CategoryOther     MenuCategory = "other"
)

// MenuCategories lists the categories in display order.
var MenuCategories = []MenuCategory{
	CategoryCut,
	CategoryColor,
	CategoryTreatment,
	CategoryStraight,
	CategoryOther,
}

func (c MenuCategory) Valid() bool {
	for _, known := range MenuCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Form bounds shared by binding tags and service validation.
const (
	MaxMenuDiscount      = 0.5
	MinIntervalMonth     = 1
	MaxIntervalMonth     = 12
	DurationStepMinutes  = 10
	DefaultIntervalMonth = 1
)

// Menu is a bookable service of one shop. Menus are never hard-deleted:
// removing one clears IsActive. SortOrder is NOT NULL; rows imported before
// the column existed are read as 0.
type Menu struct {
	ID                   uint         `gorm:"primarykey" json:"id"`
	ShopID               uint         `gorm:"index;not null" json:"shop_id"`
	Name                 string       `gorm:"not null" json:"name"`
	BasePrice            int          `gorm:"not null" json:"base_price"` // whole yen
	DefaultDiscount      float64      `gorm:"not null;default:0" json:"default_discount"`
	DefaultIntervalMonth int          `gorm:"not null;default:1" json:"default_interval_month"`
	DurationMin          int          `gorm:"not null" json:"duration_min"`
	Category             MenuCategory `gorm:"type:varchar(20);not null" json:"category"`
	IsActive             bool         `gorm:"not null;index" json:"is_active"`
	SortOrder            int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (Menu) TableName() string {
	return "menus"
}
