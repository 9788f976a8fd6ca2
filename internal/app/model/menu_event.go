package model

import "time"

type MenuEventType string

const (
	MenuCreated   MenuEventType = "menu.created"
	MenuUpdated   MenuEventType = "menu.updated"
	MenuDeleted   MenuEventType = "menu.deleted"
	MenuReordered MenuEventType = "menu.reordered"
)

// MenuEvent is pushed to realtime subscribers of a shop after each write.
// Menu is nil for reorder events, which carry the whole ordered list instead.
type MenuEvent struct {
	Type       MenuEventType `json:"type"`
	ShopID     uint          `json:"shop_id"`
	MenuID     uint          `json:"menu_id,omitempty"`
	Menu       *Menu         `json:"menu,omitempty"`
	Menus      []Menu        `json:"menus,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
