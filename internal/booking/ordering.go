package booking

import (
	"errors"
	"sort"

	"github.com/ikkim/salonflow-backend/internal/app/model"
)

var ErrMenuNotListed = errors.New("booking: menu is not in the list")

// SortOrderUpdate is one planned write of a menu's sort order.
type SortOrderUpdate struct {
	MenuID    uint `json:"menu_id"`
	SortOrder int  `json:"sort_order"`
}

// SortMenus orders menus in place by sort order, then name, then id.
func SortMenus(menus []model.Menu) {
	sort.SliceStable(menus, func(i, j int) bool {
		a, b := menus[i], menus[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Sorted returns a sorted copy, leaving menus untouched.
func Sorted(menus []model.Menu) []model.Menu {
	out := make([]model.Menu, len(menus))
	copy(out, menus)
	SortMenus(out)
	return out
}

// PlanMoveUp swaps the menu's sort order with its predecessor in display
// order. Moving the first menu plans nothing.
func PlanMoveUp(menus []model.Menu, menuID uint) ([]SortOrderUpdate, error) {
	return planSwap(menus, menuID, -1)
}

// PlanMoveDown swaps the menu's sort order with its successor. Moving the
// last menu plans nothing.
func PlanMoveDown(menus []model.Menu, menuID uint) ([]SortOrderUpdate, error) {
	return planSwap(menus, menuID, 1)
}

func planSwap(menus []model.Menu, menuID uint, step int) ([]SortOrderUpdate, error) {
	sorted := Sorted(menus)
	idx := -1
	for i, m := range sorted {
		if m.ID == menuID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMenuNotListed
	}

	neighbour := idx + step
	if neighbour < 0 || neighbour >= len(sorted) {
		return nil, nil
	}

	// Equal sort orders produce a write pair that changes nothing.
	return []SortOrderUpdate{
		{MenuID: sorted[idx].ID, SortOrder: sorted[neighbour].SortOrder},
		{MenuID: sorted[neighbour].ID, SortOrder: sorted[idx].SortOrder},
	}, nil
}

// PlanReset renumbers every menu to its 1-based display position.
// Applying the plan and planning again yields the same values.
func PlanReset(menus []model.Menu) []SortOrderUpdate {
	sorted := Sorted(menus)
	updates := make([]SortOrderUpdate, 0, len(sorted))
	for i, m := range sorted {
		updates = append(updates, SortOrderUpdate{MenuID: m.ID, SortOrder: i + 1})
	}
	return updates
}

// NextSortOrder places a new menu after every existing one.
func NextSortOrder(menus []model.Menu) int {
	if len(menus) == 0 {
		return 1
	}
	max := menus[0].SortOrder
	for _, m := range menus[1:] {
		if m.SortOrder > max {
			max = m.SortOrder
		}
	}
	return max + 1
}
