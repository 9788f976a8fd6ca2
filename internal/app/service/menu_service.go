package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/ikkim/salonflow-backend/internal/booking"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMenuNotFound     = errors.New("menu not found")
	ErrMenuAccessDenied = errors.New("menu access denied")
	ErrInvalidMenu      = errors.New("invalid menu")
)

// MenuInput carries optional menu fields; nil means unchanged on update.
// ShopID is never part of the input: menus stay with their shop.
type MenuInput struct {
	Name                 *string
	BasePrice            *int
	DefaultDiscount      *float64
	DefaultIntervalMonth *int
	DurationMin          *int
	Category             *model.MenuCategory
}

// OwnerMenus is what the admin screen lists. Preview is set when the owner
// has no shop yet and is looking at the template shop's menus.
type OwnerMenus struct {
	Shop    *model.Shop  `json:"shop"`
	Menus   []model.Menu `json:"menus"`
	Preview bool         `json:"preview"`
}

type MenuService interface {
	ListShopMenus(shopID uint) ([]model.Menu, error)
	ListMyMenus(ownerID string) (*OwnerMenus, error)
	CreateMenu(ownerID string, input MenuInput) (*model.Menu, error)
	UpdateMenu(ownerID string, menuID uint, input MenuInput) (*model.Menu, error)
	DeleteMenu(ownerID string, menuID uint) error
	MoveMenuUp(ownerID string, menuID uint) ([]model.Menu, error)
	MoveMenuDown(ownerID string, menuID uint) ([]model.Menu, error)
	ResetSortOrder(ownerID string) ([]model.Menu, error)
}

type menuService struct {
	shopRepo  repository.ShopRepository
	menuRepo  repository.MenuRepository
	publisher MenuEventPublisher
}

func NewMenuService(shopRepo repository.ShopRepository, menuRepo repository.MenuRepository, publisher MenuEventPublisher) MenuService {
	return &menuService{
		shopRepo:  shopRepo,
		menuRepo:  menuRepo,
		publisher: publisher,
	}
}

func (s *menuService) ListShopMenus(shopID uint) ([]model.Menu, error) {
	if _, err := s.shopRepo.FindByID(shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return s.menuRepo.FindActiveByShop(shopID)
}

func (s *menuService) ListMyMenus(ownerID string) (*OwnerMenus, error) {
	shop, err := s.shopRepo.FindByOwnerID(ownerID)
	preview := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		shop, err = s.shopRepo.FindTemplate()
		preview = true
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OwnerMenus{Menus: []model.Menu{}, Preview: true}, nil
		}
		return nil, err
	}

	menus, err := s.menuRepo.FindActiveByShop(shop.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerMenus{Shop: shop, Menus: menus, Preview: preview}, nil
}

func (s *menuService) ownerShop(ownerID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// ownedMenu loads an active menu of the owner's shop.
func (s *menuService) ownedMenu(ownerID string, menuID uint) (*model.Shop, *model.Menu, error) {
	shop, err := s.ownerShop(ownerID)
	if err != nil {
		return nil, nil, err
	}

	menu, err := s.menuRepo.FindByID(menuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMenuNotFound
		}
		return nil, nil, err
	}
	if menu.ShopID != shop.ID {
		logger.Warn("Menu access denied", logger.Fields{
			"owner_id":     ownerID,
			"menu_id":      menuID,
			"menu_shop_id": menu.ShopID,
		})
		return nil, nil, ErrMenuAccessDenied
	}
	if !menu.IsActive {
		return nil, nil, ErrMenuNotFound
	}
	return shop, menu, nil
}

func (s *menuService) CreateMenu(ownerID string, input MenuInput) (*model.Menu, error) {
	shop, err := s.ownerShop(ownerID)
	if err != nil {
		return nil, err
	}
	if input.Name == nil || input.BasePrice == nil || input.DurationMin == nil || input.Category == nil {
		return nil, fmt.Errorf("%w: name, base price, duration and category are required", ErrInvalidMenu)
	}

	menu := &model.Menu{
		ShopID:               shop.ID,
		DefaultIntervalMonth: model.DefaultIntervalMonth,
		IsActive:             true,
	}
	applyMenuInput(menu, input)
	if err := validateMenu(menu); err != nil {
		return nil, err
	}

	existing, err := s.menuRepo.FindActiveByShop(shop.ID)
	if err != nil {
		return nil, err
	}
	menu.SortOrder = booking.NextSortOrder(existing)

	if err := s.menuRepo.Create(menu); err != nil {
		return nil, err
	}

	logger.Info("Menu created", logger.Fields{
		"menu_id":    menu.ID,
		"shop_id":    shop.ID,
		"sort_order": menu.SortOrder,
	})
	publishMenuEvent(s.publisher, model.MenuEvent{
		Type:   model.MenuCreated,
		ShopID: shop.ID,
		MenuID: menu.ID,
		Menu:   menu,
	})
	return menu, nil
}

func (s *menuService) UpdateMenu(ownerID string, menuID uint, input MenuInput) (*model.Menu, error) {
	shop, menu, err := s.ownedMenu(ownerID, menuID)
	if err != nil {
		return nil, err
	}

	applyMenuInput(menu, input)
	if err := validateMenu(menu); err != nil {
		return nil, err
	}
	if err := s.menuRepo.Update(menu); err != nil {
		return nil, err
	}

	logger.Info("Menu updated", logger.Fields{"menu_id": menu.ID, "shop_id": shop.ID})
	publishMenuEvent(s.publisher, model.MenuEvent{
		Type:   model.MenuUpdated,
		ShopID: shop.ID,
		MenuID: menu.ID,
		Menu:   menu,
	})
	return menu, nil
}

// DeleteMenu hides the menu; the row is kept.
func (s *menuService) DeleteMenu(ownerID string, menuID uint) error {
	shop, menu, err := s.ownedMenu(ownerID, menuID)
	if err != nil {
		return err
	}
	if err := s.menuRepo.Deactivate(menu.ID); err != nil {
		return err
	}

	logger.Info("Menu deactivated", logger.Fields{"menu_id": menu.ID, "shop_id": shop.ID})
	publishMenuEvent(s.publisher, model.MenuEvent{
		Type:   model.MenuDeleted,
		ShopID: shop.ID,
		MenuID: menu.ID,
	})
	return nil
}

func (s *menuService) MoveMenuUp(ownerID string, menuID uint) ([]model.Menu, error) {
	return s.reorder(ownerID, func(menus []model.Menu) ([]booking.SortOrderUpdate, error) {
		return booking.PlanMoveUp(menus, menuID)
	})
}

func (s *menuService) MoveMenuDown(ownerID string, menuID uint) ([]model.Menu, error) {
	return s.reorder(ownerID, func(menus []model.Menu) ([]booking.SortOrderUpdate, error) {
		return booking.PlanMoveDown(menus, menuID)
	})
}

// ResetSortOrder renumbers the shop's menus 1..n in their current order.
func (s *menuService) ResetSortOrder(ownerID string) ([]model.Menu, error) {
	return s.reorder(ownerID, func(menus []model.Menu) ([]booking.SortOrderUpdate, error) {
		return booking.PlanReset(menus), nil
	})
}

func (s *menuService) reorder(ownerID string, plan func([]model.Menu) ([]booking.SortOrderUpdate, error)) ([]model.Menu, error) {
	shop, err := s.ownerShop(ownerID)
	if err != nil {
		return nil, err
	}

	menus, err := s.menuRepo.FindActiveByShop(shop.ID)
	if err != nil {
		return nil, err
	}

	updates, err := plan(menus)
	if err != nil {
		if errors.Is(err, booking.ErrMenuNotListed) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	if len(updates) == 0 {
		return menus, nil
	}

	if err := s.menuRepo.ApplySortOrders(updates); err != nil {
		return nil, err
	}

	reordered, err := s.menuRepo.FindActiveByShop(shop.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Menus reordered", logger.Fields{
		"shop_id": shop.ID,
		"writes":  len(updates),
	})
	publishMenuEvent(s.publisher, model.MenuEvent{
		Type:       model.MenuReordered,
		ShopID:     shop.ID,
		Menus:      reordered,
		OccurredAt: time.Now(),
	})
	return reordered, nil
}

func applyMenuInput(menu *model.Menu, input MenuInput) {
	if input.Name != nil {
		menu.Name = strings.TrimSpace(*input.Name)
	}
	if input.BasePrice != nil {
		menu.BasePrice = *input.BasePrice
	}
	if input.DefaultDiscount != nil {
		menu.DefaultDiscount = *input.DefaultDiscount
	}
	if input.DefaultIntervalMonth != nil {
		menu.DefaultIntervalMonth = *input.DefaultIntervalMonth
	}
	if input.DurationMin != nil {
		menu.DurationMin = *input.DurationMin
	}
	if input.Category != nil {
		menu.Category = *input.Category
	}
}

func validateMenu(menu *model.Menu) error {
	switch {
	case menu.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMenu)
	case menu.BasePrice <= 0:
		return fmt.Errorf("%w: base price must be positive", ErrInvalidMenu)
	case menu.DurationMin <= 0 || menu.DurationMin%model.DurationStepMinutes != 0:
		return fmt.Errorf("%w: duration must be a positive multiple of %d minutes", ErrInvalidMenu, model.DurationStepMinutes)
	case menu.DefaultDiscount < 0 || menu.DefaultDiscount > model.MaxMenuDiscount:
		return fmt.Errorf("%w: default discount must be between 0 and %.1f", ErrInvalidMenu, model.MaxMenuDiscount)
	case menu.DefaultIntervalMonth < model.MinIntervalMonth || menu.DefaultIntervalMonth > model.MaxIntervalMonth:
		return fmt.Errorf("%w: interval must be %d to %d months", ErrInvalidMenu, model.MinIntervalMonth, model.MaxIntervalMonth)
	case !menu.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMenu, menu.Category)
	}
	return nil
}
