package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrShopNotFound      = errors.New("shop not found")
	ErrShopAlreadyExists = errors.New("owner already has a shop")
	ErrInvalidShop       = errors.New("invalid shop")
)

// ShopMutation carries optional shop fields; nil means unchanged.
type ShopMutation struct {
	Name          *string
	Address       *string
	Phone         *string
	BusinessHours *string
	LastOrder     *string
	Holiday       *string
}

// ProvisionResult describes a newly created shop and its seeded menus.
type ProvisionResult struct {
	Shop           *model.Shop
	TemplateShopID *uint
	CopiedMenus    int
}

type ShopService interface {
	GetShop(id uint) (*model.Shop, error)
	GetMyShop(ownerID string) (*model.Shop, error)
	// GetPublicShop is shown to visitors without a shop of their own.
	GetPublicShop() (*model.Shop, error)
	CreateShop(ownerID string, input ShopMutation) (*ProvisionResult, error)
	UpdateShop(ownerID string, input ShopMutation) (*model.Shop, error)
}

type shopService struct {
	db       *gorm.DB
	shopRepo repository.ShopRepository
	menuRepo repository.MenuRepository
}

func NewShopService(db *gorm.DB, shopRepo repository.ShopRepository, menuRepo repository.MenuRepository) ShopService {
	return &shopService{
		db:       db,
		shopRepo: shopRepo,
		menuRepo: menuRepo,
	}
}

func (s *shopService) GetShop(id uint) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (s *shopService) GetMyShop(ownerID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Owner has no shop yet", logger.Fields{"owner_id": ownerID})
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (s *shopService) GetPublicShop() (*model.Shop, error) {
	shop, err := s.shopRepo.FindTemplate()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// CreateShop registers the owner's shop and seeds it with the template
// shop's active menus. Everything runs in one transaction: a failed copy
// leaves neither the shop nor any menu behind.
func (s *shopService) CreateShop(ownerID string, input ShopMutation) (*ProvisionResult, error) {
	shop := &model.Shop{OwnerID: ownerID}
	applyShopMutation(shop, input)
	if err := validateShop(shop); err != nil {
		return nil, err
	}

	logger.Info("Creating shop", logger.Fields{
		"owner_id": ownerID,
		"name":     shop.Name,
	})

	var result *ProvisionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		shops := s.shopRepo.WithTx(tx)
		menus := s.menuRepo.WithTx(tx)

		if _, err := shops.FindByOwnerID(ownerID); err == nil {
			return ErrShopAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Resolve the template before inserting so the new shop never
		// becomes its own template.
		template, err := shops.FindTemplate()
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := shops.Create(shop); err != nil {
			// a concurrent request for the same owner won the unique index
			if apperrors.ParseError(err, "shop").Code == apperrors.ShopAlreadyExists {
				return ErrShopAlreadyExists
			}
			return err
		}

		result = &ProvisionResult{Shop: shop}
		if template == nil {
			logger.Info("No template shop found, skipping menu provisioning", logger.Fields{
				"shop_id": shop.ID,
			})
			return nil
		}

		copied, err := copyTemplateMenus(menus, template.ID, shop.ID)
		if err != nil {
			return fmt.Errorf("provision menus from shop %d: %w", template.ID, err)
		}
		result.TemplateShopID = &template.ID
		result.CopiedMenus = copied
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrShopAlreadyExists) {
			logger.Warn("Owner already has a shop", logger.Fields{"owner_id": ownerID})
		} else {
			logger.Error("Failed to create shop, transaction rolled back", err, logger.Fields{
				"owner_id": ownerID,
			})
		}
		return nil, err
	}

	logger.Info("Shop created", logger.Fields{
		"shop_id":      result.Shop.ID,
		"owner_id":     ownerID,
		"copied_menus": result.CopiedMenus,
	})
	return result, nil
}

// copyTemplateMenus clones every active template menu, sort order included.
func copyTemplateMenus(menus repository.MenuRepository, templateShopID, shopID uint) (int, error) {
	source, err := menus.FindActiveByShop(templateShopID)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		logger.Info("Template shop has no active menus", logger.Fields{
			"template_shop_id": templateShopID,
		})
		return 0, nil
	}

	copies := make([]model.Menu, 0, len(source))
	for _, m := range source {
		copies = append(copies, model.Menu{
			ShopID:               shopID,
			Name:                 m.Name,
			BasePrice:            m.BasePrice,
			DefaultDiscount:      m.DefaultDiscount,
			DefaultIntervalMonth: m.DefaultIntervalMonth,
			DurationMin:          m.DurationMin,
			Category:             m.Category,
			IsActive:             true,
			SortOrder:            m.SortOrder,
		})
	}
	if err := menus.CreateBatch(copies); err != nil {
		return 0, err
	}
	return len(copies), nil
}

func (s *shopService) UpdateShop(ownerID string, input ShopMutation) (*model.Shop, error) {
	shop, err := s.GetMyShop(ownerID)
	if err != nil {
		return nil, err
	}

	applyShopMutation(shop, input)
	if err := validateShop(shop); err != nil {
		return nil, err
	}

	if err := s.shopRepo.Update(shop); err != nil {
		return nil, err
	}

	logger.Info("Shop updated", logger.Fields{
		"shop_id":  shop.ID,
		"owner_id": ownerID,
	})
	return shop, nil
}

func applyShopMutation(shop *model.Shop, input ShopMutation) {
	if input.Name != nil {
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		shop.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		shop.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BusinessHours != nil {
		shop.BusinessHours = strings.TrimSpace(*input.BusinessHours)
	}
	if input.LastOrder != nil {
		shop.LastOrder = strings.TrimSpace(*input.LastOrder)
	}
	if input.Holiday != nil {
		shop.Holiday = strings.TrimSpace(*input.Holiday)
	}
}

func validateShop(shop *model.Shop) error {
	switch {
	case shop.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidShop)
	case shop.Address == "":
		return fmt.Errorf("%w: address is required", ErrInvalidShop)
	case shop.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidShop)
	}
	return nil
}
