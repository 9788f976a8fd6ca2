package repository

import (
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/booking"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"gorm.io/gorm"
)

// CategoryCount is one row of the active-menu breakdown.
type CategoryCount struct {
	Category model.MenuCategory `json:"category"`
	Count    int64              `json:"count"`
}

type MenuRepository interface {
	Create(menu *model.Menu) error
	CreateBatch(menus []model.Menu) error
	FindByID(id uint) (*model.Menu, error)
	// FindActiveByShop returns the shop's active menus in display order.
	FindActiveByShop(shopID uint) ([]model.Menu, error)
	Update(menu *model.Menu) error
	Deactivate(id uint) error
	// ApplySortOrders writes every update in one transaction.
	ApplySortOrders(updates []booking.SortOrderUpdate) error
	CountActive() (int64, error)
	CountActiveByCategory() ([]CategoryCount, error)
	WithTx(tx *gorm.DB) MenuRepository
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) WithTx(tx *gorm.DB) MenuRepository {
	return &menuRepository{db: tx}
}

func (r *menuRepository) Create(menu *model.Menu) error {
	logger.Debug("Creating menu in database", logger.Fields{
		"shop_id":    menu.ShopID,
		"name":       menu.Name,
		"sort_order": menu.SortOrder,
	})

	if err := r.db.Create(menu).Error; err != nil {
		logger.Error("Failed to create menu in database", err, logger.Fields{
			"shop_id": menu.ShopID,
			"name":    menu.Name,
		})
		return err
	}

	logger.Debug("Menu created in database", logger.Fields{
		"menu_id": menu.ID,
		"shop_id": menu.ShopID,
	})
	return nil
}

func (r *menuRepository) CreateBatch(menus []model.Menu) error {
	if len(menus) == 0 {
		return nil
	}
	if err := r.db.Create(&menus).Error; err != nil {
		logger.Error("Failed to create menus in database", err, logger.Fields{
			"count":   len(menus),
			"shop_id": menus[0].ShopID,
		})
		return err
	}
	return nil
}

func (r *menuRepository) FindByID(id uint) (*model.Menu, error) {
	var menu model.Menu
	if err := r.db.First(&menu, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find menu by ID", err, logger.Fields{"menu_id": id})
		}
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) FindActiveByShop(shopID uint) ([]model.Menu, error) {
	var menus []model.Menu
	err := r.db.
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Order("COALESCE(sort_order, 0) ASC").
		Order("name ASC").
		Order("id ASC").
		Find(&menus).Error
	if err != nil {
		logger.Error("Failed to find menus by shop", err, logger.Fields{"shop_id": shopID})
		return nil, err
	}

	// SQL collation may differ from Go string order on ties.
	booking.SortMenus(menus)

	logger.Debug("Found menus by shop", logger.Fields{
		"shop_id": shopID,
		"count":   len(menus),
	})
	return menus, nil
}

func (r *menuRepository) Update(menu *model.Menu) error {
	logger.Debug("Updating menu in database", logger.Fields{"menu_id": menu.ID})

	if err := r.db.Save(menu).Error; err != nil {
		logger.Error("Failed to update menu in database", err, logger.Fields{"menu_id": menu.ID})
		return err
	}
	return nil
}

func (r *menuRepository) Deactivate(id uint) error {
	result := r.db.Model(&model.Menu{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate menu", result.Error, logger.Fields{"menu_id": id})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *menuRepository) ApplySortOrders(updates []booking.SortOrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&model.Menu{}).
				Where("id = ?", u.MenuID).
				Update("sort_order", u.SortOrder).Error
			if err != nil {
				logger.Error("Failed to update menu sort order", err, logger.Fields{
					"menu_id":    u.MenuID,
					"sort_order": u.SortOrder,
				})
				return err
			}
		}
		logger.Debug("Menu sort orders applied", logger.Fields{"count": len(updates)})
		return nil
	})
}

func (r *menuRepository) CountActive() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Menu{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		logger.Error("Failed to count active menus", err)
		return 0, err
	}
	return count, nil
}

func (r *menuRepository) CountActiveByCategory() ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.Model(&model.Menu{}).
		Select("category, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count menus by category", err)
		return nil, err
	}
	return rows, nil
}
