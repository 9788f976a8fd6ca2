package repository

import (
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(shop *model.Shop) error
	FindByID(id uint) (*model.Shop, error)
	FindByOwnerID(ownerID string) (*model.Shop, error)
	// FindTemplate returns the shop whose menus seed new shops: the earliest
	// created one, lowest id on ties.
	FindTemplate() (*model.Shop, error)
	Update(shop *model.Shop) error
	Count() (int64, error)
	WithTx(tx *gorm.DB) ShopRepository
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) WithTx(tx *gorm.DB) ShopRepository {
	return &shopRepository{db: tx}
}

func (r *shopRepository) Create(shop *model.Shop) error {
	logger.Debug("Creating shop in database", logger.Fields{
		"owner_id": shop.OwnerID,
		"name":     shop.Name,
	})

	if err := r.db.Create(shop).Error; err != nil {
		logger.Error("Failed to create shop in database", err, logger.Fields{
			"owner_id": shop.OwnerID,
		})
		return err
	}

	logger.Debug("Shop created in database", logger.Fields{
		"shop_id":  shop.ID,
		"owner_id": shop.OwnerID,
	})
	return nil
}

func (r *shopRepository) FindByID(id uint) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find shop by ID", err, logger.Fields{"shop_id": id})
		}
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindByOwnerID(ownerID string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find shop by owner", err, logger.Fields{"owner_id": ownerID})
		}
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindTemplate() (*model.Shop, error) {
	var shop model.Shop
	err := r.db.Order("created_at ASC").Order("id ASC").Limit(1).Find(&shop).Error
	if err != nil {
		logger.Error("Failed to find template shop", err)
		return nil, err
	}
	if shop.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	logger.Debug("Template shop resolved", logger.Fields{
		"shop_id":    shop.ID,
		"created_at": shop.CreatedAt,
	})
	return &shop, nil
}

func (r *shopRepository) Update(shop *model.Shop) error {
	logger.Debug("Updating shop in database", logger.Fields{"shop_id": shop.ID})

	if err := r.db.Save(shop).Error; err != nil {
		logger.Error("Failed to update shop in database", err, logger.Fields{"shop_id": shop.ID})
		return err
	}
	return nil
}

func (r *shopRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Shop{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count shops", err)
		return 0, err
	}
	return count, nil
}
