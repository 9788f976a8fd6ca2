package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/ikkim/salonflow-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.MenuEvent
}

func (p *recordingPublisher) PublishMenuEvent(_ context.Context, event model.MenuEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []model.MenuEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.MenuEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db        *gorm.DB
	shopRepo  repository.ShopRepository
	menuRepo  repository.MenuRepository
	publisher *recordingPublisher
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &testEnv{
		db:        testDB,
		shopRepo:  repository.NewShopRepository(testDB),
		menuRepo:  repository.NewMenuRepository(testDB),
		publisher: &recordingPublisher{},
	}
}

// seedShop inserts a shop with the given active menus, oldest first.
func (e *testEnv) seedShop(t *testing.T, ownerID string, createdAt time.Time, menus ...model.Menu) *model.Shop {
	shop := &model.Shop{
		OwnerID:   ownerID,
		Name:      "Shop " + ownerID,
		Address:   "Tokyo",
		Phone:     "03-0000-0000",
		CreatedAt: createdAt,
	}
	require.NoError(t, e.shopRepo.Create(shop))
	for i := range menus {
		menus[i].ShopID = shop.ID
		if menus[i].DefaultIntervalMonth == 0 {
			menus[i].DefaultIntervalMonth = 1
		}
		require.NoError(t, e.menuRepo.Create(&menus[i]))
	}
	return shop
}

func templateMenus() []model.Menu {
	return []model.Menu{
		{Name: "Cut", BasePrice: 4000, DurationMin: 60, Category: model.CategoryCut, IsActive: true, SortOrder: 1},
		{Name: "Color", BasePrice: 6000, DefaultDiscount: 0.1, DefaultIntervalMonth: 2, DurationMin: 90, Category: model.CategoryColor, IsActive: true, SortOrder: 2},
		{Name: "Treatment", BasePrice: 3000, DurationMin: 30, Category: model.CategoryTreatment, IsActive: true, SortOrder: 3},
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func categoryPtr(c model.MenuCategory) *model.MenuCategory { return &c }
