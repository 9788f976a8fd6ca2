package repository

import (
	"testing"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/booking"
	"github.com/ikkim/salonflow-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMenuTest(t *testing.T) (*gorm.DB, MenuRepository, *model.Shop) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	shop := &model.Shop{OwnerID: "owner-1", Name: "Salon", Address: "Tokyo", Phone: "03"}
	require.NoError(t, testDB.Create(shop).Error)

	return testDB, NewMenuRepository(testDB), shop
}

func newMenu(shopID uint, name string, sortOrder int, category model.MenuCategory) *model.Menu {
	return &model.Menu{
		ShopID:               shopID,
		Name:                 name,
		BasePrice:            5000,
		DefaultIntervalMonth: 1,
		DurationMin:          60,
		Category:             category,
		IsActive:             true,
		SortOrder:            sortOrder,
	}
}

func menuNames(menus []model.Menu) []string {
	names := make([]string, 0, len(menus))
	for _, m := range menus {
		names = append(names, m.Name)
	}
	return names
}

func TestMenuRepository_FindActiveByShopOrdering(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	require.NoError(t, repo.Create(newMenu(shop.ID, "Treatment", 2, model.CategoryTreatment)))
	require.NoError(t, repo.Create(newMenu(shop.ID, "Color", 1, model.CategoryColor)))
	require.NoError(t, repo.Create(newMenu(shop.ID, "Cut", 1, model.CategoryCut)))
	require.NoError(t, repo.Create(newMenu(shop.ID, "Bang trim", 0, model.CategoryCut)))

	menus, err := repo.FindActiveByShop(shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bang trim", "Color", "Cut", "Treatment"}, menuNames(menus))
}

func TestMenuRepository_Deactivate(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	menu := newMenu(shop.ID, "Cut", 1, model.CategoryCut)
	require.NoError(t, repo.Create(menu))
	require.NoError(t, repo.Deactivate(menu.ID))

	menus, err := repo.FindActiveByShop(shop.ID)
	require.NoError(t, err)
	assert.Empty(t, menus)

	// soft delete keeps the row
	found, err := repo.FindByID(menu.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	assert.ErrorIs(t, repo.Deactivate(9999), gorm.ErrRecordNotFound)
}

func TestMenuRepository_ApplySortOrders(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	a := newMenu(shop.ID, "A", 1, model.CategoryCut)
	b := newMenu(shop.ID, "B", 2, model.CategoryCut)
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	require.NoError(t, repo.ApplySortOrders([]booking.SortOrderUpdate{
		{MenuID: a.ID, SortOrder: 2},
		{MenuID: b.ID, SortOrder: 1},
	}))

	menus, err := repo.FindActiveByShop(shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, menuNames(menus))

	assert.NoError(t, repo.ApplySortOrders(nil))
}

func TestMenuRepository_CreateBatch(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	batch := []model.Menu{
		*newMenu(shop.ID, "Cut", 1, model.CategoryCut),
		*newMenu(shop.ID, "Color", 2, model.CategoryColor),
	}
	require.NoError(t, repo.CreateBatch(batch))
	assert.NotZero(t, batch[0].ID)
	assert.NotZero(t, batch[1].ID)

	assert.NoError(t, repo.CreateBatch(nil))
}

func TestMenuRepository_Counts(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	require.NoError(t, repo.Create(newMenu(shop.ID, "Cut", 1, model.CategoryCut)))
	require.NoError(t, repo.Create(newMenu(shop.ID, "Kids cut", 2, model.CategoryCut)))
	require.NoError(t, repo.Create(newMenu(shop.ID, "Color", 3, model.CategoryColor)))
	inactive := newMenu(shop.ID, "Old perm", 4, model.CategoryStraight)
	require.NoError(t, repo.Create(inactive))
	require.NoError(t, repo.Deactivate(inactive.ID))

	total, err := repo.CountActive()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	byCategory, err := repo.CountActiveByCategory()
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: model.CategoryColor, Count: 1},
		{Category: model.CategoryCut, Count: 2},
	}, byCategory)
}

func TestMenuRepository_Update(t *testing.T) {
	_, repo, shop := setupMenuTest(t)

	menu := newMenu(shop.ID, "Cut", 1, model.CategoryCut)
	require.NoError(t, repo.Create(menu))

	menu.BasePrice = 5500
	menu.DefaultDiscount = 0.1
	require.NoError(t, repo.Update(menu))

	found, err := repo.FindByID(menu.ID)
	require.NoError(t, err)
	assert.Equal(t, 5500, found.BasePrice)
	assert.Equal(t, 0.1, found.DefaultDiscount)
}
