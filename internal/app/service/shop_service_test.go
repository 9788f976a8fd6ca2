package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func validShopInput(name string) ShopMutation {
	return ShopMutation{
		Name:          strPtr(name),
		Address:       strPtr("2-1 Omotesando, Tokyo"),
		Phone:         strPtr("03-1111-2222"),
		BusinessHours: strPtr("10:00-20:00"),
	}
}

func TestShopService_CreateShopCopiesTemplateMenus(t *testing.T) {
	env := setupServiceTest(t)
	template := env.seedShop(t, "template-owner", epoch, templateMenus()...)
	// inactive menus are not copied
	hidden := model.Menu{ShopID: template.ID, Name: "Retired", BasePrice: 1000, DurationMin: 10,
		DefaultIntervalMonth: 1, Category: model.CategoryOther, IsActive: true, SortOrder: 9}
	require.NoError(t, env.menuRepo.Create(&hidden))
	require.NoError(t, env.menuRepo.Deactivate(hidden.ID))

	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)
	result, err := svc.CreateShop("new-owner", validShopInput("Salon Hana"))
	require.NoError(t, err)

	require.NotNil(t, result.TemplateShopID)
	assert.Equal(t, template.ID, *result.TemplateShopID)
	assert.Equal(t, 3, result.CopiedMenus)

	copied, err := env.menuRepo.FindActiveByShop(result.Shop.ID)
	require.NoError(t, err)
	require.Len(t, copied, 3)

	original, err := env.menuRepo.FindActiveByShop(template.ID)
	require.NoError(t, err)
	for i := range copied {
		assert.NotEqual(t, original[i].ID, copied[i].ID)
		assert.Equal(t, result.Shop.ID, copied[i].ShopID)
		assert.Equal(t, original[i].Name, copied[i].Name)
		assert.Equal(t, original[i].BasePrice, copied[i].BasePrice)
		assert.Equal(t, original[i].DefaultDiscount, copied[i].DefaultDiscount)
		assert.Equal(t, original[i].DefaultIntervalMonth, copied[i].DefaultIntervalMonth)
		assert.Equal(t, original[i].DurationMin, copied[i].DurationMin)
		assert.Equal(t, original[i].Category, copied[i].Category)
		assert.Equal(t, original[i].SortOrder, copied[i].SortOrder)
		assert.True(t, copied[i].IsActive)
	}
}

func TestShopService_FirstShopHasNoTemplate(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)

	result, err := svc.CreateShop("first-owner", validShopInput("First Salon"))
	require.NoError(t, err)
	assert.Nil(t, result.TemplateShopID)
	assert.Zero(t, result.CopiedMenus)

	public, err := svc.GetPublicShop()
	require.NoError(t, err)
	assert.Equal(t, result.Shop.ID, public.ID)
}

func TestShopService_OneShopPerOwner(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)

	_, err := svc.CreateShop("owner", validShopInput("One"))
	require.NoError(t, err)

	_, err = svc.CreateShop("owner", validShopInput("Two"))
	assert.ErrorIs(t, err, ErrShopAlreadyExists)
}

func TestShopService_CreateShopValidation(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)

	tests := []struct {
		name  string
		input ShopMutation
	}{
		{"missing name", ShopMutation{Address: strPtr("a"), Phone: strPtr("1")}},
		{"blank address", ShopMutation{Name: strPtr("n"), Address: strPtr("  "), Phone: strPtr("1")}},
		{"missing phone", ShopMutation{Name: strPtr("n"), Address: strPtr("a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShop("owner", tt.input)
			assert.ErrorIs(t, err, ErrInvalidShop)
		})
	}

	count, err := env.shopRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingBatchRepo struct {
	repository.MenuRepository
}

func (f failingBatchRepo) WithTx(tx *gorm.DB) repository.MenuRepository {
	return failingBatchRepo{f.MenuRepository.WithTx(tx)}
}

func (f failingBatchRepo) CreateBatch([]model.Menu) error {
	return errors.New("disk full")
}

func TestShopService_ProvisioningFailureRollsBackShop(t *testing.T) {
	env := setupServiceTest(t)
	env.seedShop(t, "template-owner", epoch, templateMenus()...)

	svc := NewShopService(env.db, env.shopRepo, failingBatchRepo{env.menuRepo})
	_, err := svc.CreateShop("new-owner", validShopInput("Doomed"))
	require.Error(t, err)

	_, err = env.shopRepo.FindByOwnerID("new-owner")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// owner can retry once the store recovers
	retry := NewShopService(env.db, env.shopRepo, env.menuRepo)
	result, err := retry.CreateShop("new-owner", validShopInput("Doomed"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.CopiedMenus)
}

// staleOwnerLookup misses the owner's existing shop, as a request racing
// another one for the same owner would.
type staleOwnerLookup struct {
	repository.ShopRepository
}

func (r staleOwnerLookup) WithTx(tx *gorm.DB) repository.ShopRepository {
	return staleOwnerLookup{r.ShopRepository.WithTx(tx)}
}

func (r staleOwnerLookup) FindByOwnerID(string) (*model.Shop, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestShopService_ConcurrentCreateIsAlreadyExists(t *testing.T) {
	env := setupServiceTest(t)
	env.seedShop(t, "template-owner", epoch, templateMenus()...)
	env.seedShop(t, "owner-1", epoch.Add(time.Hour))

	svc := NewShopService(env.db, staleOwnerLookup{env.shopRepo}, env.menuRepo)
	_, err := svc.CreateShop("owner-1", validShopInput("Second"))
	assert.ErrorIs(t, err, ErrShopAlreadyExists)

	count, err := env.shopRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestShopService_UpdateShop(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)

	_, err := svc.UpdateShop("nobody", validShopInput("x"))
	assert.ErrorIs(t, err, ErrShopNotFound)

	_, err = svc.CreateShop("owner", validShopInput("Before"))
	require.NoError(t, err)

	updated, err := svc.UpdateShop("owner", ShopMutation{Name: strPtr("After"), Holiday: strPtr("Mondays")})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "Mondays", updated.Holiday)
	assert.Equal(t, "10:00-20:00", updated.BusinessHours)

	_, err = svc.UpdateShop("owner", ShopMutation{Phone: strPtr("")})
	assert.ErrorIs(t, err, ErrInvalidShop)
}

func TestShopService_Lookups(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewShopService(env.db, env.shopRepo, env.menuRepo)

	_, err := svc.GetPublicShop()
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = svc.GetShop(42)
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = svc.GetMyShop("owner")
	assert.ErrorIs(t, err, ErrShopNotFound)

	shop := env.seedShop(t, "owner", epoch)
	found, err := svc.GetShop(shop.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", found.OwnerID)
}
