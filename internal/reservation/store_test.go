package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state := NewState("session-1", testShop, testNow)
	require.NoError(t, state.SelectMenus(testMenus(), 0.1, testNow))
	require.NoError(t, store.Save(ctx, state, time.Hour))

	loaded, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, state.TotalAmount, loaded.TotalAmount)
	assert.Equal(t, state.AppointmentDate, loaded.AppointmentDate)
	assert.Len(t, loaded.SelectedMenus, 2)

	// loaded copies are independent
	loaded.Step = model.StepQR
	again, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StepMenu, again.Step)
}

func TestMemoryStoreMissingSession(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	clock := testNow
	store := NewMemoryStore()
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, NewState("short", testShop, testNow), time.Minute))
	require.NoError(t, store.Save(ctx, NewState("long", testShop, testNow), time.Hour))

	clock = testNow.Add(2 * time.Minute)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 1, store.Sweep(clock))
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, NewState("gone", testShop, testNow), time.Hour))
	require.NoError(t, store.Delete(ctx, "gone"))

	_, err := store.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := testNow
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Create(ctx, NewState("dup", testShop, testNow), time.Minute))
	assert.ErrorIs(t, store.Create(ctx, NewState("dup", testShop, testNow), time.Minute), ErrSessionExists)

	// an expired session frees its id
	clock = clock.Add(2 * time.Minute)
	assert.NoError(t, store.Create(ctx, NewState("dup", testShop, testNow), time.Minute))
}
