package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/internal/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSweeper_RunOnce(t *testing.T) {
	store := reservation.NewMemoryStore()
	start := time.Now()
	ctx := context.Background()

	shop := model.Shop{ID: 1, Name: "Salon"}
	require.NoError(t, store.Save(ctx, reservation.NewState("short", shop, start), time.Hour))
	require.NoError(t, store.Save(ctx, reservation.NewState("long", shop, start), 3*time.Hour))

	sweeper := NewSessionSweeper(store, "@every 1m")
	sweeper.now = func() time.Time { return start.Add(2 * time.Hour) }
	sweeper.RunOnce()

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestSessionSweeper_InvalidSpec(t *testing.T) {
	sweeper := NewSessionSweeper(reservation.NewMemoryStore(), "not a cron spec")
	assert.Error(t, sweeper.Start())
}
