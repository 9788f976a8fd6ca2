package service

import (
	"context"
	"time"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/pkg/logger"
)

const publishTimeout = 3 * time.Second

// MenuEventPublisher receives every committed menu change.
type MenuEventPublisher interface {
	PublishMenuEvent(ctx context.Context, event model.MenuEvent) error
}

// FanoutPublisher delivers one event to several publishers; a failing
// publisher does not stop the others.
type FanoutPublisher []MenuEventPublisher

func (f FanoutPublisher) PublishMenuEvent(ctx context.Context, event model.MenuEvent) error {
	var firstErr error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishMenuEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// publishMenuEvent never fails the write that triggered it; viewers
// refetch on reconnect.
func publishMenuEvent(p MenuEventPublisher, event model.MenuEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishMenuEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish menu event", logger.Fields{
			"type":    event.Type,
			"shop_id": event.ShopID,
			"menu_id": event.MenuID,
			"error":   err.Error(),
		})
	}
}
