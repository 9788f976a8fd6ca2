package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "salonflow:menus:"
	channelPattern = channelPrefix + "*"
)

// Deliverer hands an event to local subscribers.
type Deliverer interface {
	Deliver(event model.MenuEvent) error
}

// RedisRelay publishes menu events to Redis and feeds events published by
// any instance, this one included, into the local hub.
type RedisRelay struct {
	client *redis.Client
	local  Deliverer
}

func NewRedisRelay(client *redis.Client, local Deliverer) *RedisRelay {
	return &RedisRelay{client: client, local: local}
}

func ShopChannel(shopID uint) string {
	return fmt.Sprintf("%s%d", channelPrefix, shopID)
}

func (r *RedisRelay) PublishMenuEvent(ctx context.Context, event model.MenuEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, ShopChannel(event.ShopID), data).Err(); err != nil {
		logger.Error("Failed to publish menu event to Redis", err, logger.Fields{
			"shop_id": event.ShopID,
		})
		return err
	}
	return nil
}

// Run relays until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channelPattern, err)
	}
	logger.Info("Menu event relay subscribed", logger.Fields{"pattern": channelPattern})

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	event, err := decodeEnvelope([]byte(payload))
	if err != nil {
		logger.Warn("Dropping malformed menu event", logger.Fields{"error": err.Error()})
		return
	}
	if err := r.local.Deliver(event); err != nil {
		logger.Warn("Failed to deliver relayed menu event", logger.Fields{
			"shop_id": event.ShopID,
			"error":   err.Error(),
		})
	}
}

func decodeEnvelope(data []byte) (model.MenuEvent, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.MenuEvent{}, err
	}
	if envelope.Version != EnvelopeVersion {
		return model.MenuEvent{}, fmt.Errorf("unsupported envelope version %d", envelope.Version)
	}
	return envelope.Event()
}
