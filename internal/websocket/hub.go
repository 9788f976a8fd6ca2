package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/pkg/logger"
)

const (
	subscriptionBuffer = 32
	broadcastBuffer    = 1024
)

// Subscription is one viewer of a shop's menu list. Events is closed once
// the subscription is cancelled, either by the caller or by the hub when
// the viewer falls behind.
type Subscription struct {
	ShopID uint

	hub    *Hub
	events chan []byte
	once   sync.Once
}

// Events yields JSON encoded menu events.
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

type broadcastMessage struct {
	shopID  uint
	payload []byte
}

// Hub keeps one room of subscriptions per shop and fans menu events out
// to them.
type Hub struct {
	rooms     map[uint]map[*Subscription]struct{}
	broadcast chan broadcastMessage
	mu        sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[uint]map[*Subscription]struct{}),
		broadcast: make(chan broadcastMessage, broadcastBuffer),
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.broadcast:
			h.fanout(msg)
		}
	}
}

func (h *Hub) fanout(msg broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[msg.shopID] {
		select {
		case sub.events <- msg.payload:
		default:
			// Cancel takes the write lock, so it cannot run under RLock.
			go sub.Cancel()
			logger.Warn("Subscriber buffer full, disconnecting", logger.Fields{
				"shop_id": msg.shopID,
			})
		}
	}
}

// Subscribe registers a viewer of shopID. The caller must Cancel it.
func (h *Hub) Subscribe(shopID uint) *Subscription {
	sub := &Subscription{
		ShopID: shopID,
		hub:    h,
		events: make(chan []byte, subscriptionBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[shopID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[shopID] = room
	}
	room[sub] = struct{}{}
	viewers := len(room)
	h.mu.Unlock()

	logger.Info("Menu subscriber joined", logger.Fields{
		"shop_id": shopID,
		"viewers": viewers,
	})
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if room, ok := h.rooms[sub.ShopID]; ok {
		delete(room, sub)
		if len(room) == 0 {
			delete(h.rooms, sub.ShopID)
		}
	}
	close(sub.events)
	h.mu.Unlock()

	logger.Info("Menu subscriber left", logger.Fields{"shop_id": sub.ShopID})
}

// Deliver queues event for the local subscribers of its shop. A full
// queue drops the event; viewers refetch on reconnect.
func (h *Hub) Deliver(event model.MenuEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal menu event", err)
		return err
	}

	select {
	case h.broadcast <- broadcastMessage{shopID: event.ShopID, payload: payload}:
	default:
		logger.Warn("Broadcast queue full, menu event dropped", logger.Fields{
			"shop_id": event.ShopID,
			"type":    event.Type,
		})
	}
	return nil
}

// PublishMenuEvent lets the hub act as the publisher on a single instance.
func (h *Hub) PublishMenuEvent(_ context.Context, event model.MenuEvent) error {
	return h.Deliver(event)
}

// SubscriberCount is the number of live subscriptions across all shops.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// ShopSubscriberCount is the number of live subscriptions of one shop.
func (h *Hub) ShopSubscriberCount(shopID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[shopID])
}
