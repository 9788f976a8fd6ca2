package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, sub *Subscription) model.MenuEvent {
	t.Helper()
	select {
	case payload, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		var event model.MenuEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return model.MenuEvent{}
}

func TestHub_DeliversOnlyToShopRoom(t *testing.T) {
	hub := runHub(t)

	shop1 := hub.Subscribe(1)
	defer shop1.Cancel()
	shop2 := hub.Subscribe(2)
	defer shop2.Cancel()

	require.NoError(t, hub.PublishMenuEvent(context.Background(), model.MenuEvent{
		Type:   model.MenuCreated,
		ShopID: 1,
		MenuID: 10,
	}))

	event := receive(t, shop1)
	assert.Equal(t, model.MenuCreated, event.Type)
	assert.Equal(t, uint(10), event.MenuID)

	select {
	case <-shop2.Events():
		t.Fatal("other shop must not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CancelClosesAndCounts(t *testing.T) {
	hub := runHub(t)

	a := hub.Subscribe(1)
	b := hub.Subscribe(1)
	c := hub.Subscribe(3)
	assert.Equal(t, 3, hub.SubscriberCount())
	assert.Equal(t, 2, hub.ShopSubscriberCount(1))

	a.Cancel()
	a.Cancel()
	_, open := <-a.Events()
	assert.False(t, open)
	assert.Equal(t, 2, hub.SubscriberCount())

	b.Cancel()
	c.Cancel()
	assert.Zero(t, hub.SubscriberCount())
	assert.Zero(t, hub.ShopSubscriberCount(1))
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := runHub(t)
	slow := hub.Subscribe(1)

	for i := 0; i < subscriptionBuffer+5; i++ {
		require.NoError(t, hub.Deliver(model.MenuEvent{Type: model.MenuUpdated, ShopID: 1}))
	}

	assert.Eventually(t, func() bool {
		return hub.ShopSubscriberCount(1) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// buffered events are still readable, then the channel reports closed
	received := 0
	for range slow.Events() {
		received++
	}
	assert.Equal(t, subscriptionBuffer, received)
}

func TestServe_StreamsEventsOverWebSocket(t *testing.T) {
	hub := runHub(t)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		Serve(conn, hub.Subscribe(7))
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		return hub.ShopSubscriberCount(7) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Deliver(model.MenuEvent{Type: model.MenuDeleted, ShopID: 7, MenuID: 3}))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event model.MenuEvent
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, model.MenuDeleted, event.Type)
	assert.Equal(t, uint(3), event.MenuID)

	client.Close()
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
