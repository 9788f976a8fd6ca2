package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/salonflow-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Viewers only listen; anything larger than a control frame is abuse.
	maxMessageSize = 512
)

// Serve streams sub to conn until either side goes away. It blocks and
// cancels sub before returning.
func Serve(conn *websocket.Conn, sub *Subscription) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, sub)
	}()

	readPump(conn, sub)
	sub.Cancel()
	<-done
}

// readPump only drains control frames; it returns when the peer closes.
func readPump(conn *websocket.Conn, sub *Subscription) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, logger.Fields{
					"shop_id": sub.ShopID,
				})
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub dropped the subscription
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write menu event", err, logger.Fields{
					"shop_id": sub.ShopID,
				})
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
