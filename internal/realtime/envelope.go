// Package realtime carries menu events beyond the local websocket hub:
// across instances through Redis pub/sub and to downstream consumers
// through Kafka.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/salonflow-backend/internal/app/model"
)

const EnvelopeVersion = 1

// Envelope is the wire form of a menu event outside the process.
type Envelope struct {
	ID         string          `json:"id"`
	Version    int             `json:"version"`
	Type       string          `json:"type"`
	ShopID     uint            `json:"shop_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(event model.MenuEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:         uuid.NewString(),
		Version:    EnvelopeVersion,
		Type:       string(event.Type),
		ShopID:     event.ShopID,
		OccurredAt: event.OccurredAt,
		Payload:    payload,
	}, nil
}

// Event decodes the wrapped menu event.
func (e *Envelope) Event() (model.MenuEvent, error) {
	var event model.MenuEvent
	err := json.Unmarshal(e.Payload, &event)
	return event, err
}
