package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for catalog events.
const (
	EventTypeBookCreated = "CREATE"
)

// BookEvent is the message published to the books topic after a write.
type BookEvent struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewBookCreatedEvent builds a CREATE event for a freshly persisted book.
// The book is JSON-serialized as the event payload.
func NewBookCreatedEvent(book *Book) (*BookEvent, error) {
	data, err := json.Marshal(book)
	if err != nil {
		return nil, err
	}

	return &BookEvent{
		EventID:    uuid.New().String(),
		EventType:  EventTypeBookCreated,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}
