// Package bus carries pipeline events between stages over NATS or in memory.
package bus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyPayload is returned by Decode when the event carries no data
var ErrEmptyPayload = errors.New("event has no payload")

// Event is the envelope published on every topic
type Event struct {
	ID    string          `json:"id"`
	Topic string          `json:"topic"`
	At    time.Time       `json:"at"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler processes one event
type Handler func(ctx context.Context, evt Event) error

// Publisher emits events
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Subscriber registers handlers for topics
type Subscriber interface {
	Subscribe(topic string, h Handler) error
}

// Bus is a Publisher and Subscriber that owns a connection
type Bus interface {
	Publisher
	Subscriber
	Close()
}

// NewEvent wraps payload in an envelope with a fresh id
func NewEvent(topic string, payload any) (Event, error) {
	evt := Event{
		ID:    uuid.NewString(),
		Topic: topic,
		At:    time.Now().UTC(),
	}
	if payload == nil {
		return evt, nil
	}

	if raw, ok := payload.(json.RawMessage); ok {
		evt.Data = raw
		return evt, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	evt.Data = data
	return evt, nil
}

// Parse reads an envelope from raw message bytes. Messages that are not an
// envelope for topic are treated as a bare payload, so producers that
// publish plain JSON are still accepted.
func Parse(topic string, raw []byte) (Event, error) {
	raw = bytes.TrimSpace(raw)

	var evt Event
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &evt); err == nil && evt.Topic == topic && evt.ID != "" {
			if evt.At.IsZero() {
				evt.At = time.Now().UTC()
			}
			return evt, nil
		}
	}

	if len(raw) > 0 && !json.Valid(raw) {
		return Event{}, fmt.Errorf("message on %s is not valid JSON", topic)
	}

	evt, err := NewEvent(topic, nil)
	if err != nil {
		return Event{}, err
	}
	if len(raw) > 0 {
		evt.Data = json.RawMessage(raw)
	}
	return evt, nil
}

// Decode unmarshals the event payload into v
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Topic, err)
	}
	return nil
}
