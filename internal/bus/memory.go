package bus

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Memory is an in-process Bus. Publish dispatches synchronously to every
// handler subscribed to the topic and records the event.
type Memory struct {
	mu        sync.Mutex
	handlers  map[string][]Handler
	published []Event
	log       *zap.SugaredLogger
}

// NewMemory creates an empty in-memory bus
func NewMemory() *Memory {
	return &Memory{
		handlers: make(map[string][]Handler),
		log:      zap.S().Named("bus"),
	}
}

// Publish records the event and runs subscribed handlers before returning.
// Handler errors are logged, as they would be on NATS.
func (m *Memory) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	evt, err := NewEvent(topic, payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.published = append(m.published, evt)
	handlers := append([]Handler(nil), m.handlers[topic]...)
	m.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			m.log.Errorw("handler failed", "topic", topic, "event_id", evt.ID, "error", err)
		}
	}
	return nil
}

// Subscribe registers h for topic
func (m *Memory) Subscribe(topic string, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = append(m.handlers[topic], h)
	return nil
}

// Published returns the events published on topic, oldest first
func (m *Memory) Published(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, evt := range m.published {
		if evt.Topic == topic {
			out = append(out, evt)
		}
	}
	return out
}

// Close drops all handlers
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[string][]Handler)
}
