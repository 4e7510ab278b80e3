package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Client is a NATS-backed Bus. Subscriptions join a queue group so each
// message is handled by one worker.
type Client struct {
	nc      *nats.Conn
	queue   string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// Option configures a Client
type Option func(*Client)

// WithQueue sets the queue group used by Subscribe
func WithQueue(queue string) Option {
	return func(c *Client) { c.queue = queue }
}

// WithHandlerTimeout bounds each handler invocation. Zero means no bound.
func WithHandlerTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Connect dials the NATS server at url
func Connect(url string, opts ...Option) (*Client, error) {
	c := &Client{log: zap.S().Named("bus")}
	for _, opt := range opts {
		opt(c)
	}

	nc, err := nats.Connect(url,
		nats.Name("outreach-pipeline"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.log.Warnw("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.log.Infow("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	c.nc = nc
	return c, nil
}

// Close drains subscriptions and pending publishes, then closes the connection
func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

// Conn exposes the underlying connection
func (c *Client) Conn() *nats.Conn { return c.nc }

// Publish wraps payload in an envelope and publishes it on topic
func (c *Client) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	evt, err := NewEvent(topic, payload)
	if err != nil {
		return err
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	if err := c.nc.Publish(topic, b); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// Flush waits until the server has processed all buffered publishes
func (c *Client) Flush(ctx context.Context) error {
	return c.nc.FlushWithContext(ctx)
}

// Subscribe registers h for topic. Handler errors are logged; NATS core
// delivery has no redelivery to hand them back to.
func (c *Client) Subscribe(topic string, h Handler) error {
	cb := func(msg *nats.Msg) {
		ctx := context.Background()
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		evt, err := Parse(msg.Subject, msg.Data)
		if err != nil {
			c.log.Errorw("dropping malformed message", "topic", msg.Subject, "error", err)
			return
		}
		if err := h(ctx, evt); err != nil {
			c.log.Errorw("handler failed", "topic", evt.Topic, "event_id", evt.ID, "error", err)
		}
	}

	var err error
	if c.queue != "" {
		_, err = c.nc.QueueSubscribe(topic, c.queue, cb)
	} else {
		_, err = c.nc.Subscribe(topic, cb)
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return nil
}
