// Package messaging forwards cart and order events to a RabbitMQ topic
// exchange so that other services can follow the storefront.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/cart"
)

const DefaultExchange = "storefront.events"

type Config struct {
	URL            string
	Exchange       string
	MaxRetries     uint64
	RetryInterval  time.Duration
	PublishTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
	return c
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func encode(event cart.Event, at time.Time) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", event.Type())
	}
	return json.Marshal(Envelope{Type: event.Type(), OccurredAt: at.UTC(), Data: data})
}

// Publisher is a cart.Dispatcher backed by an AMQP channel. The routing key
// is the event type.
type Publisher struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials the broker, retrying with exponential backoff, and
// declares the exchange.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{cfg: cfg.withDefaults(), logger: logger}
	if err := p.connect(p.cfg.MaxRetries); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect(retries uint64) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.cfg.RetryInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		conn, err := amqp.Dial(p.cfg.URL)
		if err != nil {
			p.logger.Warn("amqp dial failed", zap.Int("attempt", attempt), zap.Error(err))
			return errors.Wrap(err, "dial amqp")
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return errors.Wrap(err, "open amqp channel")
		}
		if err := ch.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = conn.Close()
			return errors.Wrap(err, "declare exchange")
		}
		p.conn, p.channel = conn, ch
		p.logger.Info("amqp publisher connected", zap.String("exchange", p.cfg.Exchange))
		return nil
	}, backoff.WithMaxRetries(policy, retries))
}

// Dispatch publishes the event. A closed connection is re-dialled once.
func (p *Publisher) Dispatch(event cart.Event) error {
	body, err := encode(event, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(0); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PublishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.cfg.Exchange, event.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	return errors.Wrapf(err, "publish %s", event.Type())
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.channel = nil, nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
