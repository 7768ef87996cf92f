package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// AMQPConfig holds broker settings for the AMQP publisher
type AMQPConfig struct {
	URL      string
	Exchange string
}

// DefaultAMQPConfig returns the default exchange with no broker URL
func DefaultAMQPConfig() AMQPConfig {
	return AMQPConfig{Exchange: "arcade.events"}
}

// channel is the subset of *amqp.Channel the publisher uses
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as JSON to a durable direct exchange.
// The routing key is the event type, so consumers bind only to what they need.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *slog.Logger

	// seq orders messages from this publisher and keeps message ids unique
	// when two events share a timestamp
	seq uint64
}

// DialAMQP connects to the broker and declares the exchange
func DialAMQP(cfg AMQPConfig, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newAMQPPublisher(ch, cfg.Exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger.With(slog.String("component", "amqp-publisher")),
	}, nil
}

// Publish sends one event. The channel is not safe for concurrent use, so
// publishes are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	err = p.ch.Publish(p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		MessageId:    messageID(event, p.seq),
	})
	if err != nil {
		p.logger.Error("publish failed",
			slog.String("type", string(event.Type)),
			slog.String("session_id", string(event.SessionID)),
			slog.Any("error", err))
		return err
	}
	return nil
}

// messageID identifies one publish for consumer dedup
func messageID(event model.Event, seq uint64) string {
	return fmt.Sprintf("%s:%s:%d:%d", event.SessionID, event.Type, event.Timestamp.UnixNano(), seq)
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ Publisher = (*AMQPPublisher)(nil)
