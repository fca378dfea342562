// Package notify delivers staff notifications.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQPublisher publishes notifications as persistent JSON messages on a
// durable fanout exchange. The routing key is the notification type.
// A closed channel or connection is replaced on the next publish.
type RabbitMQPublisher struct {
	mu     sync.Mutex
	cfg    config.RabbitMQConfig
	sess   *session
	logger *slog.Logger
}

type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (s *session) closed() bool {
	return s == nil || s.conn.IsClosed() || s.ch.IsClosed()
}

func (s *session) close() {
	if s == nil {
		return
	}
	if !s.ch.IsClosed() {
		_ = s.ch.Close()
	}
	if !s.conn.IsClosed() {
		_ = s.conn.Close()
	}
}

// NewRabbitMQPublisher dials once so misconfiguration fails at start-up.
func NewRabbitMQPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (*RabbitMQPublisher, error) {
	sess, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to rabbitmq", "exchange", cfg.Exchange)

	return &RabbitMQPublisher{
		cfg:    cfg,
		sess:   sess,
		logger: logger,
	}, nil
}

func dial(cfg config.RabbitMQConfig) (*session, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &session{conn: conn, ch: ch}, nil
}

// channel returns an open channel, redialing when the current one is gone.
// Callers hold p.mu.
func (p *RabbitMQPublisher) channel() (*amqp.Channel, error) {
	if !p.sess.closed() {
		return p.sess.ch, nil
	}
	p.sess.close()
	p.sess = nil

	sess, err := dial(p.cfg)
	if err != nil {
		return nil, err
	}
	p.logger.Info("reconnected to rabbitmq", "exchange", p.cfg.Exchange)
	p.sess = sess
	return sess.ch, nil
}

func (p *RabbitMQPublisher) Notify(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         n.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publish(ctx, n.Type, msg)
	if errors.Is(err, amqp.ErrClosed) {
		// The close notification can lag behind the failed publish.
		p.sess.close()
		p.sess = nil
		err = p.publish(ctx, n.Type, msg)
	}
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, p.cfg.Exchange, key, false, false, msg)
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return nil
	}
	if !p.sess.ch.IsClosed() {
		if err := p.sess.ch.Close(); err != nil {
			p.logger.Warn("closing rabbitmq channel", "error", err)
		}
	}
	conn := p.sess.conn
	p.sess = nil
	if conn.IsClosed() {
		return nil
	}
	return conn.Close()
}
