package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

const exchangeKind = "topic"

// Publisher delivers committed ledger events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event *types.LedgerEvent) error
	Shutdown()
}

// QueueManager publishes ledger events to a RabbitMQ topic exchange, routed
// by event type.
type QueueManager struct {
	cfg    *config.QueueConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig, logger *zap.Logger) (*QueueManager, error) {
	amqpURL := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.QueueUser, cfg.QueuePassword),
		Host:   cfg.Url,
	}
	conn, err := amqp.Dial(amqpURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	err = channel.ExchangeDeclare(cfg.Exchange, exchangeKind, true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("connected to rabbitmq", zap.String("exchange", cfg.Exchange), zap.String("host", cfg.Url))
	return &QueueManager{
		cfg:     cfg,
		logger:  logger,
		conn:    conn,
		channel: channel,
	}, nil
}

func (qm *QueueManager) Publish(ctx context.Context, event *types.LedgerEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	qm.mu.Lock()
	defer qm.mu.Unlock()

	err = qm.channel.PublishWithContext(ctx, qm.cfg.Exchange, event.Type.String(), false, false, msg)
	if err != nil {
		qm.logger.Error("failed to publish ledger event",
			zap.String("type", event.Type.String()),
			zap.String("account", event.Account),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	qm.logger.Debug("published ledger event",
		zap.String("type", event.Type.String()),
		zap.String("trace_id", event.TraceID),
	)
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	qm.logger.Info("shutting down queue manager")
	if err := qm.channel.Close(); err != nil {
		qm.logger.Warn("failed to close rabbitmq channel", zap.Error(err))
	}
	if err := qm.conn.Close(); err != nil {
		qm.logger.Warn("failed to close rabbitmq connection", zap.Error(err))
	}
}

func newPublishing(event *types.LedgerEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode %s: %w", event.Type, err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Type:          event.Type.String(),
		CorrelationId: event.TraceID,
		Timestamp:     time.Unix(event.Timestamp, 0).UTC(),
		Body:          body,
	}, nil
}

// NoopPublisher drops every event. It is used when the queue is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event *types.LedgerEvent) error {
	return nil
}

func (NoopPublisher) Shutdown() {}
