package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher writes trade and quote messages to the fanout exchanges.
type Publisher struct {
	channel *amqp.Channel
	cfg     config.RabbitMQConfig
	logger  *logrus.Entry
	mu      sync.Mutex
}

func NewPublisher(conn *amqp.Connection, cfg config.RabbitMQConfig, logger *logrus.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	for _, name := range []string{cfg.TradesExchange, cfg.QuotesExchange} {
		if name == "" {
			ch.Close()
			return nil, errors.New("exchange name cannot be empty")
		}
		if err := declareFanout(ch, name); err != nil {
			ch.Close()
			return nil, err
		}
	}
	return &Publisher{
		channel: ch,
		cfg:     cfg,
		logger:  logger.WithField("component", "publisher"),
	}, nil
}

func (p *Publisher) Close() {
	if err := p.channel.Close(); err != nil {
		p.logger.WithError(err).Error("close rabbitmq channel")
	}
}

func (p *Publisher) PublishTrade(ctx context.Context, msg TradeMessage) error {
	return p.publish(ctx, p.cfg.TradesExchange, msg)
}

func (p *Publisher) PublishQuote(ctx context.Context, msg QuoteMessage) error {
	return p.publish(ctx, p.cfg.QuotesExchange, msg)
}

func (p *Publisher) publish(ctx context.Context, exchange string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
