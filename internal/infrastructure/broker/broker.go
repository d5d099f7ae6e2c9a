package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Jeff-Lewis/Strata/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer subscribes to the trades and quotes fanout exchanges and feeds
// decoded messages into a BatchWriter.
type Consumer struct {
	cfg    config.RabbitMQConfig
	logger *logrus.Logger

	conn          *amqp.Connection
	subscriptions []subscription
	wg            sync.WaitGroup
	batcher       *BatchWriter
}

type subscription struct {
	channel *amqp.Channel
	tag     string
}

func NewConsumer(cfg config.RabbitMQConfig, trades TradeStore, quotes QuoteStore, logger *logrus.Logger) (*Consumer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("rabbitmq url is required")
	}
	// Deliveries stay unacked until their batch is stored, so a batch
	// cannot outgrow the prefetch window.
	batchCfg := BatchConfig{
		Size:    min(max(cfg.BatchSize, 1), max(cfg.Prefetch, 1)),
		Timeout: cfg.BatchTimeout,
	}
	return &Consumer{
		cfg:     cfg,
		logger:  logger,
		batcher: NewBatchWriter(batchCfg, trades, quotes, logger),
	}, nil
}

// Start connects and begins consuming both exchanges.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	c.conn = conn
	c.batcher.Run(ctx)

	if err := c.startStream(ctx, streamTrades, c.cfg.TradesExchange); err != nil {
		_ = c.Close(ctx)
		return err
	}
	if err := c.startStream(ctx, streamQuotes, c.cfg.QuotesExchange); err != nil {
		_ = c.Close(ctx)
		return err
	}

	c.logger.Infof("rabbitmq consumer started: exchanges=%s,%s", c.cfg.TradesExchange, c.cfg.QuotesExchange)
	return nil
}

// Close stops consumption, flushes pending batches while their deliveries
// can still be settled, then releases resources.
func (c *Consumer) Close(ctx context.Context) error {
	for _, sub := range c.subscriptions {
		if err := sub.channel.Cancel(sub.tag, false); err != nil {
			c.logger.WithError(err).WithField("consumer", sub.tag).Warn("failed to cancel consumer")
		}
	}
	c.wg.Wait()
	err := c.batcher.Stop(ctx)

	for _, sub := range c.subscriptions {
		_ = sub.channel.Close()
	}
	c.subscriptions = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Consumer) startStream(ctx context.Context, stream streamType, exchange string) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", stream, err)
	}
	if err := declareFanout(ch, exchange); err != nil {
		ch.Close()
		return err
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare queue for %s: %w", stream, err)
	}
	if err := ch.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("bind queue %s to %s: %w", queue.Name, exchange, err)
	}
	if err := ch.Qos(max(c.cfg.Prefetch, 1), 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos for %s: %w", stream, err)
	}
	tag := "strata-" + stream.String()
	deliveries, err := ch.Consume(queue.Name, tag, false, true, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("start consume for %s: %w", stream, err)
	}
	c.subscriptions = append(c.subscriptions, subscription{channel: ch, tag: tag})
	c.wg.Add(1)
	go c.consumeLoop(ctx, stream, deliveries)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, stream streamType, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.WithField("stream", stream.String())
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := c.handleDelivery(stream, delivery.Body, settle(delivery, log)); err != nil {
				requeue := !errors.Is(err, ErrInvalidMessage)
				log.WithError(err).WithField("requeue", requeue).Warn("failed to process message")
				_ = delivery.Nack(false, requeue)
			}
		}
	}
}

// settle acks a buffered delivery once its batch is stored and requeues it
// when the store fails.
func settle(delivery acknowledger, log *logrus.Entry) func(error) {
	return func(err error) {
		if err != nil {
			if nackErr := delivery.Nack(false, true); nackErr != nil {
				log.WithError(nackErr).Warn("failed to nack delivery")
			}
			return
		}
		if ackErr := delivery.Ack(false); ackErr != nil {
			log.WithError(ackErr).Warn("failed to ack delivery")
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) handleDelivery(stream streamType, body []byte, done func(error)) error {
	switch stream {
	case streamTrades:
		t, err := decodeTrade(body)
		if err != nil {
			return err
		}
		return c.batcher.AddTrade(t, done)
	case streamQuotes:
		q, err := decodeQuote(body)
		if err != nil {
			return err
		}
		return c.batcher.AddQuote(&q, done)
	default:
		return fmt.Errorf("%w: unsupported stream %s", ErrInvalidMessage, stream)
	}
}

func declareFanout(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

type streamType string

func (s streamType) String() string {
	return string(s)
}

const (
	streamTrades streamType = "trades"
	streamQuotes streamType = "quotes"
)
