package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
)

// BatchConfig controls batching thresholds for ingestion.
type BatchConfig struct {
	Size    int
	Timeout time.Duration
}

// TradeStore persists batches of trades.
type TradeStore interface {
	AddTrades(ctx context.Context, trades []*dsf.ResolvedDsfTrade) ([]*dsf.ResolvedDsfTrade, error)
}

// QuoteStore persists batches of quotes.
type QuoteStore interface {
	AddQuotes(ctx context.Context, quotes []marketdata.Quote) error
}

// BatchWriter buffers trades and quotes and flushes them to their stores.
type BatchWriter struct {
	trades *batchBuffer[*dsf.ResolvedDsfTrade]
	quotes *batchBuffer[marketdata.Quote]
}

func NewBatchWriter(cfg BatchConfig, trades TradeStore, quotes QuoteStore, logger *logrus.Logger) *BatchWriter {
	componentLogger := logger.WithField("component", "batch_writer")
	return &BatchWriter{
		trades: newBatchBuffer(cfg, func(ctx context.Context, batch []*dsf.ResolvedDsfTrade) error {
			_, err := trades.AddTrades(ctx, batch)
			return err
		}, componentLogger.WithField("entity", "trade")),
		quotes: newBatchBuffer(cfg, quotes.AddQuotes, componentLogger.WithField("entity", "quote")),
	}
}

// Run sets the base context for asynchronous flushes.
func (b *BatchWriter) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.trades.setContext(ctx)
	b.quotes.setContext(ctx)
}

// Stop flushes what is left using ctx.
func (b *BatchWriter) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b.trades.setContext(ctx)
	b.quotes.setContext(ctx)

	return errors.Join(b.trades.drain(ctx), b.quotes.drain(ctx))
}

// AddTrade buffers t. done receives the result of the flush that stores it.
func (b *BatchWriter) AddTrade(t *dsf.ResolvedDsfTrade, done func(error)) error {
	if t == nil {
		return errors.New("trade is nil")
	}
	return b.trades.enqueue(t, done)
}

// AddQuote buffers q. done receives the result of the flush that stores it.
func (b *BatchWriter) AddQuote(q *marketdata.Quote, done func(error)) error {
	if q == nil {
		return errors.New("quote is nil")
	}
	return b.quotes.enqueue(*q, done)
}

type pending[T any] struct {
	item T
	done func(error)
}

type batchBuffer[T any] struct {
	cfg     BatchConfig
	mu      sync.Mutex
	items   []pending[T]
	timer   *time.Timer
	flushFn func(context.Context, []T) error
	logger  *logrus.Entry
	ctx     context.Context
}

func newBatchBuffer[T any](cfg BatchConfig, flushFn func(context.Context, []T) error, logger *logrus.Entry) *batchBuffer[T] {
	return &batchBuffer[T]{
		cfg:     cfg,
		flushFn: flushFn,
		logger:  logger,
	}
}

func (bb *batchBuffer[T]) setContext(ctx context.Context) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.ctx = ctx
}

// enqueue only fails when the item was not buffered. Flush results reach
// the done callbacks of every item in the flushed batch.
func (bb *batchBuffer[T]) enqueue(item T, done func(error)) error {
	bb.mu.Lock()
	ctx := bb.ctx
	if ctx == nil {
		bb.mu.Unlock()
		return errors.New("batch buffer is not running")
	}
	if err := ctx.Err(); err != nil {
		bb.mu.Unlock()
		return err
	}
	bb.items = append(bb.items, pending[T]{item: item, done: done})
	var batch []pending[T]
	limit := max(bb.cfg.Size, 1)
	if len(bb.items) >= limit {
		batch = bb.takeBatchLocked()
	} else if bb.timer == nil && bb.cfg.Timeout > 0 {
		bb.timer = time.AfterFunc(bb.cfg.Timeout, bb.flushOnTimeout)
	}
	bb.mu.Unlock()

	if err := bb.flush(ctx, batch); err != nil {
		bb.logger.WithError(err).WithField("size", len(batch)).Warn("batch flush failed")
	}
	return nil
}

func (bb *batchBuffer[T]) flushOnTimeout() {
	bb.mu.Lock()
	ctx := bb.ctx
	batch := bb.takeBatchLocked()
	bb.mu.Unlock()
	if err := bb.flush(ctx, batch); err != nil {
		bb.logger.WithError(err).WithField("size", len(batch)).Warn("batch flush failed")
	}
}

func (bb *batchBuffer[T]) takeBatchLocked() []pending[T] {
	if bb.timer != nil {
		bb.timer.Stop()
		bb.timer = nil
	}
	if len(bb.items) == 0 {
		return nil
	}
	batch := make([]pending[T], len(bb.items))
	copy(batch, bb.items)
	bb.items = bb.items[:0]
	return batch
}

func (bb *batchBuffer[T]) flush(ctx context.Context, batch []pending[T]) error {
	if len(batch) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	items := make([]T, len(batch))
	for i, p := range batch {
		items[i] = p.item
	}
	start := time.Now()
	err := bb.flushFn(ctx, items)
	for _, p := range batch {
		if p.done != nil {
			p.done(err)
		}
	}
	if err != nil {
		return err
	}
	bb.logger.WithFields(logrus.Fields{
		"size":    len(batch),
		"took_ms": time.Since(start).Milliseconds(),
	}).Debug("flushed batch")
	return nil
}

func (bb *batchBuffer[T]) drain(ctx context.Context) error {
	bb.mu.Lock()
	batch := bb.takeBatchLocked()
	bb.mu.Unlock()
	return bb.flush(ctx, batch)
}
