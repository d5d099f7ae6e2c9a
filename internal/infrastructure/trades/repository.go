package trades

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTradeNotFound   = fmt.Errorf("trade %w", interfaces.ErrNotFound)
	ErrTradeIDRequired = errors.New("trade info id is required")
)

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

var _ interfaces.TradesRepository = (*Repository)(nil)

type Repository struct {
	db DB
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{db: pool}, nil
}

func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() {
	if r == nil || r.db == nil {
		return
	}
	r.db.Close()
}

const (
	insertTradeQuery = `
		INSERT INTO dsf_trades (trade_id, counterparty, trade_date, settlement_date, quantity, price, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	insertProductQuery = `
		INSERT INTO dsf_products (trade_id, security_id, currency, notional, last_trade_date, delivery_date, underlying_fixed_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
)

var (
	tradeColumns   = []string{"trade_id", "counterparty", "trade_date", "settlement_date", "quantity", "price", "created_at"}
	productColumns = []string{"trade_id", "security_id", "currency", "notional", "last_trade_date", "delivery_date", "underlying_fixed_rate"}
)

func (r *Repository) AddTrade(ctx context.Context, t *dsf.ResolvedDsfTrade) error {
	if t == nil {
		return errors.New("trade is nil")
	}
	if t.Info().ID == "" {
		return ErrTradeIDRequired
	}
	now := time.Now().UTC()
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTradeQuery, tradeRow(t, now)...); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.Info().ID, err)
		}
		if _, err := tx.Exec(ctx, insertProductQuery, productRow(t)...); err != nil {
			return fmt.Errorf("insert product of trade %s: %w", t.Info().ID, err)
		}
		return nil
	})
}

func (r *Repository) AddTrades(ctx context.Context, trades []*dsf.ResolvedDsfTrade) error {
	if len(trades) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tradeRows := make([][]any, 0, len(trades))
	productRows := make([][]any, 0, len(trades))
	for _, t := range trades {
		if t == nil {
			return errors.New("trade is nil")
		}
		if t.Info().ID == "" {
			return ErrTradeIDRequired
		}
		tradeRows = append(tradeRows, tradeRow(t, now))
		productRows = append(productRows, productRow(t))
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"dsf_trades"}, tradeColumns, pgx.CopyFromRows(tradeRows)); err != nil {
			return fmt.Errorf("copy trades: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"dsf_products"}, productColumns, pgx.CopyFromRows(productRows)); err != nil {
			return fmt.Errorf("copy products: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetTrade(ctx context.Context, id string) (*dsf.ResolvedDsfTrade, error) {
	const query = `
		SELECT t.trade_id, t.counterparty, t.trade_date, t.settlement_date, t.quantity, t.price,
		       p.security_id, p.currency, p.notional, p.last_trade_date, p.delivery_date, p.underlying_fixed_rate
		FROM dsf_trades t
		JOIN dsf_products p ON p.trade_id = t.trade_id
		WHERE t.trade_id = $1`

	var (
		info            trade.TradeInfo
		tradeDate       *time.Time
		settlementDate  *time.Time
		quantity, price float64
		product         dsf.ResolvedDsf
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&info.ID,
		&info.Counterparty,
		&tradeDate,
		&settlementDate,
		&quantity,
		&price,
		&product.SecurityID,
		&product.Currency,
		&product.Notional,
		&product.LastTradeDate,
		&product.DeliveryDate,
		&product.UnderlyingFixedRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTradeNotFound, id)
		}
		return nil, err
	}
	if tradeDate != nil {
		info.TradeDate = *tradeDate
	}
	if settlementDate != nil {
		info.SettlementDate = *settlementDate
	}
	t, err := dsf.NewResolvedDsfTradeBuilder().
		Info(info).
		Product(&product).
		Quantity(quantity).
		Price(price).
		Build()
	if err != nil {
		return nil, fmt.Errorf("stored trade %s: %w", id, err)
	}
	return t, nil
}

func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func tradeRow(t *dsf.ResolvedDsfTrade, createdAt time.Time) []any {
	info := t.Info()
	return []any{
		info.ID,
		info.Counterparty,
		nullableTime(info.TradeDate),
		nullableTime(info.SettlementDate),
		t.Quantity(),
		t.Price(),
		createdAt,
	}
}

func productRow(t *dsf.ResolvedDsfTrade) []any {
	p := t.Product()
	return []any{
		t.Info().ID,
		p.SecurityID,
		p.Currency,
		p.Notional,
		p.LastTradeDate,
		p.DeliveryDate,
		p.UnderlyingFixedRate,
	}
}

func nullableTime(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	return &v
}
