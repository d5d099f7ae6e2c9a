package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	domain "github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCurveGroupNotFound = fmt.Errorf("curve group %w", interfaces.ErrNotFound)

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

var _ interfaces.MarketDataRepository = (*Repository)(nil)

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

// Quotes

const insertQuoteQuery = `
	INSERT INTO quotes (quote_id, scheme, ticker, source, value, observed_at, metadata)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

var quoteColumns = []string{"quote_id", "scheme", "ticker", "source", "value", "observed_at", "metadata"}

func (r *Repository) AddQuote(ctx context.Context, quote *domain.Quote) error {
	if quote == nil {
		return errors.New("nil quote")
	}
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	meta, err := marshalJSON(quote.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, insertQuoteQuery,
		quote.ID,
		quote.Key.Scheme,
		quote.Key.Value,
		string(quote.Source),
		quote.Value,
		quote.ObservedAt,
		meta,
	)
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", quote.Key, err)
	}
	return nil
}

func (r *Repository) AddQuotes(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(quotes))
	for i := range quotes {
		if quotes[i].ID == uuid.Nil {
			quotes[i].ID = uuid.New()
		}
		meta, err := marshalJSON(quotes[i].Metadata)
		if err != nil {
			return err
		}
		rows = append(rows, []any{
			quotes[i].ID,
			quotes[i].Key.Scheme,
			quotes[i].Key.Value,
			string(quotes[i].Source),
			quotes[i].Value,
			quotes[i].ObservedAt,
			meta,
		})
	}
	if _, err := r.db.CopyFrom(ctx, pgx.Identifier{"quotes"}, quoteColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy %d quotes: %w", len(rows), err)
	}
	return nil
}

func (r *Repository) GetQuotesBetween(ctx context.Context, key basics.ObservableKey, source basics.ObservableSource, from, to time.Time) ([]domain.Quote, error) {
	const query = `
		SELECT quote_id, scheme, ticker, source, value, observed_at, metadata
		FROM quotes
		WHERE scheme=$1 AND ticker=$2 AND source=$3 AND observed_at >= $4 AND observed_at <= $5
		ORDER BY observed_at ASC`
	rows, err := r.db.Query(ctx, query, key.Scheme, key.Value, string(source), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

func (r *Repository) GetLatestValues(ctx context.Context, source basics.ObservableSource, keys []basics.ObservableKey) (map[basics.ObservableKey]float64, error) {
	values := make(map[basics.ObservableKey]float64, len(keys))
	if len(keys) == 0 {
		return values, nil
	}
	const query = `
		SELECT DISTINCT ON (scheme, ticker) scheme, ticker, value
		FROM quotes
		WHERE source=$1 AND scheme || '~' || ticker = ANY($2)
		ORDER BY scheme, ticker, observed_at DESC`
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.String()
	}
	rows, err := r.db.Query(ctx, query, string(source), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   basics.ObservableKey
			value float64
		)
		if err := rows.Scan(&key.Scheme, &key.Value, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func scanQuote(row pgx.Row) (domain.Quote, error) {
	var (
		source   string
		metadata []byte
	)
	quote := domain.Quote{}
	err := row.Scan(
		&quote.ID,
		&quote.Key.Scheme,
		&quote.Key.Value,
		&source,
		&quote.Value,
		&quote.ObservedAt,
		&metadata,
	)
	if err != nil {
		return domain.Quote{}, err
	}
	quote.Source = basics.ObservableSource(source)
	meta, err := unmarshalMetadata(metadata)
	if err != nil {
		return domain.Quote{}, err
	}
	quote.Metadata = meta
	return quote, nil
}

// Curve groups

func (r *Repository) SaveCurveGroup(ctx context.Context, id *curve.CurveGroupID, group curve.CurveGroup) error {
	if id == nil {
		return errors.New("nil curve group id")
	}
	payload, err := json.Marshal(group.Curves)
	if err != nil {
		return fmt.Errorf("marshal curve group %s: %w", id.CurveGroupName(), err)
	}
	const query = `
		INSERT INTO curve_groups (name, source, curves, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (name, source) DO UPDATE SET curves = EXCLUDED.curves, updated_at = EXCLUDED.updated_at`
	_, err = r.db.Exec(ctx, query,
		id.CurveGroupName().String(),
		id.ObservableSource().String(),
		payload,
		time.Now().UTC(),
	)
	return err
}

func (r *Repository) GetCurveGroup(ctx context.Context, id *curve.CurveGroupID) (*curve.CurveGroup, error) {
	if id == nil {
		return nil, errors.New("nil curve group id")
	}
	const query = `
		SELECT curves
		FROM curve_groups
		WHERE name=$1 AND source=$2`
	var payload []byte
	err := r.db.QueryRow(ctx, query, id.CurveGroupName().String(), id.ObservableSource().String()).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCurveGroupNotFound, id)
		}
		return nil, err
	}
	group := &curve.CurveGroup{Name: id.CurveGroupName()}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &group.Curves); err != nil {
			return nil, fmt.Errorf("decode curve group %s: %w", id.CurveGroupName(), err)
		}
	}
	return group, nil
}

// Helpers

func marshalJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
