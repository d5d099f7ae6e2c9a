package interfaces

import (
	"context"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
)

type MarketDataRepository interface {
	AddQuote(ctx context.Context, quote *marketdata.Quote) error
	AddQuotes(ctx context.Context, quotes []marketdata.Quote) error
	GetQuotesBetween(ctx context.Context, key basics.ObservableKey, source basics.ObservableSource, from, to time.Time) ([]marketdata.Quote, error)
	// GetLatestValues returns the most recent value per key; keys without quotes are absent.
	GetLatestValues(ctx context.Context, source basics.ObservableSource, keys []basics.ObservableKey) (map[basics.ObservableKey]float64, error)

	SaveCurveGroup(ctx context.Context, id *curve.CurveGroupID, group curve.CurveGroup) error
	GetCurveGroup(ctx context.Context, id *curve.CurveGroupID) (*curve.CurveGroup, error)

	Close()
}
