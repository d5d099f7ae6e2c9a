package interfaces

import (
	"context"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
)

// TradesRepository stores resolved DSF trades keyed by their trade info ID.
type TradesRepository interface {
	AddTrade(ctx context.Context, trade *dsf.ResolvedDsfTrade) error
	AddTrades(ctx context.Context, trades []*dsf.ResolvedDsfTrade) error
	GetTrade(ctx context.Context, id string) (*dsf.ResolvedDsfTrade, error)
	Close()
}
