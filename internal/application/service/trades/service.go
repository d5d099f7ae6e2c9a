package trades

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNilTrade = errors.New("trade is nil")

type Service struct {
	repo   interfaces.TradesRepository
	logger *logrus.Entry
	newID  func() string
}

func NewService(repo interfaces.TradesRepository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.WithField("component", "trades_service"),
		newID:  uuid.NewString,
	}
}

// AddTrade stores the trade and returns it as stored. Trades without an info ID get a new one.
func (s *Service) AddTrade(ctx context.Context, t *dsf.ResolvedDsfTrade) (*dsf.ResolvedDsfTrade, error) {
	if t == nil {
		return nil, ErrNilTrade
	}
	stored, err := s.withID(t)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddTrade(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Service) AddTrades(ctx context.Context, trades []*dsf.ResolvedDsfTrade) ([]*dsf.ResolvedDsfTrade, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	stored := make([]*dsf.ResolvedDsfTrade, 0, len(trades))
	for i, t := range trades {
		if t == nil {
			return nil, fmt.Errorf("trade %d: %w", i, ErrNilTrade)
		}
		withID, err := s.withID(t)
		if err != nil {
			return nil, err
		}
		stored = append(stored, withID)
	}
	if err := s.repo.AddTrades(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.WithField("count", len(stored)).Debug("trades stored")
	return stored, nil
}

func (s *Service) GetTrade(ctx context.Context, id string) (*dsf.ResolvedDsfTrade, error) {
	return s.repo.GetTrade(ctx, id)
}

// DeriveTrade loads a trade, applies changes by property name and stores the
// result as a new trade. The original is left untouched.
func (s *Service) DeriveTrade(ctx context.Context, id string, changes map[string]any) (*dsf.ResolvedDsfTrade, error) {
	original, err := s.repo.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	builder := original.ToBuilder()
	if err := bean.Populate(builder, changes); err != nil {
		return nil, err
	}
	staged, err := builder.Get("info")
	if err != nil {
		return nil, err
	}
	info, ok := staged.(trade.TradeInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected trade info type %T", staged)
	}
	info.ID = s.newID()
	derived, err := builder.Info(info).Build()
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddTrade(ctx, derived); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"from": id, "to": info.ID}).Info("trade derived")
	return derived, nil
}

func (s *Service) Close() {
	s.repo.Close()
}

func (s *Service) withID(t *dsf.ResolvedDsfTrade) (*dsf.ResolvedDsfTrade, error) {
	info := t.Info()
	if info.ID != "" {
		return t, nil
	}
	info.ID = s.newID()
	return t.ToBuilder().Info(info).Build()
}
