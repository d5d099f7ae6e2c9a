package curves

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/fra"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	ErrNilCurveGroupID = errors.New("curve group id is nil")
	ErrNilCurveNode    = errors.New("curve node is nil")
	ErrNameMismatch    = errors.New("curve group name does not match its id")
)

type Service struct {
	repo   interfaces.MarketDataRepository
	logger *logrus.Entry
}

func NewService(repo interfaces.MarketDataRepository, logger *logrus.Logger) *Service {
	return &Service{repo: repo, logger: logger.WithField("component", "curves_service")}
}

func (s *Service) GetCurveGroup(ctx context.Context, id *curve.CurveGroupID) (*curve.CurveGroup, error) {
	if id == nil {
		return nil, ErrNilCurveGroupID
	}
	return s.repo.GetCurveGroup(ctx, id)
}

// SaveCurveGroup stores group under id. A group without a name takes the id's name.
func (s *Service) SaveCurveGroup(ctx context.Context, id *curve.CurveGroupID, group curve.CurveGroup) error {
	if id == nil {
		return ErrNilCurveGroupID
	}
	if group.Name == "" {
		group.Name = id.CurveGroupName()
	}
	if group.Name != id.CurveGroupName() {
		return fmt.Errorf("%w: %s != %s", ErrNameMismatch, group.Name, id.CurveGroupName())
	}
	if err := group.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveCurveGroup(ctx, id, group); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{
		"curve_group": id.CurveGroupName().String(),
		"source":      id.ObservableSource().String(),
		"curves":      len(group.Curves),
	}).Info("curve group saved")
	return nil
}

func (s *Service) NodeRequirements(node *curve.FraCurveNode) ([]basics.ObservableKey, error) {
	if node == nil {
		return nil, ErrNilCurveNode
	}
	return node.Requirements(), nil
}

// BuildNodeTrade builds the node's trade from the latest stored quotes of source.
func (s *Service) BuildNodeTrade(ctx context.Context, node *curve.FraCurveNode, source basics.ObservableSource, valuationDate time.Time) (*fra.FraTrade, error) {
	if node == nil {
		return nil, ErrNilCurveNode
	}
	if source == "" {
		source = basics.ObservableSourceNone
	}
	var marketData map[basics.ObservableKey]float64
	if keys := node.Requirements(); len(keys) > 0 {
		values, err := s.repo.GetLatestValues(ctx, source, keys)
		if err != nil {
			return nil, fmt.Errorf("load market data: %w", err)
		}
		marketData = values
	}
	trade, err := node.BuildTrade(valuationDate, marketData)
	if err != nil {
		return nil, fmt.Errorf("build node trade: %w", err)
	}
	return trade, nil
}
