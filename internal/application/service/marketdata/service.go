package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	marketdata "github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var ErrNilQuote = errors.New("quote is nil")

type Service struct {
	repo   interfaces.MarketDataRepository
	logger *logrus.Entry
}

func NewService(repo interfaces.MarketDataRepository, logger *logrus.Logger) *Service {
	return &Service{repo: repo, logger: logger.WithField("component", "marketdata_service")}
}

// AddQuote validates and stores one quote. An empty source means ObservableSourceNone.
func (s *Service) AddQuote(ctx context.Context, quote *marketdata.Quote) error {
	if quote == nil {
		return ErrNilQuote
	}
	if err := prepareQuote(quote); err != nil {
		return err
	}
	return s.repo.AddQuote(ctx, quote)
}

// AddQuotes validates the whole batch before storing any of it.
func (s *Service) AddQuotes(ctx context.Context, quotes []marketdata.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	for i := range quotes {
		if err := prepareQuote(&quotes[i]); err != nil {
			return fmt.Errorf("quote %d: %w", i, err)
		}
	}
	if err := s.repo.AddQuotes(ctx, quotes); err != nil {
		return err
	}
	s.logger.WithField("count", len(quotes)).Debug("quotes stored")
	return nil
}

func (s *Service) GetQuotesBetween(ctx context.Context, key basics.ObservableKey, source basics.ObservableSource, from, to time.Time) ([]marketdata.Quote, error) {
	if from.After(to) {
		from, to = to, from
	}
	if source == "" {
		source = basics.ObservableSourceNone
	}
	return s.repo.GetQuotesBetween(ctx, key, source, from, to)
}

func (s *Service) Close() {
	s.repo.Close()
}

func prepareQuote(q *marketdata.Quote) error {
	if q.Source == "" {
		q.Source = basics.ObservableSourceNone
	}
	return q.Validate()
}
