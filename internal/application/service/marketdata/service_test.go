package marketdata_test

import (
	"context"
	"testing"
	"time"

	appmarketdata "github.com/Jeff-Lewis/Strata/internal/application/service/marketdata"
	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) AddQuote(ctx context.Context, q *marketdata.Quote) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockRepo) AddQuotes(ctx context.Context, qs []marketdata.Quote) error {
	return m.Called(ctx, qs).Error(0)
}

func (m *mockRepo) GetQuotesBetween(ctx context.Context, key basics.ObservableKey, source basics.ObservableSource, from, to time.Time) ([]marketdata.Quote, error) {
	args := m.Called(ctx, key, source, from, to)
	qs, _ := args.Get(0).([]marketdata.Quote)
	return qs, args.Error(1)
}

func (m *mockRepo) GetLatestValues(ctx context.Context, source basics.ObservableSource, keys []basics.ObservableKey) (map[basics.ObservableKey]float64, error) {
	args := m.Called(ctx, source, keys)
	values, _ := args.Get(0).(map[basics.ObservableKey]float64)
	return values, args.Error(1)
}

func (m *mockRepo) SaveCurveGroup(ctx context.Context, id *curve.CurveGroupID, group curve.CurveGroup) error {
	return m.Called(ctx, id, group).Error(0)
}

func (m *mockRepo) GetCurveGroup(ctx context.Context, id *curve.CurveGroupID) (*curve.CurveGroup, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*curve.CurveGroup)
	return g, args.Error(1)
}

func (m *mockRepo) Close() {
	m.Called()
}

var libor3M = basics.ObservableKey{Scheme: "BBG", Value: "US0003M"}

func newService(repo *mockRepo) *appmarketdata.Service {
	logger, _ := test.NewNullLogger()
	return appmarketdata.NewService(repo, logger)
}

func TestService_AddQuotes(t *testing.T) {
	ctx := context.Background()
	observed := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("Should default the source and store the batch", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("AddQuotes", ctx, mock.MatchedBy(func(qs []marketdata.Quote) bool {
			return len(qs) == 1 && qs[0].Source == basics.ObservableSourceNone
		})).Return(nil)

		err := newService(repo).AddQuotes(ctx, []marketdata.Quote{{Key: libor3M, Value: 0.04, ObservedAt: observed}})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject the batch when one quote is invalid", func(t *testing.T) {
		repo := &mockRepo{}
		err := newService(repo).AddQuotes(ctx, []marketdata.Quote{
			{Key: libor3M, Value: 0.04, ObservedAt: observed},
			{Key: libor3M, Value: 0.04},
		})
		assert.ErrorIs(t, err, bean.ErrRequired)
		assert.ErrorContains(t, err, "quote 1")
		repo.AssertNotCalled(t, "AddQuotes", mock.Anything, mock.Anything)
	})

	t.Run("Should reject nil quote", func(t *testing.T) {
		assert.ErrorIs(t, newService(&mockRepo{}).AddQuote(ctx, nil), appmarketdata.ErrNilQuote)
	})
}

func TestService_GetQuotesBetween(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	repo := &mockRepo{}
	repo.On("GetQuotesBetween", ctx, libor3M, basics.ObservableSourceNone, from, to).
		Return([]marketdata.Quote{{Key: libor3M}}, nil)

	quotes, err := newService(repo).GetQuotesBetween(ctx, libor3M, "", to, from)
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	repo.AssertExpectations(t)
}
