package marketdata_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	domain "github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	"github.com/Jeff-Lewis/Strata/internal/infrastructure/marketdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var libor3M = basics.ObservableKey{Scheme: "BBG", Value: "US0003M"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *marketdata.Repository) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, marketdata.NewRepositoryWithDB(mockPool)
}

func TestRepository_AddQuote(t *testing.T) {
	t.Run("Should insert quote and assign an id", func(t *testing.T) {
		mockPool, repo := newMock(t)
		observed := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
		quote := &domain.Quote{Key: libor3M, Source: basics.ObservableSourceNone, Value: 0.0431, ObservedAt: observed}

		mockPool.ExpectExec("INSERT INTO quotes").
			WithArgs(pgxmock.AnyArg(), "BBG", "US0003M", "None", 0.0431, observed, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.AddQuote(context.Background(), quote))
		assert.NotEqual(t, uuid.Nil, quote.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should wrap database errors", func(t *testing.T) {
		mockPool, repo := newMock(t)
		mockPool.ExpectExec("INSERT INTO quotes").WillReturnError(errors.New("boom"))

		err := repo.AddQuote(context.Background(), &domain.Quote{Key: libor3M, Source: "None", ObservedAt: time.Now()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert quote BBG~US0003M")
	})
}

func TestRepository_AddQuotes(t *testing.T) {
	t.Run("Should copy quotes in bulk", func(t *testing.T) {
		mockPool, repo := newMock(t)
		quotes := []domain.Quote{
			{Key: libor3M, Source: "None", Value: 0.04, ObservedAt: time.Now()},
			{Key: libor3M, Source: "None", Value: 0.05, ObservedAt: time.Now()},
		}
		mockPool.ExpectCopyFrom(pgx.Identifier{"quotes"}, []string{"quote_id", "scheme", "ticker", "source", "value", "observed_at", "metadata"}).
			WillReturnResult(2)

		require.NoError(t, repo.AddQuotes(context.Background(), quotes))
		assert.NotEqual(t, uuid.Nil, quotes[1].ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should skip empty batches", func(t *testing.T) {
		mockPool, repo := newMock(t)
		require.NoError(t, repo.AddQuotes(context.Background(), nil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepository_GetQuotesBetween(t *testing.T) {
	mockPool, repo := newMock(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	observed := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"quote_id", "scheme", "ticker", "source", "value", "observed_at", "metadata"}).
		AddRow(id, "BBG", "US0003M", "None", 0.0431, observed, []byte(`{"venue":"X"}`))
	mockPool.ExpectQuery("SELECT quote_id").
		WithArgs("BBG", "US0003M", "None", from, to).
		WillReturnRows(rows)

	quotes, err := repo.GetQuotesBetween(context.Background(), libor3M, basics.ObservableSourceNone, from, to)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, id, quotes[0].ID)
	assert.Equal(t, libor3M, quotes[0].Key)
	assert.Equal(t, basics.ObservableSourceNone, quotes[0].Source)
	assert.Equal(t, "X", quotes[0].Metadata["venue"])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepository_GetLatestValues(t *testing.T) {
	t.Run("Should map latest values by key", func(t *testing.T) {
		mockPool, repo := newMock(t)
		rows := pgxmock.NewRows([]string{"scheme", "ticker", "value"}).AddRow("BBG", "US0003M", 0.0431)
		mockPool.ExpectQuery("SELECT DISTINCT ON").
			WithArgs("None", []string{"BBG~US0003M", "BBG~US0006M"}).
			WillReturnRows(rows)

		values, err := repo.GetLatestValues(context.Background(), basics.ObservableSourceNone,
			[]basics.ObservableKey{libor3M, {Scheme: "BBG", Value: "US0006M"}})
		require.NoError(t, err)
		assert.Equal(t, map[basics.ObservableKey]float64{libor3M: 0.0431}, values)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should not query without keys", func(t *testing.T) {
		mockPool, repo := newMock(t)
		values, err := repo.GetLatestValues(context.Background(), basics.ObservableSourceNone, nil)
		require.NoError(t, err)
		assert.Empty(t, values)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepository_CurveGroups(t *testing.T) {
	id, err := curve.CurveGroupIDOf("USD-LIBOR")
	require.NoError(t, err)

	t.Run("Should upsert curve group", func(t *testing.T) {
		mockPool, repo := newMock(t)
		mockPool.ExpectExec("INSERT INTO curve_groups").
			WithArgs("USD-LIBOR", "None", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		group := curve.CurveGroup{Name: "USD-LIBOR", Curves: []curve.NamedCurve{{Name: "USD-Disc", Currency: "USD"}}}
		require.NoError(t, repo.SaveCurveGroup(context.Background(), id, group))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should load curve group", func(t *testing.T) {
		mockPool, repo := newMock(t)
		rows := pgxmock.NewRows([]string{"curves"}).
			AddRow([]byte(`[{"name":"USD-Disc","currency":"USD","points":[{"year_fraction":1,"value":0.04}]}]`))
		mockPool.ExpectQuery("SELECT curves").WithArgs("USD-LIBOR", "None").WillReturnRows(rows)

		group, err := repo.GetCurveGroup(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, curve.CurveGroupName("USD-LIBOR"), group.Name)
		require.Len(t, group.Curves, 1)
		assert.Equal(t, 0.04, group.Curves[0].Points[0].Value)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should map missing rows to not found", func(t *testing.T) {
		mockPool, repo := newMock(t)
		mockPool.ExpectQuery("SELECT curves").WithArgs("USD-LIBOR", "None").WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetCurveGroup(context.Background(), id)
		assert.ErrorIs(t, err, marketdata.ErrCurveGroupNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
