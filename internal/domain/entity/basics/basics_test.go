package basics_test

import (
	"testing"

	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuySell(t *testing.T) {
	bs, err := basics.NewBuySell(" sell")
	require.NoError(t, err)
	assert.Equal(t, basics.Sell, bs)
	assert.Equal(t, -5.0, bs.Normalize(5))
	assert.Equal(t, 5.0, basics.Buy.Normalize(-5))

	_, err = basics.NewBuySell("hold")
	assert.Error(t, err)
}

func TestObservableKey(t *testing.T) {
	t.Run("Should round trip through its string form", func(t *testing.T) {
		key, err := basics.NewObservableKey("BBG", "US0003M")
		require.NoError(t, err)
		assert.Equal(t, "BBG~US0003M", key.String())

		parsed, err := basics.ParseObservableKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	})

	t.Run("Should reject incomplete keys", func(t *testing.T) {
		_, err := basics.NewObservableKey("BBG", " ")
		assert.Error(t, err)
		_, err = basics.ParseObservableKey("BBG")
		assert.Error(t, err)
	})

	t.Run("Should reject a separator inside the scheme", func(t *testing.T) {
		_, err := basics.NewObservableKey("BBG~X", "US0003M")
		assert.Error(t, err)
		assert.False(t, basics.ObservableKey{Scheme: "BBG~X", Value: "US0003M"}.Valid())
	})

	t.Run("Should keep separators in the value", func(t *testing.T) {
		key, err := basics.NewObservableKey("OG", "CME~T1U5")
		require.NoError(t, err)
		assert.True(t, key.Valid())

		parsed, err := basics.ParseObservableKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	})

	t.Run("Should look up values", func(t *testing.T) {
		key := basics.ObservableKey{Scheme: "BBG", Value: "A"}
		data := map[basics.ObservableKey]float64{key: 0.0125}

		v, err := basics.LookupValue(data, key)
		require.NoError(t, err)
		assert.Equal(t, 0.0125, v)

		_, err = basics.LookupValue(data, basics.ObservableKey{Scheme: "BBG", Value: "B"})
		assert.ErrorIs(t, err, basics.ErrMarketDataNotFound)
	})

	t.Run("Should sort and deduplicate keys", func(t *testing.T) {
		a := basics.ObservableKey{Scheme: "A", Value: "2"}
		b := basics.ObservableKey{Scheme: "A", Value: "1"}
		c := basics.ObservableKey{Scheme: "B", Value: "0"}
		assert.Equal(t, []basics.ObservableKey{b, a, c}, basics.SortedKeys(c, a, b, a))
	})
}

func TestObservableSource(t *testing.T) {
	s, err := basics.NewObservableSource(" Vendor ")
	require.NoError(t, err)
	assert.Equal(t, basics.ObservableSource("Vendor"), s)

	_, err = basics.NewObservableSource("")
	assert.Error(t, err)

	assert.Equal(t, basics.ObservableSourceNone, basics.ObservableSourceOrNone("  "))
	assert.Equal(t, basics.ObservableSource("Vendor"), basics.ObservableSourceOrNone("Vendor "))
}
