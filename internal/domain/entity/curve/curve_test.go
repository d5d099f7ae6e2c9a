package curve_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/calendar"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/fra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	libor3M = basics.ObservableKey{Scheme: "BBG", Value: "US0003M"}

	usdTemplate = fra.FraTemplate{
		PeriodToStart: 3,
		PeriodToEnd:   6,
		Convention: fra.FraConvention{
			Index:    "USD-LIBOR-3M",
			Currency: "USD",
			DayCount: calendar.Act360,
			Calendar: calendar.USNY,
			SpotDays: 2,
		},
	}
)

func TestFraCurveNode_Build(t *testing.T) {
	t.Run("Should require template and rate provider", func(t *testing.T) {
		_, err := curve.NewFraCurveNodeBuilder().RateProvider(curve.NewFixedRateProvider(0.01)).Build()
		assert.ErrorIs(t, err, bean.ErrRequired)

		_, err = curve.NewFraCurveNode(usdTemplate, nil)
		assert.ErrorIs(t, err, bean.ErrRequired)
	})

	t.Run("Should reject an empty market key", func(t *testing.T) {
		_, err := curve.FraCurveNodeOfMarketRate(usdTemplate, basics.ObservableKey{})
		assert.ErrorIs(t, err, bean.ErrRequired)
	})

	t.Run("Should round trip through the builder", func(t *testing.T) {
		node, err := curve.FraCurveNodeOfMarketRate(usdTemplate, libor3M)
		require.NoError(t, err)
		rebuilt, err := node.ToBuilder().Build()
		require.NoError(t, err)
		assert.True(t, node.Equal(rebuilt))
		assert.Equal(t, node.Hash(), rebuilt.Hash())

		fixed, err := curve.FraCurveNodeOfFixedRate(usdTemplate, 0.01)
		require.NoError(t, err)
		assert.False(t, node.Equal(fixed))
	})
}

func TestFraCurveNode_BuildTrade(t *testing.T) {
	valuation := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	t.Run("Should build a bought unit trade at the market rate", func(t *testing.T) {
		node, err := curve.FraCurveNodeOfMarketRate(usdTemplate, libor3M)
		require.NoError(t, err)
		assert.Equal(t, []basics.ObservableKey{libor3M}, node.Requirements())

		tr, err := node.BuildTrade(valuation, map[basics.ObservableKey]float64{libor3M: 0.0431})
		require.NoError(t, err)
		assert.Equal(t, basics.Buy, tr.Product.BuySell)
		assert.Equal(t, 1.0, tr.Product.Notional)
		assert.Equal(t, 0.0431, tr.Product.FixedRate)

		expected, err := usdTemplate.ToTrade(valuation, basics.Buy, 1, 0.0431)
		require.NoError(t, err)
		assert.True(t, expected.Equal(tr))
	})

	t.Run("Should fail when the market rate is missing", func(t *testing.T) {
		node, err := curve.FraCurveNodeOfMarketRate(usdTemplate, libor3M)
		require.NoError(t, err)
		_, err = node.BuildTrade(valuation, map[basics.ObservableKey]float64{})
		assert.ErrorIs(t, err, basics.ErrMarketDataNotFound)
	})

	t.Run("Should use a fixed rate without market data", func(t *testing.T) {
		node, err := curve.FraCurveNodeOfFixedRate(usdTemplate, 0.02)
		require.NoError(t, err)
		assert.Empty(t, node.Requirements())

		tr, err := node.BuildTrade(valuation, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.02, tr.Product.FixedRate)
	})
}

func TestFraCurveNode_Properties(t *testing.T) {
	node, err := curve.FraCurveNodeOfMarketRate(usdTemplate, libor3M)
	require.NoError(t, err)

	t.Run("Should expose and protect properties", func(t *testing.T) {
		assert.Equal(t, []string{"template", "rateProvider"}, node.PropertyNames())
		v, err := node.Property("rateProvider")
		require.NoError(t, err)
		assert.Equal(t, curve.MarketRateProvider{Key: libor3M}, v)

		assert.ErrorIs(t, node.SetProperty("template", usdTemplate), bean.ErrImmutableBean)
		assert.ErrorIs(t, node.SetProperty("label", "x"), bean.ErrUnknownProperty)
	})

	t.Run("Should accept a provider definition by name", func(t *testing.T) {
		rate := 0.015
		b := node.ToBuilder()
		require.NoError(t, b.Set("rateProvider", curve.RateProviderDef{Type: curve.RateProviderFixed, Rate: &rate}))
		rebuilt, err := b.Build()
		require.NoError(t, err)
		assert.True(t, rebuilt.RateProvider().Equal(curve.NewFixedRateProvider(0.015)))

		assert.ErrorIs(t, b.Set("rateProvider", 3), bean.ErrPropertyType)
	})
}

func TestRateProviderDef(t *testing.T) {
	t.Run("Should convert both ways", func(t *testing.T) {
		def, err := curve.DefOf(curve.MarketRateProvider{Key: libor3M})
		require.NoError(t, err)
		p, err := def.Provider()
		require.NoError(t, err)
		assert.True(t, p.Equal(curve.MarketRateProvider{Key: libor3M}))
	})

	t.Run("Should reject incomplete definitions", func(t *testing.T) {
		_, err := curve.RateProviderDef{Type: curve.RateProviderFixed}.Provider()
		assert.ErrorIs(t, err, bean.ErrRequired)

		_, err = curve.RateProviderDef{Type: "curve"}.Provider()
		assert.ErrorIs(t, err, curve.ErrUnknownRateProvider)
	})
}

func TestCurveGroupID(t *testing.T) {
	t.Run("Should default the source", func(t *testing.T) {
		a, err := curve.CurveGroupIDOf("USD-LIBOR")
		require.NoError(t, err)
		b, err := curve.NewCurveGroupID(curve.CurveGroupName("USD-LIBOR"), basics.ObservableSourceNone)
		require.NoError(t, err)

		assert.True(t, a.Equal(b))
		assert.Equal(t, a.Hash(), b.Hash())
		assert.Equal(t, a.String(), b.String())
		assert.Equal(t, "CurveGroupId{curveGroupName=USD-LIBOR, observableSource=None}", a.String())
		assert.Equal(t, curve.MarketDataTypeCurveGroup, a.MarketDataType())
	})

	t.Run("Should distinguish sources", func(t *testing.T) {
		a, err := curve.CurveGroupIDOf("USD-LIBOR")
		require.NoError(t, err)
		b, err := curve.NewCurveGroupID("USD-LIBOR", "Vendor")
		require.NoError(t, err)
		assert.False(t, a.Equal(b))
	})

	t.Run("Should require both fields", func(t *testing.T) {
		_, err := curve.CurveGroupIDOf(" ")
		assert.ErrorIs(t, err, bean.ErrRequired)
		_, err = curve.NewCurveGroupID("USD-LIBOR", "")
		assert.ErrorIs(t, err, bean.ErrRequired)
	})

	t.Run("Should reject blank names however they are supplied", func(t *testing.T) {
		_, err := curve.NewCurveGroupID(" ", basics.ObservableSourceNone)
		assert.ErrorIs(t, err, bean.ErrRequired)
		_, err = curve.NewCurveGroupID("USD-LIBOR", " ")
		assert.ErrorIs(t, err, bean.ErrRequired)

		b := curve.CurveGroupIDMeta().NewDynamicBuilder()
		require.NoError(t, b.Set("curveGroupName", curve.CurveGroupName("\t")))
		require.NoError(t, b.Set("observableSource", basics.ObservableSourceNone))
		_, err = b.BuildBean()
		assert.ErrorIs(t, err, bean.ErrRequired)
	})

	t.Run("Should trim names", func(t *testing.T) {
		id, err := curve.NewCurveGroupID(" USD-LIBOR ", basics.ObservableSourceNone)
		require.NoError(t, err)
		want, err := curve.CurveGroupIDOf("USD-LIBOR")
		require.NoError(t, err)
		assert.True(t, want.Equal(id))
	})

	t.Run("Should compute a stable hash under concurrent use", func(t *testing.T) {
		id, err := curve.CurveGroupIDOf("EUR-EURIBOR")
		require.NoError(t, err)
		fresh, err := curve.CurveGroupIDOf("EUR-EURIBOR")
		require.NoError(t, err)
		want := fresh.Hash()

		var wg sync.WaitGroup
		hashes := make([]uint64, 32)
		for i := range hashes {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hashes[i] = id.Hash()
			}()
		}
		wg.Wait()
		for _, h := range hashes {
			assert.Equal(t, want, h)
		}
	})

	t.Run("Should build only through the meta", func(t *testing.T) {
		b := curve.CurveGroupIDMeta().NewDynamicBuilder()
		require.NoError(t, bean.Populate(b, map[string]any{"curveGroupName": "GBP", "observableSource": "Vendor"}))
		built, err := b.BuildBean()
		require.NoError(t, err)

		id, ok := built.(*curve.CurveGroupID)
		require.True(t, ok)
		assert.Equal(t, curve.CurveGroupName("GBP"), id.CurveGroupName())
		assert.Equal(t, basics.ObservableSource("Vendor"), id.ObservableSource())
		assert.ErrorIs(t, id.SetProperty("curveGroupName", "X"), bean.ErrImmutableBean)
	})
}

func TestCurveGroup_Validate(t *testing.T) {
	group := curve.CurveGroup{
		Name: "USD-LIBOR",
		Curves: []curve.NamedCurve{
			{Name: "USD-Disc", Currency: "USD", Points: []curve.CurvePoint{{YearFraction: 0.25, Value: 0.04}, {YearFraction: 1, Value: 0.041}}},
		},
	}
	require.NoError(t, group.Validate())

	c, ok := group.Curve("USD-Disc")
	require.True(t, ok)
	assert.Len(t, c.Points, 2)

	group.Curves = append(group.Curves, curve.NamedCurve{Name: "USD-Disc"})
	assert.ErrorIs(t, group.Validate(), bean.ErrInvalid)

	group.Curves = []curve.NamedCurve{{Name: "X", Points: []curve.CurvePoint{{YearFraction: 1}, {YearFraction: 0.5}}}}
	assert.ErrorIs(t, group.Validate(), bean.ErrInvalid)
}

func TestRegisteredBeans(t *testing.T) {
	names := bean.Names()
	assert.Contains(t, names, "FraCurveNode")
	assert.Contains(t, names, "CurveGroupId")
}
