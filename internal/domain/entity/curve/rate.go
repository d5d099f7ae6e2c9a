package curve

import (
	"errors"
	"fmt"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
)

// RateProvider yields the rate a curve node is built at from a market data snapshot.
type RateProvider interface {
	// Requirements lists the observables Rate reads.
	Requirements() []basics.ObservableKey
	Rate(marketData map[basics.ObservableKey]float64) (float64, error)
	Equal(other RateProvider) bool
	Hash() uint64
	String() string
}

// MarketRateProvider reads the rate of a single observable.
type MarketRateProvider struct {
	Key basics.ObservableKey
}

func NewMarketRateProvider(key basics.ObservableKey) (MarketRateProvider, error) {
	if key.IsZero() {
		return MarketRateProvider{}, bean.Required("MarketRateProvider", "key")
	}
	return MarketRateProvider{Key: key}, nil
}

func (p MarketRateProvider) Requirements() []basics.ObservableKey {
	return []basics.ObservableKey{p.Key}
}

func (p MarketRateProvider) Rate(marketData map[basics.ObservableKey]float64) (float64, error) {
	return basics.LookupValue(marketData, p.Key)
}

func (p MarketRateProvider) Equal(other RateProvider) bool {
	o, ok := other.(MarketRateProvider)
	return ok && o.Key == p.Key
}

func (p MarketRateProvider) Hash() uint64 {
	return bean.NewHasher("MarketRateProvider").String(p.Key.Scheme).String(p.Key.Value).Sum()
}

func (p MarketRateProvider) String() string {
	return bean.Format("MarketRateProvider", bean.Field{Name: "key", Value: p.Key})
}

// FixedRateProvider always returns the same rate and needs no market data.
type FixedRateProvider struct {
	Value float64
}

func NewFixedRateProvider(rate float64) FixedRateProvider {
	return FixedRateProvider{Value: rate}
}

func (p FixedRateProvider) Requirements() []basics.ObservableKey {
	return nil
}

func (p FixedRateProvider) Rate(map[basics.ObservableKey]float64) (float64, error) {
	return p.Value, nil
}

func (p FixedRateProvider) Equal(other RateProvider) bool {
	o, ok := other.(FixedRateProvider)
	return ok && bean.FloatEqual(o.Value, p.Value)
}

func (p FixedRateProvider) Hash() uint64 {
	return bean.NewHasher("FixedRateProvider").Float(p.Value).Sum()
}

func (p FixedRateProvider) String() string {
	return bean.Format("FixedRateProvider", bean.Field{Name: "rate", Value: p.Value})
}

const (
	RateProviderMarket = "market"
	RateProviderFixed  = "fixed"
)

var ErrUnknownRateProvider = errors.New("unknown rate provider type")

// RateProviderDef is the JSON form of a RateProvider.
type RateProviderDef struct {
	Type string                `json:"type"`
	Key  *basics.ObservableKey `json:"key,omitempty"`
	Rate *float64              `json:"rate,omitempty"`
}

// Provider resolves the definition into a RateProvider.
func (d RateProviderDef) Provider() (RateProvider, error) {
	switch d.Type {
	case RateProviderMarket:
		if d.Key == nil {
			return nil, bean.Required("MarketRateProvider", "key")
		}
		key, err := basics.NewObservableKey(d.Key.Scheme, d.Key.Value)
		if err != nil {
			return nil, bean.Invalid("MarketRateProvider", "key", err.Error())
		}
		return MarketRateProvider{Key: key}, nil
	case RateProviderFixed:
		if d.Rate == nil {
			return nil, bean.Required("FixedRateProvider", "rate")
		}
		return FixedRateProvider{Value: *d.Rate}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRateProvider, d.Type)
	}
}

// DefOf converts a provider back to its JSON form.
func DefOf(p RateProvider) (RateProviderDef, error) {
	switch v := p.(type) {
	case MarketRateProvider:
		key := v.Key
		return RateProviderDef{Type: RateProviderMarket, Key: &key}, nil
	case FixedRateProvider:
		rate := v.Value
		return RateProviderDef{Type: RateProviderFixed, Rate: &rate}, nil
	default:
		return RateProviderDef{}, fmt.Errorf("%w: %T", ErrUnknownRateProvider, p)
	}
}
