package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/fra"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"

	"github.com/google/uuid"
)

type rawJSON = json.RawMessage

type tradePayload struct {
	Info     trade.TradeInfo  `json:"info"`
	Product  *dsf.ResolvedDsf `json:"product"`
	Quantity float64          `json:"quantity"`
	Price    float64          `json:"price"`
}

func (p tradePayload) toDomain() (*dsf.ResolvedDsfTrade, error) {
	return dsf.NewResolvedDsfTradeBuilder().
		Info(p.Info).
		Product(p.Product).
		Quantity(p.Quantity).
		Price(p.Price).
		Build()
}

type tradeResponse struct {
	ID       string          `json:"id"`
	Info     trade.TradeInfo `json:"info"`
	Product  dsf.ResolvedDsf `json:"product"`
	Quantity float64         `json:"quantity"`
	Price    float64         `json:"price"`
	Hash     string          `json:"hash"`
}

func newTradeResponse(t *dsf.ResolvedDsfTrade) tradeResponse {
	return tradeResponse{
		ID:       t.Info().ID,
		Info:     t.Info(),
		Product:  t.Product(),
		Quantity: t.Quantity(),
		Price:    t.Price(),
		Hash:     fmt.Sprintf("%016x", t.Hash()),
	}
}

// decodeDsfTradeChanges turns a JSON object of property values into the
// typed values the trade builder accepts.
func decodeDsfTradeChanges(raw map[string]rawJSON) (map[string]any, error) {
	meta := dsf.ResolvedDsfTradeMeta()
	changes := make(map[string]any, len(raw))
	for name, value := range raw {
		var decoded any
		var err error
		switch name {
		case "info":
			var info trade.TradeInfo
			err = json.Unmarshal(value, &info)
			decoded = info
		case "product":
			var product dsf.ResolvedDsf
			err = json.Unmarshal(value, &product)
			decoded = product
		case "quantity", "price":
			var f float64
			err = json.Unmarshal(value, &f)
			decoded = f
		default:
			return nil, &bean.PropertyError{Bean: meta.BeanName(), Property: name, Err: bean.ErrUnknownProperty}
		}
		if err != nil {
			return nil, &bean.PropertyError{Bean: meta.BeanName(), Property: name, Err: fmt.Errorf("%w: %v", bean.ErrPropertyType, err)}
		}
		changes[name] = decoded
	}
	return changes, nil
}

type fraNodeTradePayload struct {
	Template      fra.FraTemplate       `json:"template"`
	RateProvider  curve.RateProviderDef `json:"rate_provider"`
	Source        string                `json:"source"`
	ValuationDate time.Time             `json:"valuation_date"`
}

func (p fraNodeTradePayload) node() (*curve.FraCurveNode, error) {
	provider, err := p.RateProvider.Provider()
	if err != nil {
		return nil, err
	}
	return curve.NewFraCurveNode(p.Template, provider)
}

type quotePayload struct {
	ID         string         `json:"id"`
	Key        string         `json:"key"`
	Source     string         `json:"source"`
	Value      float64        `json:"value"`
	ObservedAt time.Time      `json:"observed_at"`
	Metadata   map[string]any `json:"metadata"`
}

func (p quotePayload) toDomain() (marketdata.Quote, error) {
	key, err := basics.ParseObservableKey(p.Key)
	if err != nil {
		return marketdata.Quote{}, err
	}
	id := uuid.New()
	if p.ID != "" {
		if id, err = uuid.Parse(p.ID); err != nil {
			return marketdata.Quote{}, err
		}
	}
	return marketdata.Quote{
		ID:         id,
		Key:        key,
		Source:     basics.ObservableSourceOrNone(p.Source),
		Value:      p.Value,
		ObservedAt: p.ObservedAt.UTC(),
		Metadata:   p.Metadata,
	}, nil
}
