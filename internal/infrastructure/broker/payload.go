package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"

	"github.com/google/uuid"
)

// ErrInvalidMessage marks payloads that will never succeed on redelivery.
var ErrInvalidMessage = errors.New("invalid message")

// TradeMessage is the wire form of a DSF trade on the trades exchange.
type TradeMessage struct {
	Info     trade.TradeInfo  `json:"info"`
	Product  *dsf.ResolvedDsf `json:"product"`
	Quantity float64          `json:"quantity"`
	Price    float64          `json:"price"`
}

// Trade builds the validated trade bean.
func (m TradeMessage) Trade() (*dsf.ResolvedDsfTrade, error) {
	return dsf.NewResolvedDsfTradeBuilder().
		Info(m.Info).
		Product(m.Product).
		Quantity(m.Quantity).
		Price(m.Price).
		Build()
}

// QuoteMessage is the wire form of a quote on the quotes exchange.
type QuoteMessage struct {
	ID         string         `json:"id,omitempty"`
	Scheme     string         `json:"scheme"`
	Ticker     string         `json:"ticker"`
	Source     string         `json:"source,omitempty"`
	Value      float64        `json:"value"`
	ObservedAt time.Time      `json:"observed_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Quote converts the message and validates it.
func (m QuoteMessage) Quote() (marketdata.Quote, error) {
	id := uuid.New()
	if m.ID != "" {
		parsed, err := uuid.Parse(m.ID)
		if err != nil {
			return marketdata.Quote{}, fmt.Errorf("quote id: %w", err)
		}
		id = parsed
	}
	if m.Scheme == "" || m.Ticker == "" {
		return marketdata.Quote{}, bean.Required("Quote", "key")
	}
	key, err := basics.NewObservableKey(m.Scheme, m.Ticker)
	if err != nil {
		return marketdata.Quote{}, bean.Invalid("Quote", "key", err.Error())
	}
	q := marketdata.Quote{
		ID:         id,
		Key:        key,
		Source:     basics.ObservableSourceOrNone(m.Source),
		Value:      m.Value,
		ObservedAt: m.ObservedAt.UTC(),
		Metadata:   m.Metadata,
	}
	if err := q.Validate(); err != nil {
		return marketdata.Quote{}, err
	}
	return q, nil
}

func decodeTrade(body []byte) (*dsf.ResolvedDsfTrade, error) {
	var msg TradeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: decode trade: %v", ErrInvalidMessage, err)
	}
	t, err := msg.Trade()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return t, nil
}

func decodeQuote(body []byte) (marketdata.Quote, error) {
	var msg QuoteMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return marketdata.Quote{}, fmt.Errorf("%w: decode quote: %v", ErrInvalidMessage, err)
	}
	q, err := msg.Quote()
	if err != nil {
		return marketdata.Quote{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return q, nil
}
