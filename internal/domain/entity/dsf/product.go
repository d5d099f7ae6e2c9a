package dsf

import (
	"math"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/calendar"
)

// ResolvedDsf is a deliverable swap future with its reference data already bound.
type ResolvedDsf struct {
	SecurityID          string    `json:"security_id"`
	Currency            string    `json:"currency"`
	Notional            float64   `json:"notional"`
	LastTradeDate       time.Time `json:"last_trade_date"`
	DeliveryDate        time.Time `json:"delivery_date"`
	UnderlyingFixedRate float64   `json:"underlying_fixed_rate"`
}

const resolvedDsfName = "ResolvedDsf"

// Validate checks the product terms.
func (p ResolvedDsf) Validate() error {
	switch {
	case p.SecurityID == "":
		return bean.Required(resolvedDsfName, "securityId")
	case p.Currency == "":
		return bean.Required(resolvedDsfName, "currency")
	case math.IsNaN(p.Notional) || p.Notional <= 0:
		return bean.Invalid(resolvedDsfName, "notional", "must be positive")
	case p.LastTradeDate.IsZero():
		return bean.Required(resolvedDsfName, "lastTradeDate")
	case p.DeliveryDate.IsZero():
		return bean.Required(resolvedDsfName, "deliveryDate")
	case p.DeliveryDate.Before(p.LastTradeDate):
		return bean.Invalid(resolvedDsfName, "deliveryDate", "must not be before lastTradeDate")
	}
	return nil
}

// Normalized returns a copy whose dates are calendar days at midnight UTC.
func (p ResolvedDsf) Normalized() ResolvedDsf {
	if !p.LastTradeDate.IsZero() {
		p.LastTradeDate = calendar.Date(p.LastTradeDate)
	}
	if !p.DeliveryDate.IsZero() {
		p.DeliveryDate = calendar.Date(p.DeliveryDate)
	}
	return p
}

func (p ResolvedDsf) Equal(other ResolvedDsf) bool {
	return p.SecurityID == other.SecurityID &&
		p.Currency == other.Currency &&
		bean.FloatEqual(p.Notional, other.Notional) &&
		p.LastTradeDate.Equal(other.LastTradeDate) &&
		p.DeliveryDate.Equal(other.DeliveryDate) &&
		bean.FloatEqual(p.UnderlyingFixedRate, other.UnderlyingFixedRate)
}

func (p ResolvedDsf) Hash() uint64 {
	return bean.NewHasher(resolvedDsfName).
		String(p.SecurityID).
		String(p.Currency).
		Float(p.Notional).
		Time(p.LastTradeDate).
		Time(p.DeliveryDate).
		Float(p.UnderlyingFixedRate).
		Sum()
}

func (p ResolvedDsf) String() string {
	return bean.Format(resolvedDsfName,
		bean.Field{Name: "securityId", Value: p.SecurityID},
		bean.Field{Name: "currency", Value: p.Currency},
		bean.Field{Name: "notional", Value: p.Notional},
		bean.Field{Name: "lastTradeDate", Value: p.LastTradeDate},
		bean.Field{Name: "deliveryDate", Value: p.DeliveryDate},
		bean.Field{Name: "underlyingFixedRate", Value: p.UnderlyingFixedRate},
	)
}
