package fra

import (
	"strings"
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/calendar"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"
)

// FraConvention holds the market conventions of a forward rate agreement on one index.
type FraConvention struct {
	Index    string              `json:"index"`
	Currency string              `json:"currency"`
	DayCount calendar.DayCount   `json:"day_count"`
	Calendar calendar.CalendarID `json:"calendar"`
	SpotDays int                 `json:"spot_days"`
}

const fraConventionName = "FraConvention"

func (c FraConvention) Validate() error {
	switch {
	case strings.TrimSpace(c.Index) == "":
		return bean.Required(fraConventionName, "index")
	case strings.TrimSpace(c.Currency) == "":
		return bean.Required(fraConventionName, "currency")
	case !c.DayCount.IsValid():
		return bean.Invalid(fraConventionName, "dayCount", "unsupported day count "+c.DayCount.String())
	case !c.Calendar.IsValid():
		return bean.Invalid(fraConventionName, "calendar", "unsupported calendar "+c.Calendar.String())
	case c.SpotDays < 0:
		return bean.Invalid(fraConventionName, "spotDays", "must not be negative")
	}
	return nil
}

func (c FraConvention) String() string {
	return bean.Format(fraConventionName,
		bean.Field{Name: "index", Value: c.Index},
		bean.Field{Name: "currency", Value: c.Currency},
		bean.Field{Name: "dayCount", Value: c.DayCount},
		bean.Field{Name: "calendar", Value: c.Calendar},
		bean.Field{Name: "spotDays", Value: c.SpotDays},
	)
}

// Fra is a forward rate agreement product.
type Fra struct {
	BuySell   basics.BuySell    `json:"buy_sell"`
	Currency  string            `json:"currency"`
	Notional  float64           `json:"notional"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	FixedRate float64           `json:"fixed_rate"`
	Index     string            `json:"index"`
	DayCount  calendar.DayCount `json:"day_count"`
}

// AccrualFactor is the year fraction between start and end under the day count.
func (f Fra) AccrualFactor() float64 {
	return f.DayCount.YearFraction(f.StartDate, f.EndDate)
}

// SignedNotional is positive when buying, negative when selling.
func (f Fra) SignedNotional() float64 {
	return f.BuySell.Normalize(f.Notional)
}

func (f Fra) Equal(other Fra) bool {
	return f.BuySell == other.BuySell &&
		f.Currency == other.Currency &&
		bean.FloatEqual(f.Notional, other.Notional) &&
		f.StartDate.Equal(other.StartDate) &&
		f.EndDate.Equal(other.EndDate) &&
		bean.FloatEqual(f.FixedRate, other.FixedRate) &&
		f.Index == other.Index &&
		f.DayCount == other.DayCount
}

func (f Fra) String() string {
	return bean.Format("Fra",
		bean.Field{Name: "buySell", Value: f.BuySell},
		bean.Field{Name: "currency", Value: f.Currency},
		bean.Field{Name: "notional", Value: f.Notional},
		bean.Field{Name: "startDate", Value: f.StartDate},
		bean.Field{Name: "endDate", Value: f.EndDate},
		bean.Field{Name: "fixedRate", Value: f.FixedRate},
		bean.Field{Name: "index", Value: f.Index},
		bean.Field{Name: "dayCount", Value: f.DayCount},
	)
}

// FraTrade is a concrete FRA trade.
type FraTrade struct {
	Info    trade.TradeInfo `json:"info"`
	Product Fra             `json:"product"`
}

func (t *FraTrade) Equal(other *FraTrade) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.Info.Equal(other.Info) && t.Product.Equal(other.Product)
}

func (t *FraTrade) String() string {
	return bean.Format("FraTrade",
		bean.Field{Name: "info", Value: t.Info},
		bean.Field{Name: "product", Value: t.Product},
	)
}
