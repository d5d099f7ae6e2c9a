package fra

import (
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/calendar"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"
)

const fraTemplateName = "FraTemplate"

// FraTemplate describes a FRA relative to the spot date, e.g. 3x6 is
// PeriodToStart=3, PeriodToEnd=6 months.
type FraTemplate struct {
	PeriodToStart int           `json:"period_to_start"`
	PeriodToEnd   int           `json:"period_to_end"`
	Convention    FraConvention `json:"convention"`
}

// NewFraTemplate builds a validated template.
func NewFraTemplate(periodToStart, periodToEnd int, convention FraConvention) (*FraTemplate, error) {
	t := &FraTemplate{PeriodToStart: periodToStart, PeriodToEnd: periodToEnd, Convention: convention}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t FraTemplate) Validate() error {
	if t.PeriodToStart < 0 {
		return bean.Invalid(fraTemplateName, "periodToStart", "must not be negative")
	}
	if t.PeriodToEnd <= t.PeriodToStart {
		return bean.Invalid(fraTemplateName, "periodToEnd", "must be after periodToStart")
	}
	return t.Convention.Validate()
}

func (t FraTemplate) Equal(other FraTemplate) bool {
	return t == other
}

func (t FraTemplate) Hash() uint64 {
	c := t.Convention
	return bean.NewHasher(fraTemplateName).
		Int(t.PeriodToStart).
		Int(t.PeriodToEnd).
		String(c.Index).
		String(c.Currency).
		String(c.DayCount.String()).
		String(c.Calendar.String()).
		Int(c.SpotDays).
		Sum()
}

func (t FraTemplate) String() string {
	return bean.Format(fraTemplateName,
		bean.Field{Name: "periodToStart", Value: t.PeriodToStart},
		bean.Field{Name: "periodToEnd", Value: t.PeriodToEnd},
		bean.Field{Name: "convention", Value: t.Convention},
	)
}

// ToTrade creates a trade from the template. The trade date is the valuation date,
// start and end are measured in months from spot and adjusted modified following.
func (t FraTemplate) ToTrade(valuationDate time.Time, buySell basics.BuySell, notional, fixedRate float64) (*FraTrade, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !buySell.IsValid() {
		return nil, bean.Invalid(fraTemplateName, "buySell", "unsupported direction "+buySell.String())
	}
	cal := t.Convention.Calendar
	tradeDate := calendar.Date(valuationDate)
	spot := calendar.AddBusinessDays(cal, tradeDate, t.Convention.SpotDays)
	start := calendar.Adjust(cal, calendar.AddMonths(spot, t.PeriodToStart))
	end := calendar.Adjust(cal, calendar.AddMonths(spot, t.PeriodToEnd))
	for _, d := range []time.Time{tradeDate, end} {
		if err := calendar.CheckCoverage(cal, d); err != nil {
			return nil, bean.Invalid(fraTemplateName, "valuationDate", err.Error())
		}
	}

	return &FraTrade{
		Info: trade.TradeInfo{
			TradeDate:      tradeDate,
			SettlementDate: spot,
		},
		Product: Fra{
			BuySell:   buySell,
			Currency:  t.Convention.Currency,
			Notional:  notional,
			StartDate: start,
			EndDate:   end,
			FixedRate: fixedRate,
			Index:     t.Convention.Index,
			DayCount:  t.Convention.DayCount,
		},
	}, nil
}
