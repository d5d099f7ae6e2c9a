package trade

import (
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/calendar"
)

// TradeInfo carries optional trade metadata. The zero value is the empty record.
type TradeInfo struct {
	ID             string    `json:"id,omitempty"`
	Counterparty   string    `json:"counterparty,omitempty"`
	TradeDate      time.Time `json:"trade_date,omitzero"`
	SettlementDate time.Time `json:"settlement_date,omitzero"`
}

// EmptyTradeInfo returns the record with no metadata set.
func EmptyTradeInfo() TradeInfo {
	return TradeInfo{}
}

func (i TradeInfo) IsEmpty() bool {
	return i.Equal(TradeInfo{})
}

func (i TradeInfo) Equal(other TradeInfo) bool {
	return i.ID == other.ID &&
		i.Counterparty == other.Counterparty &&
		i.TradeDate.Equal(other.TradeDate) &&
		i.SettlementDate.Equal(other.SettlementDate)
}

func (i TradeInfo) Hash() uint64 {
	return bean.NewHasher("TradeInfo").
		String(i.ID).
		String(i.Counterparty).
		Time(i.TradeDate).
		Time(i.SettlementDate).
		Sum()
}

func (i TradeInfo) String() string {
	return bean.Format("TradeInfo",
		bean.Field{Name: "id", Value: i.ID},
		bean.Field{Name: "counterparty", Value: i.Counterparty},
		bean.Field{Name: "tradeDate", Value: i.TradeDate},
		bean.Field{Name: "settlementDate", Value: i.SettlementDate},
	)
}

// Normalized returns a copy whose dates are calendar days at midnight UTC.
func (i TradeInfo) Normalized() TradeInfo {
	if !i.TradeDate.IsZero() {
		i.TradeDate = calendar.Date(i.TradeDate)
	}
	if !i.SettlementDate.IsZero() {
		i.SettlementDate = calendar.Date(i.SettlementDate)
	}
	return i
}
