package models

import "time"

// QuoteModel maps the quotes table written by the market data repository.
type QuoteModel struct {
	QuoteID    string    `gorm:"primaryKey;column:quote_id;type:uuid"`
	Scheme     string    `gorm:"column:scheme;type:varchar(64);not null;index:idx_quotes_key_observed,priority:1"`
	Ticker     string    `gorm:"column:ticker;type:varchar(128);not null;index:idx_quotes_key_observed,priority:2"`
	Source     string    `gorm:"column:source;type:varchar(64);not null;default:None;index:idx_quotes_key_observed,priority:3"`
	Value      float64   `gorm:"column:value;type:double precision;not null"`
	ObservedAt time.Time `gorm:"column:observed_at;type:timestamptz;not null;index:idx_quotes_key_observed,priority:4,sort:desc"`
	Metadata   []byte    `gorm:"column:metadata;type:jsonb"`
}

func (QuoteModel) TableName() string {
	return "quotes"
}

// CurveGroupModel stores one curve group per name and observable source.
type CurveGroupModel struct {
	Name      string    `gorm:"primaryKey;column:name;type:varchar(255)"`
	Source    string    `gorm:"primaryKey;column:source;type:varchar(64);default:None"`
	Curves    []byte    `gorm:"column:curves;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (CurveGroupModel) TableName() string {
	return "curve_groups"
}

type DsfTradeModel struct {
	TradeID        string          `gorm:"primaryKey;column:trade_id;type:varchar(255)"`
	Counterparty   string          `gorm:"column:counterparty;type:varchar(255)"`
	TradeDate      *time.Time      `gorm:"column:trade_date;type:date"`
	SettlementDate *time.Time      `gorm:"column:settlement_date;type:date"`
	Quantity       float64         `gorm:"column:quantity;type:double precision;not null"`
	Price          float64         `gorm:"column:price;type:double precision;not null;check:price >= 0"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamptz;default:CURRENT_TIMESTAMP"`
	Product        DsfProductModel `gorm:"foreignKey:TradeID;references:TradeID;constraint:OnDelete:CASCADE"`
}

func (DsfTradeModel) TableName() string {
	return "dsf_trades"
}

type DsfProductModel struct {
	TradeID             string    `gorm:"primaryKey;column:trade_id;type:varchar(255)"`
	SecurityID          string    `gorm:"column:security_id;type:varchar(255);not null;index"`
	Currency            string    `gorm:"column:currency;type:varchar(3);not null"`
	Notional            float64   `gorm:"column:notional;type:double precision;not null"`
	LastTradeDate       time.Time `gorm:"column:last_trade_date;type:date;not null"`
	DeliveryDate        time.Time `gorm:"column:delivery_date;type:date;not null"`
	UnderlyingFixedRate float64   `gorm:"column:underlying_fixed_rate;type:double precision;not null"`
}

func (DsfProductModel) TableName() string {
	return "dsf_products"
}

// All lists every model in dependency order.
func All() []any {
	return []any{&QuoteModel{}, &CurveGroupModel{}, &DsfTradeModel{}, &DsfProductModel{}}
}
