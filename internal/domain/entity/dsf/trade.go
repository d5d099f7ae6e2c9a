package dsf

import (
	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/trade"
)

const resolvedDsfTradeName = "ResolvedDsfTrade"

// ResolvedDsfTrade is a trade in a resolved deliverable swap future, ready for valuation.
// Instances are immutable; use ToBuilder to derive a modified copy.
type ResolvedDsfTrade struct {
	info     trade.TradeInfo
	product  ResolvedDsf
	quantity float64
	price    float64
}

// Info is the additional trade information, empty when none was supplied.
func (t *ResolvedDsfTrade) Info() trade.TradeInfo {
	return t.info
}

// Product is the resolved future being traded.
func (t *ResolvedDsfTrade) Product() ResolvedDsf {
	return t.product
}

// Quantity is the number of contracts: positive when bought, negative when sold.
func (t *ResolvedDsfTrade) Quantity() float64 {
	return t.quantity
}

// Price is the traded price, never negative.
func (t *ResolvedDsfTrade) Price() float64 {
	return t.price
}

func (t *ResolvedDsfTrade) ToBuilder() *ResolvedDsfTradeBuilder {
	product := t.product
	return &ResolvedDsfTradeBuilder{fields: resolvedDsfTradeFields{
		Info:     t.info,
		Product:  &product,
		Quantity: t.quantity,
		Price:    t.price,
	}}
}

func (t *ResolvedDsfTrade) Equal(other *ResolvedDsfTrade) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.info.Equal(other.info) &&
		t.product.Equal(other.product) &&
		bean.FloatEqual(t.quantity, other.quantity) &&
		bean.FloatEqual(t.price, other.price)
}

func (t *ResolvedDsfTrade) Hash() uint64 {
	return bean.NewHasher(resolvedDsfTradeName).
		Uint64(t.info.Hash()).
		Uint64(t.product.Hash()).
		Float(t.quantity).
		Float(t.price).
		Sum()
}

func (t *ResolvedDsfTrade) String() string {
	return bean.Format(resolvedDsfTradeName,
		bean.Field{Name: "info", Value: t.info},
		bean.Field{Name: "product", Value: t.product},
		bean.Field{Name: "quantity", Value: t.quantity},
		bean.Field{Name: "price", Value: t.price},
	)
}

func (t *ResolvedDsfTrade) PropertyNames() []string {
	return resolvedDsfTradeMeta.PropertyNames()
}

func (t *ResolvedDsfTrade) Property(name string) (any, error) {
	return resolvedDsfTradeMeta.Get(t, name)
}

// SetProperty always fails, the trade is immutable.
func (t *ResolvedDsfTrade) SetProperty(name string, value any) error {
	return resolvedDsfTradeMeta.Set(t, name, value)
}

// ResolvedDsfTradeMeta describes the trade's properties to generic tooling.
func ResolvedDsfTradeMeta() bean.Meta {
	return resolvedDsfTradeMeta
}

type resolvedDsfTradeFields struct {
	Info     trade.TradeInfo `bean:"info"`
	Product  *ResolvedDsf    `bean:"product" validate:"required"`
	Quantity float64         `bean:"quantity"`
	Price    float64         `bean:"price" validate:"gte=0"`
}

// ResolvedDsfTradeBuilder stages the fields of a ResolvedDsfTrade. It is not safe for concurrent use.
type ResolvedDsfTradeBuilder struct {
	fields resolvedDsfTradeFields
}

// NewResolvedDsfTradeBuilder returns a builder whose info defaults to the empty record.
func NewResolvedDsfTradeBuilder() *ResolvedDsfTradeBuilder {
	return &ResolvedDsfTradeBuilder{fields: resolvedDsfTradeFields{Info: trade.EmptyTradeInfo()}}
}

func (b *ResolvedDsfTradeBuilder) Info(info trade.TradeInfo) *ResolvedDsfTradeBuilder {
	b.fields.Info = info
	return b
}

func (b *ResolvedDsfTradeBuilder) Product(product *ResolvedDsf) *ResolvedDsfTradeBuilder {
	if product == nil {
		b.fields.Product = nil
		return b
	}
	p := *product
	b.fields.Product = &p
	return b
}

func (b *ResolvedDsfTradeBuilder) Quantity(quantity float64) *ResolvedDsfTradeBuilder {
	b.fields.Quantity = quantity
	return b
}

func (b *ResolvedDsfTradeBuilder) Price(price float64) *ResolvedDsfTradeBuilder {
	b.fields.Price = price
	return b
}

func (b *ResolvedDsfTradeBuilder) Get(name string) (any, error) {
	return resolvedDsfTradeMeta.BuilderGet(b, name)
}

func (b *ResolvedDsfTradeBuilder) Set(name string, value any) error {
	return resolvedDsfTradeMeta.BuilderSet(b, name, value)
}

// Build validates the staged fields and returns the immutable trade.
// Dates are kept as calendar days at midnight UTC.
func (b *ResolvedDsfTradeBuilder) Build() (*ResolvedDsfTrade, error) {
	if err := bean.Validate(resolvedDsfTradeName, &b.fields); err != nil {
		return nil, err
	}
	product := b.fields.Product.Normalized()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return &ResolvedDsfTrade{
		info:     b.fields.Info.Normalized(),
		product:  product,
		quantity: b.fields.Quantity,
		price:    b.fields.Price,
	}, nil
}

type dsfTradeProperty = bean.Property[*ResolvedDsfTrade, *ResolvedDsfTradeBuilder]

var resolvedDsfTradeMeta = bean.NewMetaBean(resolvedDsfTradeName, NewResolvedDsfTradeBuilder, (*ResolvedDsfTradeBuilder).Build,
	dsfTradeProperty{
		Name:       "info",
		Get:        func(t *ResolvedDsfTrade) any { return t.info },
		BuilderGet: func(b *ResolvedDsfTradeBuilder) any { return b.fields.Info },
		BuilderSet: func(b *ResolvedDsfTradeBuilder, v any) error {
			if v == nil {
				b.fields.Info = trade.EmptyTradeInfo()
				return nil
			}
			info, err := bean.As[trade.TradeInfo](resolvedDsfTradeName, "info", v)
			if err != nil {
				return err
			}
			b.fields.Info = info
			return nil
		},
	},
	dsfTradeProperty{
		Name:       "product",
		Get:        func(t *ResolvedDsfTrade) any { return t.product },
		BuilderGet: func(b *ResolvedDsfTradeBuilder) any { return b.fields.Product },
		BuilderSet: func(b *ResolvedDsfTradeBuilder, v any) error {
			switch p := v.(type) {
			case nil:
				b.Product(nil)
			case *ResolvedDsf:
				b.Product(p)
			case ResolvedDsf:
				b.Product(&p)
			default:
				_, err := bean.As[*ResolvedDsf](resolvedDsfTradeName, "product", v)
				return err
			}
			return nil
		},
	},
	dsfTradeProperty{
		Name:       "quantity",
		Get:        func(t *ResolvedDsfTrade) any { return t.quantity },
		BuilderGet: func(b *ResolvedDsfTradeBuilder) any { return b.fields.Quantity },
		BuilderSet: func(b *ResolvedDsfTradeBuilder, v any) error {
			f, err := bean.AsFloat(resolvedDsfTradeName, "quantity", v)
			if err != nil {
				return err
			}
			b.fields.Quantity = f
			return nil
		},
	},
	dsfTradeProperty{
		Name:       "price",
		Get:        func(t *ResolvedDsfTrade) any { return t.price },
		BuilderGet: func(b *ResolvedDsfTradeBuilder) any { return b.fields.Price },
		BuilderSet: func(b *ResolvedDsfTradeBuilder, v any) error {
			f, err := bean.AsFloat(resolvedDsfTradeName, "price", v)
			if err != nil {
				return err
			}
			b.fields.Price = f
			return nil
		},
	},
)

func init() {
	bean.Register(resolvedDsfTradeMeta)
}
