package curve

import (
	"time"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/fra"
)

const fraCurveNodeName = "FraCurveNode"

// Curve nodes are always built as a bought unit notional; calibration scales the result.
const (
	nodeBuySell  = basics.Buy
	nodeNotional = 1.0
)

// FraCurveNode is a curve calibration instrument based on a FRA template.
type FraCurveNode struct {
	template     fra.FraTemplate
	rateProvider RateProvider
}

// NewFraCurveNode creates a node from a template and a rate provider.
func NewFraCurveNode(template fra.FraTemplate, rateProvider RateProvider) (*FraCurveNode, error) {
	return NewFraCurveNodeBuilder().Template(&template).RateProvider(rateProvider).Build()
}

// FraCurveNodeOfMarketRate creates a node whose rate is the observed value of key.
func FraCurveNodeOfMarketRate(template fra.FraTemplate, key basics.ObservableKey) (*FraCurveNode, error) {
	provider, err := NewMarketRateProvider(key)
	if err != nil {
		return nil, err
	}
	return NewFraCurveNode(template, provider)
}

// FraCurveNodeOfFixedRate creates a node with a constant rate.
func FraCurveNodeOfFixedRate(template fra.FraTemplate, rate float64) (*FraCurveNode, error) {
	return NewFraCurveNode(template, NewFixedRateProvider(rate))
}

func (n *FraCurveNode) Template() fra.FraTemplate {
	return n.template
}

func (n *FraCurveNode) RateProvider() RateProvider {
	return n.rateProvider
}

// Requirements lists the market data BuildTrade needs.
func (n *FraCurveNode) Requirements() []basics.ObservableKey {
	return basics.SortedKeys(n.rateProvider.Requirements()...)
}

// BuildTrade creates the node's trade at the rate found in marketData.
func (n *FraCurveNode) BuildTrade(valuationDate time.Time, marketData map[basics.ObservableKey]float64) (*fra.FraTrade, error) {
	rate, err := n.rateProvider.Rate(marketData)
	if err != nil {
		return nil, err
	}
	return n.template.ToTrade(valuationDate, nodeBuySell, nodeNotional, rate)
}

func (n *FraCurveNode) ToBuilder() *FraCurveNodeBuilder {
	template := n.template
	return &FraCurveNodeBuilder{fields: fraCurveNodeFields{
		Template:     &template,
		RateProvider: n.rateProvider,
	}}
}

func (n *FraCurveNode) Equal(other *FraCurveNode) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	return n.template.Equal(other.template) && n.rateProvider.Equal(other.rateProvider)
}

func (n *FraCurveNode) Hash() uint64 {
	return bean.NewHasher(fraCurveNodeName).
		Uint64(n.template.Hash()).
		Uint64(n.rateProvider.Hash()).
		Sum()
}

func (n *FraCurveNode) String() string {
	return bean.Format(fraCurveNodeName,
		bean.Field{Name: "template", Value: n.template},
		bean.Field{Name: "rateProvider", Value: n.rateProvider},
	)
}

func (n *FraCurveNode) PropertyNames() []string {
	return fraCurveNodeMeta.PropertyNames()
}

func (n *FraCurveNode) Property(name string) (any, error) {
	return fraCurveNodeMeta.Get(n, name)
}

// SetProperty always fails, the node is immutable.
func (n *FraCurveNode) SetProperty(name string, value any) error {
	return fraCurveNodeMeta.Set(n, name, value)
}

func FraCurveNodeMeta() bean.Meta {
	return fraCurveNodeMeta
}

type fraCurveNodeFields struct {
	Template     *fra.FraTemplate `bean:"template" validate:"required"`
	RateProvider RateProvider     `bean:"rateProvider" validate:"required"`
}

// FraCurveNodeBuilder stages the fields of a FraCurveNode.
type FraCurveNodeBuilder struct {
	fields fraCurveNodeFields
}

func NewFraCurveNodeBuilder() *FraCurveNodeBuilder {
	return &FraCurveNodeBuilder{}
}

func (b *FraCurveNodeBuilder) Template(template *fra.FraTemplate) *FraCurveNodeBuilder {
	if template == nil {
		b.fields.Template = nil
		return b
	}
	t := *template
	b.fields.Template = &t
	return b
}

func (b *FraCurveNodeBuilder) RateProvider(provider RateProvider) *FraCurveNodeBuilder {
	b.fields.RateProvider = provider
	return b
}

func (b *FraCurveNodeBuilder) Get(name string) (any, error) {
	return fraCurveNodeMeta.BuilderGet(b, name)
}

func (b *FraCurveNodeBuilder) Set(name string, value any) error {
	return fraCurveNodeMeta.BuilderSet(b, name, value)
}

func (b *FraCurveNodeBuilder) Build() (*FraCurveNode, error) {
	if err := bean.Validate(fraCurveNodeName, &b.fields); err != nil {
		return nil, err
	}
	if err := b.fields.Template.Validate(); err != nil {
		return nil, err
	}
	return &FraCurveNode{
		template:     *b.fields.Template,
		rateProvider: b.fields.RateProvider,
	}, nil
}

type fraCurveNodeProperty = bean.Property[*FraCurveNode, *FraCurveNodeBuilder]

var fraCurveNodeMeta = bean.NewMetaBean(fraCurveNodeName, NewFraCurveNodeBuilder, (*FraCurveNodeBuilder).Build,
	fraCurveNodeProperty{
		Name:       "template",
		Get:        func(n *FraCurveNode) any { return n.template },
		BuilderGet: func(b *FraCurveNodeBuilder) any { return b.fields.Template },
		BuilderSet: func(b *FraCurveNodeBuilder, v any) error {
			switch t := v.(type) {
			case nil:
				b.Template(nil)
			case *fra.FraTemplate:
				b.Template(t)
			case fra.FraTemplate:
				b.Template(&t)
			default:
				_, err := bean.As[*fra.FraTemplate](fraCurveNodeName, "template", v)
				return err
			}
			return nil
		},
	},
	fraCurveNodeProperty{
		Name:       "rateProvider",
		Get:        func(n *FraCurveNode) any { return n.rateProvider },
		BuilderGet: func(b *FraCurveNodeBuilder) any { return b.fields.RateProvider },
		BuilderSet: func(b *FraCurveNodeBuilder, v any) error {
			switch p := v.(type) {
			case nil:
				b.RateProvider(nil)
			case RateProvider:
				b.RateProvider(p)
			case RateProviderDef:
				provider, err := p.Provider()
				if err != nil {
					return err
				}
				b.RateProvider(provider)
			default:
				_, err := bean.As[RateProvider](fraCurveNodeName, "rateProvider", v)
				return err
			}
			return nil
		},
	},
)

func init() {
	bean.Register(fraCurveNodeMeta)
}
