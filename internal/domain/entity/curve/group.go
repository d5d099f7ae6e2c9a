package curve

import (
	"strings"
	"sync/atomic"

	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
)

// CurveGroupName names a group of curves calibrated together.
type CurveGroupName string

func NewCurveGroupName(name string) (CurveGroupName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", bean.Required("CurveGroupName", "name")
	}
	return CurveGroupName(name), nil
}

func (n CurveGroupName) String() string {
	return string(n)
}

const (
	curveGroupIDName = "CurveGroupId"

	// MarketDataTypeCurveGroup is the type of value a CurveGroupID identifies.
	MarketDataTypeCurveGroup = "CurveGroup"
)

// CurveGroupID identifies a curve group from one observable source in a market data store.
// Values must be shared by pointer.
type CurveGroupID struct {
	curveGroupName   CurveGroupName
	observableSource basics.ObservableSource

	// zero until computed
	hash atomic.Uint64
}

// CurveGroupIDOf identifies the named group with no specific source.
func CurveGroupIDOf(name string) (*CurveGroupID, error) {
	groupName, err := NewCurveGroupName(name)
	if err != nil {
		return nil, err
	}
	return CurveGroupIDOfName(groupName)
}

func CurveGroupIDOfName(name CurveGroupName) (*CurveGroupID, error) {
	return NewCurveGroupID(name, basics.ObservableSourceNone)
}

func NewCurveGroupID(name CurveGroupName, source basics.ObservableSource) (*CurveGroupID, error) {
	b := &curveGroupIDBuilder{}
	b.fields.CurveGroupName = name
	b.fields.ObservableSource = source
	return b.Build()
}

func (id *CurveGroupID) CurveGroupName() CurveGroupName {
	return id.curveGroupName
}

func (id *CurveGroupID) ObservableSource() basics.ObservableSource {
	return id.observableSource
}

func (id *CurveGroupID) MarketDataType() string {
	return MarketDataTypeCurveGroup
}

func (id *CurveGroupID) Equal(other *CurveGroupID) bool {
	if id == other {
		return true
	}
	if id == nil || other == nil {
		return false
	}
	return id.curveGroupName == other.curveGroupName && id.observableSource == other.observableSource
}

// Hash is computed once and cached. Racing callers compute the same value.
func (id *CurveGroupID) Hash() uint64 {
	if h := id.hash.Load(); h != 0 {
		return h
	}
	h := bean.NewHasher(curveGroupIDName).
		String(string(id.curveGroupName)).
		String(string(id.observableSource)).
		Sum()
	id.hash.Store(h)
	return h
}

func (id *CurveGroupID) String() string {
	return bean.Format(curveGroupIDName,
		bean.Field{Name: "curveGroupName", Value: id.curveGroupName},
		bean.Field{Name: "observableSource", Value: id.observableSource},
	)
}

func (id *CurveGroupID) PropertyNames() []string {
	return curveGroupIDMeta.PropertyNames()
}

func (id *CurveGroupID) Property(name string) (any, error) {
	return curveGroupIDMeta.Get(id, name)
}

// SetProperty always fails, the identifier is immutable.
func (id *CurveGroupID) SetProperty(name string, value any) error {
	return curveGroupIDMeta.Set(id, name, value)
}

// CurveGroupIDMeta exposes the identifier's properties. Its dynamic builder is
// the only builder available outside this package.
func CurveGroupIDMeta() bean.Meta {
	return curveGroupIDMeta
}

type curveGroupIDFields struct {
	CurveGroupName   CurveGroupName          `bean:"curveGroupName" validate:"required"`
	ObservableSource basics.ObservableSource `bean:"observableSource" validate:"required"`
}

type curveGroupIDBuilder struct {
	fields curveGroupIDFields
}

func newCurveGroupIDBuilder() *curveGroupIDBuilder {
	return &curveGroupIDBuilder{}
}

// Build trims both names, so blank values fail as missing.
func (b *curveGroupIDBuilder) Build() (*CurveGroupID, error) {
	b.fields.CurveGroupName = CurveGroupName(strings.TrimSpace(string(b.fields.CurveGroupName)))
	b.fields.ObservableSource = basics.ObservableSource(strings.TrimSpace(string(b.fields.ObservableSource)))
	if err := bean.Validate(curveGroupIDName, &b.fields); err != nil {
		return nil, err
	}
	return &CurveGroupID{
		curveGroupName:   b.fields.CurveGroupName,
		observableSource: b.fields.ObservableSource,
	}, nil
}

type curveGroupIDProperty = bean.Property[*CurveGroupID, *curveGroupIDBuilder]

var curveGroupIDMeta = bean.NewMetaBean(curveGroupIDName, newCurveGroupIDBuilder, (*curveGroupIDBuilder).Build,
	curveGroupIDProperty{
		Name:       "curveGroupName",
		Get:        func(id *CurveGroupID) any { return id.curveGroupName },
		BuilderGet: func(b *curveGroupIDBuilder) any { return b.fields.CurveGroupName },
		BuilderSet: func(b *curveGroupIDBuilder, v any) error {
			switch n := v.(type) {
			case CurveGroupName:
				b.fields.CurveGroupName = n
			case string:
				b.fields.CurveGroupName = CurveGroupName(strings.TrimSpace(n))
			case nil:
				b.fields.CurveGroupName = ""
			default:
				_, err := bean.As[CurveGroupName](curveGroupIDName, "curveGroupName", v)
				return err
			}
			return nil
		},
	},
	curveGroupIDProperty{
		Name:       "observableSource",
		Get:        func(id *CurveGroupID) any { return id.observableSource },
		BuilderGet: func(b *curveGroupIDBuilder) any { return b.fields.ObservableSource },
		BuilderSet: func(b *curveGroupIDBuilder, v any) error {
			switch s := v.(type) {
			case basics.ObservableSource:
				b.fields.ObservableSource = s
			case string:
				b.fields.ObservableSource = basics.ObservableSource(strings.TrimSpace(s))
			case nil:
				b.fields.ObservableSource = ""
			default:
				_, err := bean.As[basics.ObservableSource](curveGroupIDName, "observableSource", v)
				return err
			}
			return nil
		},
	},
)

func init() {
	bean.Register(curveGroupIDMeta)
}

// CurvePoint is one calibrated parameter of a curve.
type CurvePoint struct {
	YearFraction float64 `json:"year_fraction"`
	Value        float64 `json:"value"`
}

// NamedCurve is one curve of a group, with points ordered by year fraction.
type NamedCurve struct {
	Name     string       `json:"name"`
	Currency string       `json:"currency"`
	Points   []CurvePoint `json:"points"`
}

// CurveGroup is the market data a CurveGroupID resolves to.
type CurveGroup struct {
	Name   CurveGroupName `json:"name"`
	Curves []NamedCurve   `json:"curves"`
}

func (g CurveGroup) Validate() error {
	if g.Name == "" {
		return bean.Required("CurveGroup", "name")
	}
	seen := make(map[string]struct{}, len(g.Curves))
	for _, c := range g.Curves {
		if strings.TrimSpace(c.Name) == "" {
			return bean.Required("NamedCurve", "name")
		}
		if _, dup := seen[c.Name]; dup {
			return bean.Invalid("CurveGroup", "curves", "duplicate curve "+c.Name)
		}
		seen[c.Name] = struct{}{}
		for i := 1; i < len(c.Points); i++ {
			if c.Points[i].YearFraction <= c.Points[i-1].YearFraction {
				return bean.Invalid("NamedCurve", "points", "year fractions must increase in curve "+c.Name)
			}
		}
	}
	return nil
}

// Curve finds a curve of the group by name.
func (g CurveGroup) Curve(name string) (NamedCurve, bool) {
	for _, c := range g.Curves {
		if c.Name == name {
			return c, true
		}
	}
	return NamedCurve{}, false
}
