package bean

import (
	"fmt"
	"sort"
	"sync"
)

// Meta describes a bean type to generic tooling.
type Meta interface {
	BeanName() string
	PropertyNames() []string
	NewDynamicBuilder() DynamicBuilder
}

// PropertySetter writes a property by name.
type PropertySetter interface {
	Set(name string, value any) error
}

// DynamicBuilder stages property values by name and produces the immutable bean.
type DynamicBuilder interface {
	PropertySetter
	Get(name string) (any, error)
	BuildBean() (any, error)
}

// Property binds one property name to its accessors on the bean (T) and on its builder (B).
type Property[T, B any] struct {
	Name       string
	Get        func(T) any
	BuilderGet func(B) any
	BuilderSet func(B, any) error
}

// MetaBean is the explicit property table of a bean type.
type MetaBean[T, B any] struct {
	name       string
	newBuilder func() B
	build      func(B) (T, error)
	props      []Property[T, B]
	index      map[string]int
}

func NewMetaBean[T, B any](name string, newBuilder func() B, build func(B) (T, error), props ...Property[T, B]) *MetaBean[T, B] {
	index := make(map[string]int, len(props))
	for i, p := range props {
		if _, dup := index[p.Name]; dup {
			panic(fmt.Sprintf("bean %s: duplicate property %q", name, p.Name))
		}
		index[p.Name] = i
	}
	return &MetaBean[T, B]{
		name:       name,
		newBuilder: newBuilder,
		build:      build,
		props:      props,
		index:      index,
	}
}

func (m *MetaBean[T, B]) BeanName() string {
	return m.name
}

// PropertyNames returns the property names in declaration order.
func (m *MetaBean[T, B]) PropertyNames() []string {
	names := make([]string, len(m.props))
	for i, p := range m.props {
		names[i] = p.Name
	}
	return names
}

func (m *MetaBean[T, B]) HasProperty(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m *MetaBean[T, B]) lookup(name string) (Property[T, B], error) {
	i, ok := m.index[name]
	if !ok {
		return Property[T, B]{}, &PropertyError{Bean: m.name, Property: name, Err: ErrUnknownProperty}
	}
	return m.props[i], nil
}

// Get reads a property of a built bean.
func (m *MetaBean[T, B]) Get(bean T, name string) (any, error) {
	p, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Get(bean), nil
}

// Set always fails: known properties report ErrImmutableBean, others ErrUnknownProperty.
func (m *MetaBean[T, B]) Set(_ T, name string, _ any) error {
	if _, err := m.lookup(name); err != nil {
		return err
	}
	return &PropertyError{Bean: m.name, Property: name, Err: ErrImmutableBean}
}

func (m *MetaBean[T, B]) BuilderGet(b B, name string) (any, error) {
	p, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return p.BuilderGet(b), nil
}

func (m *MetaBean[T, B]) BuilderSet(b B, name string, value any) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	return p.BuilderSet(b, value)
}

// NewBuilder returns an empty builder with defaults applied.
func (m *MetaBean[T, B]) NewBuilder() B {
	return m.newBuilder()
}

func (m *MetaBean[T, B]) NewDynamicBuilder() DynamicBuilder {
	return &dynamicBuilder[T, B]{meta: m, builder: m.newBuilder()}
}

type dynamicBuilder[T, B any] struct {
	meta    *MetaBean[T, B]
	builder B
}

func (d *dynamicBuilder[T, B]) Get(name string) (any, error) {
	return d.meta.BuilderGet(d.builder, name)
}

func (d *dynamicBuilder[T, B]) Set(name string, value any) error {
	return d.meta.BuilderSet(d.builder, name, value)
}

func (d *dynamicBuilder[T, B]) BuildBean() (any, error) {
	return d.meta.build(d.builder)
}

// Populate sets every entry of values on the setter, in name order.
func Populate(setter PropertySetter, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := setter.Set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

var registry = struct {
	mu    sync.RWMutex
	metas map[string]Meta
}{metas: make(map[string]Meta)}

// Register makes a bean type discoverable by name. Registering a name twice panics.
func Register(meta Meta) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	name := meta.BeanName()
	if _, exists := registry.metas[name]; exists {
		panic(fmt.Sprintf("bean %s already registered", name))
	}
	registry.metas[name] = meta
}

// Lookup finds a registered bean type.
func Lookup(name string) (Meta, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	meta, ok := registry.metas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBean, name)
	}
	return meta, nil
}

// Names lists registered bean names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.metas))
	for name := range registry.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
