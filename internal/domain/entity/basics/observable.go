package basics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMarketDataNotFound is returned when a required observable value is missing.
var ErrMarketDataNotFound = errors.New("market data not found")

const keySeparator = "~"

// ObservableKey identifies one observed market quantity, such as a quote for a ticker.
type ObservableKey struct {
	Scheme string `json:"scheme"`
	Value  string `json:"value"`
}

func NewObservableKey(scheme, value string) (ObservableKey, error) {
	scheme = strings.TrimSpace(scheme)
	value = strings.TrimSpace(value)
	if scheme == "" || value == "" {
		return ObservableKey{}, fmt.Errorf("observable key requires scheme and value, got %q/%q", scheme, value)
	}
	if strings.Contains(scheme, keySeparator) {
		return ObservableKey{}, fmt.Errorf("observable key scheme %q must not contain %q", scheme, keySeparator)
	}
	return ObservableKey{Scheme: scheme, Value: value}, nil
}

// ParseObservableKey parses the `Scheme~Value` form produced by String.
func ParseObservableKey(s string) (ObservableKey, error) {
	scheme, value, ok := strings.Cut(s, keySeparator)
	if !ok {
		return ObservableKey{}, fmt.Errorf("observable key %q: missing %q separator", s, keySeparator)
	}
	return NewObservableKey(scheme, value)
}

func (k ObservableKey) String() string {
	return k.Scheme + keySeparator + k.Value
}

// Valid reports whether k has both parts and a scheme that String can separate.
func (k ObservableKey) Valid() bool {
	return k.Scheme != "" && k.Value != "" && !strings.Contains(k.Scheme, keySeparator)
}

func (k ObservableKey) IsZero() bool {
	return k.Scheme == "" && k.Value == ""
}

// LookupValue returns the observed value for key.
func LookupValue(marketData map[ObservableKey]float64, key ObservableKey) (float64, error) {
	v, ok := marketData[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMarketDataNotFound, key)
	}
	return v, nil
}

// SortedKeys returns the distinct keys in a stable order.
func SortedKeys(keys ...ObservableKey) []ObservableKey {
	seen := make(map[ObservableKey]struct{}, len(keys))
	out := make([]ObservableKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scheme != out[j].Scheme {
			return out[i].Scheme < out[j].Scheme
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// ObservableSource tags the provider of observable market data.
type ObservableSource string

// ObservableSourceNone is used when market data has a single, implicit source.
const ObservableSourceNone ObservableSource = "None"

func (s ObservableSource) String() string {
	return string(s)
}

func NewObservableSource(s string) (ObservableSource, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("observable source is empty")
	}
	return ObservableSource(s), nil
}

// ObservableSourceOrNone parses s, falling back to ObservableSourceNone when s is blank.
func ObservableSourceOrNone(s string) ObservableSource {
	source, err := NewObservableSource(s)
	if err != nil {
		return ObservableSourceNone
	}
	return source
}
