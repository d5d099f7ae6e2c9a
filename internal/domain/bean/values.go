package bean

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// As converts a property value to V or reports ErrPropertyType.
func As[V any](beanName, property string, value any) (V, error) {
	v, ok := value.(V)
	if !ok {
		var zero V
		return zero, &PropertyError{
			Bean:     beanName,
			Property: property,
			Err:      fmt.Errorf("%w: want %T, got %T", ErrPropertyType, zero, value),
		}
	}
	return v, nil
}

// AsFloat accepts any numeric value, including json.Number.
func AsFloat(beanName, property string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, &PropertyError{Bean: beanName, Property: property, Err: fmt.Errorf("%w: %v", ErrPropertyType, err)}
		}
		return f, nil
	default:
		return 0, &PropertyError{
			Bean:     beanName,
			Property: property,
			Err:      fmt.Errorf("%w: want number, got %T", ErrPropertyType, value),
		}
	}
}

// FloatEqual compares bit patterns, so NaN equals NaN and 0.0 differs from -0.0.
func FloatEqual(a, b float64) bool {
	return canonicalBits(a) == canonicalBits(b)
}

func canonicalBits(f float64) uint64 {
	if math.IsNaN(f) {
		return math.Float64bits(math.NaN())
	}
	return math.Float64bits(f)
}

// Hasher accumulates a deterministic 64-bit hash of bean fields.
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func NewHasher(beanName string) *Hasher {
	h := &Hasher{d: xxhash.New()}
	return h.String(beanName)
}

func (h *Hasher) Uint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
	return h
}

func (h *Hasher) String(s string) *Hasher {
	h.Uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
	return h
}

func (h *Hasher) Float(f float64) *Hasher {
	return h.Uint64(canonicalBits(f))
}

func (h *Hasher) Int(v int) *Hasher {
	return h.Uint64(uint64(int64(v)))
}

// Time hashes the instant, so equal times in different locations hash alike.
func (h *Hasher) Time(t time.Time) *Hasher {
	if t.IsZero() {
		return h.Uint64(0)
	}
	return h.Uint64(uint64(t.Unix())).Uint64(uint64(t.Nanosecond()))
}

func (h *Hasher) Sum() uint64 {
	return h.d.Sum64()
}

// Field is one name/value pair of a bean's string form.
type Field struct {
	Name  string
	Value any
}

// Format renders `Name{a=1, b=2}`.
func Format(beanName string, fields ...Field) string {
	var sb strings.Builder
	sb.Grow(32 + 16*len(fields))
	sb.WriteString(beanName)
	sb.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(formatValue(f.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
