package dispatch

import (
	"fmt"
	"time"
)

// Value is a node of a response body. Implementations are limited to Scalar,
// Sequence, Mapping and entities wrapped by Entity.
type Value interface {
	wireValue()
}

// Scalar holds a string, number, bool or null.
type Scalar struct{ v any }

func (Scalar) wireValue() {}

func Null() Value { return Scalar{} }
func String(s string) Value { return Scalar{v: s} }
func Int(i int64) Value { return Scalar{v: i} }
func Float(f float64) Value { return Scalar{v: f} }
func Bool(b bool) Value { return Scalar{v: b} }
func StringOrNull(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}

// Time renders t as RFC 3339 in UTC, or null.
func Time(t *time.Time) Value {
	if t == nil || t.IsZero() {
		return Null()
	}
	return String(t.UTC().Format(time.RFC3339))
}

type Sequence []Value

func (Sequence) wireValue() {}

type Mapping map[string]Value

func (Mapping) wireValue() {}

// WireFormatter is implemented by entities that can describe themselves as a
// response mapping.
type WireFormatter interface {
	ToWireFormat() Mapping
}

type entity struct{ w WireFormatter }

func (entity) wireValue() {}

// Entity wraps w so it is rendered through its ToWireFormat.
func Entity(w WireFormatter) Value {
	if w == nil {
		return Null()
	}
	return entity{w: w}
}

// Entities wraps each item with Entity.
func Entities[T WireFormatter](items []T) Sequence {
	out := make(Sequence, 0, len(items))
	for _, it := range items {
		out = append(out, Entity(it))
	}
	return out
}

// Prepare lowers v into plain values ready for JSON encoding.
func Prepare(v Value) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Scalar:
		return v.v, nil
	case Sequence:
		out := make([]any, len(v))
		for i, item := range v {
			p, err := Prepare(item)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case Mapping:
		out := make(map[string]any, len(v))
		for k, item := range v {
			p, err := Prepare(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = p
		}
		return out, nil
	case entity:
		return Prepare(v.w.ToWireFormat())
	}
	return nil, fmt.Errorf("unsupported wire value %T", v)
}
