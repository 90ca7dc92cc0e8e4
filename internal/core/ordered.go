package core

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// Setting an existing key replaces its value but keeps its position.
// The zero value is ready to use. Copies share their entries.
type OrderedMap[V any] struct {
	pairs *orderedmap.OrderedMap[string, V]
}

// NewOrderedMap returns an empty map with room for n keys.
func NewOrderedMap[V any](n int) *OrderedMap[V] {
	return &OrderedMap[V]{pairs: orderedmap.New[string, V](n)}
}

// Set stores v under key.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.pairs == nil {
		m.pairs = orderedmap.New[string, V]()
	}
	m.pairs.Set(key, v)
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil || m.pairs == nil {
		var zero V
		return zero, false
	}
	return m.pairs.Get(key)
}

// Keys returns keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil || m.pairs == nil {
		return nil
	}
	keys := make([]string, 0, m.pairs.Len())
	for pair := m.pairs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns values in key order.
func (m *OrderedMap[V]) Values() []V {
	if m == nil || m.pairs == nil {
		return nil
	}
	out := make([]V, 0, m.pairs.Len())
	for pair := m.pairs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of keys.
func (m *OrderedMap[V]) Len() int {
	if m == nil || m.pairs == nil {
		return 0
	}
	return m.pairs.Len()
}

// MarshalJSON encodes the map as a JSON object in insertion order.
// HTML characters are left unescaped.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m.pairs != nil {
		for pair := m.pairs.Oldest(); pair != nil; pair = pair.Next() {
			if buf.Len() > 1 {
				buf.WriteByte(',')
			}
			kb, err := marshalUnescaped(pair.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')

			vb, err := marshalUnescaped(pair.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
