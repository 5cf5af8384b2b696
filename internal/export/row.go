package export

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Row is a flat, ordered property mapping produced by normalization.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set stores the value, appending the key on first use.
func (r *Row) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Keys returns the keys in insertion order.
func (r *Row) Keys() []string {
	return slices.Clone(r.keys)
}

func (r *Row) Len() int {
	return len(r.keys)
}

// Filter returns a new row holding the accepted keys in the original order.
func (r *Row) Filter(keep func(key string) bool) *Row {
	out := NewRow()
	for _, key := range r.keys {
		if keep(key) {
			out.Set(key, r.values[key])
		}
	}
	return out
}

// Map returns an unordered copy of the row.
func (r *Row) Map() map[string]any {
	return maps.Clone(r.values)
}

// MarshalJSON encodes the row as an object preserving key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
