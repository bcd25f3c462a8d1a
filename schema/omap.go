package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a string-keyed map that serializes its entries in insertion
// order. encoding/json's native map support randomizes key order, which
// would break the table document's documented guarantees that a row's keys
// follow the prototype and that "data" lists rows in ascending #rowid order
// (see the table document invariants).
type OrderedMap struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]json.RawMessage{}}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string { return append([]string(nil), m.keys...) }

// Has reports whether key is present.
func (m *OrderedMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Set stores raw (an already-marshaled JSON value) under key, appending key
// to the order if it is new.
func (m *OrderedMap) Set(key string, raw json.RawMessage) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = raw
}

// SetValue marshals v and stores it under key.
func (m *OrderedMap) SetValue(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.Set(key, raw)
	return nil
}

// Get returns the raw JSON stored under key.
func (m *OrderedMap) Get(key string) (json.RawMessage, bool) {
	raw, ok := m.values[key]
	return raw, ok
}

// GetInto unmarshals the value stored under key into target.
func (m *OrderedMap) GetInto(key string, target any) error {
	raw, ok := m.values[key]
	if !ok {
		return fmt.Errorf("key %q not present", key)
	}
	return json.Unmarshal(raw, target)
}

// Delete removes key if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Reorder replaces the key order, keeping the same entries. Every existing
// key must appear exactly once in order.
func (m *OrderedMap) Reorder(order []string) {
	if len(order) != len(m.keys) {
		return
	}
	m.keys = append([]string(nil), order...)
}

// MarshalJSON implements json.Marshaler, writing keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(m.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, recording the key order as it
// appears in the source document.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object")
	}

	m.keys = nil
	m.values = map[string]json.RawMessage{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		m.Set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
