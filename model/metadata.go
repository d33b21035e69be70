package model

import (
	"encoding/json"
	"strings"
)

// Metadata is an ordered string mapping parsed from a record header. Keys are
// case-sensitive; setting an existing key replaces its value in place.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates metadata from alternating key, value pairs.
func NewMetadata(pairs ...string) *Metadata {
	ret := &Metadata{values: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		ret.Set(pairs[i], pairs[i+1])
	}
	return ret
}

// Set assigns a value, appending the key when new.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key or an empty string.
func (m *Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m.values[key]
}

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Lookup returns the first non-empty value among key aliases.
func (m *Metadata) Lookup(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(m.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

// Keys returns keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns an unordered copy.
func (m *Metadata) Map() map[string]string {
	ret := make(map[string]string, m.Len())
	for _, key := range m.Keys() {
		ret[key] = m.values[key]
	}
	return ret
}

// MarshalJSON renders metadata as a JSON object.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}
