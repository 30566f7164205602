package bulb

import (
	"strconv"
	"sync"

	"github.com/nerrad567/sengled-bridge/internal/cloud"
)

// Attribute is a single name/value pair in a device's attribute list.
// Values are string-encoded regardless of their logical type.
type Attribute struct {
	Name  string
	Value string
}

// AttributeStore holds a device's ordered attribute list.
//
// Names are unique within a store; the order from the cloud record is
// preserved. Only existing names can be updated - deltas carrying unknown
// names are ignored for forward compatibility.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Inbound deltas and
//     caller-side reads are serialised per store.
type AttributeStore struct {
	mu    sync.RWMutex
	attrs []Attribute
}

// NewAttributeStore builds a store from a cloud attribute list.
// Duplicate names keep their first occurrence.
func NewAttributeStore(list []cloud.AttributeInfo) *AttributeStore {
	s := &AttributeStore{
		attrs: make([]Attribute, 0, len(list)),
	}

	seen := make(map[string]bool, len(list))
	for _, a := range list {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		s.attrs = append(s.attrs, Attribute{Name: a.Name, Value: a.Value})
	}

	return s
}

// Apply updates an existing attribute in place.
//
// Returns:
//   - bool: true if the name existed and was updated, false if the name
//     is unknown to this store (the delta is ignored)
func (s *AttributeStore) Apply(name, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.attrs {
		if s.attrs[i].Name == name {
			s.attrs[i].Value = value
			return true
		}
	}
	return false
}

// Lookup returns the raw value for a name and whether it exists.
func (s *AttributeStore) Lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// String returns the raw value for a name, or "" when missing.
func (s *AttributeStore) String(name string) string {
	v, _ := s.Lookup(name)
	return v
}

// Int returns the value parsed as base-10, or 0 when missing or unparsable.
func (s *AttributeStore) Int(name string) int {
	v, ok := s.Lookup(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Bool returns true only when the value is exactly "1"; missing names
// and any other value decode to false.
func (s *AttributeStore) Bool(name string) bool {
	v, _ := s.Lookup(name)
	return v == "1"
}

// Len returns the number of attributes in the store.
func (s *AttributeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attrs)
}

// Snapshot returns a copy of the attribute list in stored order.
func (s *AttributeStore) Snapshot() []Attribute {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Attribute, len(s.attrs))
	copy(snapshot, s.attrs)
	return snapshot
}
