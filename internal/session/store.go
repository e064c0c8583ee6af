// Package session holds the per-user keyed state the view model reads and
// writes. Every slot must be given a default before it is read.
package session

import (
	"fmt"
	"maps"
	"sort"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// Key names a session slot.
type Key string

// Store is a keyed bag of slot values scoped to one user session.
// It is not safe for concurrent use; the owning workspace serializes access.
type Store struct {
	values map[Key]any
}

// New returns an empty store. Use InitDefaults before the first read.
func New() *Store {
	return &Store{values: make(map[Key]any)}
}

// NewWithDefaults returns a store initialized with Defaults().
func NewWithDefaults() *Store {
	s := New()
	s.InitDefaults(Defaults())
	return s
}

// Get returns the value of key, or a *core.UninitializedKeyError when the
// slot has neither a default nor a stored value.
func (s *Store) Get(key Key) (any, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, &core.UninitializedKeyError{Key: string(key)}
	}
	return v, nil
}

// Set stores value under key. The next Get observes it.
func (s *Store) Set(key Key, value any) {
	s.values[key] = value
}

// Has reports whether key has a value.
func (s *Store) Has(key Key) bool {
	_, ok := s.values[key]
	return ok
}

// InitDefaults sets every key of defaults that is not already present.
// Calling it again with the same map changes nothing.
func (s *Store) InitDefaults(defaults map[Key]any) {
	for k, v := range defaults {
		if _, ok := s.values[k]; !ok {
			s.values[k] = v
		}
	}
}

// Clone returns a shallow copy. Slot values are shared, so callers replace
// values instead of mutating them in place.
func (s *Store) Clone() *Store {
	return &Store{values: maps.Clone(s.values)}
}

// Keys returns the initialized keys, sorted.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Lookup returns the value of key as T. It fails when the key is
// uninitialized or holds a value of another type. A nil value yields the
// zero T.
func Lookup[T any](s *Store, key Key) (T, error) {
	var zero T
	v, err := s.Get(key)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("session key %q holds %T, not %T", key, v, zero)
	}
	return t, nil
}

// Must is Lookup for slots that are always initialized. It panics on a
// missing key or type mismatch, both of which are programming errors.
func Must[T any](s *Store, key Key) T {
	v, err := Lookup[T](s, key)
	if err != nil {
		panic(err)
	}
	return v
}
