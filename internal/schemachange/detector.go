// Package schemachange tells whether a new query result has a different
// column sequence than the last one seen in a session.
package schemachange

import (
	"slices"

	"github.com/leapstack-labs/leapview/internal/session"
)

// Detect compares columns with the sequence recorded under
// session.LastSeenColumns. Order matters. On a change, or when nothing was
// recorded yet, it stores a copy of columns and returns true.
//
// Detect does not reset chart selections; callers decide what a change means.
func Detect(store *session.Store, columns []string) bool {
	last := session.Must[[]string](store, session.LastSeenColumns)
	if last != nil && slices.Equal(last, columns) {
		return false
	}

	seen := append([]string{}, columns...)
	store.Set(session.LastSeenColumns, seen)
	return true
}
