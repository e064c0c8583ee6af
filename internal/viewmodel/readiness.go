package viewmodel

import (
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// Readiness is the chart readiness state of a session.
type Readiness int

// Readiness states, in the order a session moves through them.
const (
	NoResult Readiness = iota
	AxesUnset
	AxesSet
	PlotReady
)

func (r Readiness) String() string {
	switch r {
	case AxesUnset:
		return "axes unset"
	case AxesSet:
		return "axes set"
	case PlotReady:
		return "plot ready"
	default:
		return "no result"
	}
}

// ReadinessOf derives the readiness state from the session. A schema change
// clears the axes, which moves the session back to AxesUnset.
func ReadinessOf(s *session.Store) Readiness {
	result := session.Must[*core.Table](s, session.QueryResult)
	if result == nil || result.Empty() {
		return NoResult
	}
	if session.Must[string](s, session.ChartX) == "" || session.Must[string](s, session.ChartY) == "" {
		return AxesUnset
	}
	if !session.Must[bool](s, session.PlotReady) {
		return AxesSet
	}
	return PlotReady
}
