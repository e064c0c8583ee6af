package viewmodel

import "github.com/leapstack-labs/leapview/pkg/core"

// Effect is a request for I/O emitted by Reduce.
type Effect interface {
	effectName() string
}

type (
	// ExecuteQuery runs SQL on the connected client.
	ExecuteQuery struct{ SQL string }

	// ListTables lists the tables of a dataset.
	ListTables struct{ Dataset string }

	// ListDatasets lists the datasets of the configured scope.
	ListDatasets struct{}

	// Connect exchanges parsed credentials for a client. The runner zeroes
	// Credentials once the exchange is over.
	Connect struct{ Credentials *core.Credentials }
)

func (ExecuteQuery) effectName() string { return "execute_query" }
func (ListTables) effectName() string   { return "list_tables" }
func (ListDatasets) effectName() string { return "list_datasets" }
func (Connect) effectName() string      { return "connect" }
