package viewmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapview/internal/credentials"
	"github.com/leapstack-labs/leapview/internal/schemachange"
	"github.com/leapstack-labs/leapview/internal/session"
	"github.com/leapstack-labs/leapview/pkg/core"
)

// Reduce applies a to a copy of prev and returns it with the effects the
// action requests. It performs no I/O and never modifies prev.
func Reduce(prev *session.Store, a Action) (*session.Store, []Effect) {
	s := prev.Clone()

	switch a := a.(type) {
	case SelectDataset:
		s.Set(session.Notice, "")
		if a.Dataset == session.Must[string](s, session.SelectedDataset) {
			return s, nil
		}
		s.Set(session.SelectedDataset, a.Dataset)
		s.Set(session.SelectedTable, "")
		s.Set(session.Schema, []string{})
		if a.Dataset == "" {
			return s, nil
		}
		return s, []Effect{ListTables{Dataset: a.Dataset}}

	case SubmitQuery:
		s.Set(session.Notice, "")
		if strings.TrimSpace(a.SQL) == "" {
			setError(s, MsgEmptyQuery, "")
			return s, nil
		}
		s.Set(session.QueryText, a.SQL)
		return s, []Effect{ExecuteQuery{SQL: a.SQL}}

	case SelectTable:
		s.Set(session.Notice, "")
		s.Set(session.SelectedTable, a.Table)

	case SetAxis:
		switch a.Axis {
		case AxisX:
			s.Set(session.ChartX, a.Field)
		case AxisY:
			s.Set(session.ChartY, a.Field)
		}

	case SetChartType:
		s.Set(session.ChartType, a.Type)

	case RequestPlot:
		s.Set(session.PlotReady, true)

	case SaveCredentials:
		s.Set(session.Notice, "")
		creds, err := credentials.Parse(a.Blob)
		switch {
		case errors.Is(err, core.ErrEmptyInput):
			s.Set(session.CredentialsError, MsgEmptyKey)
			return s, nil
		case err != nil:
			s.Set(session.CredentialsError, err.Error())
			return s, nil
		}
		return s, []Effect{Connect{Credentials: creds}}

	case RefreshDatasets:
		s.Set(session.Notice, "")
		if session.Must[core.Client](s, session.Credentials) == nil {
			setError(s, core.ErrNotConnected.Error(), ContextListDatasets)
			return s, nil
		}
		return s, []Effect{ListDatasets{}}

	case QueryCompleted:
		if a.Err != nil {
			s.Set(session.QueryResult, (*core.Table)(nil))
			setEngineError(s, a.Err, ContextRunningQuery)
			return s, nil
		}
		s.Set(session.QueryResult, a.Table)
		clearError(s)
		s.Set(session.Notice, MsgQuerySucceeded)
		if schemachange.Detect(s, a.Table.ColumnNames()) {
			s.Set(session.ChartX, "")
			s.Set(session.ChartY, "")
			s.Set(session.ChartType, "")
			s.Set(session.PlotReady, false)
		}

	case TablesLoaded:
		if a.Dataset != session.Must[string](s, session.SelectedDataset) {
			return s, nil
		}
		if a.Err != nil {
			s.Set(session.Schema, []string{})
			setEngineError(s, a.Err, ContextDatasetSchema)
			return s, nil
		}
		s.Set(session.Schema, append([]string{}, a.Tables...))
		clearErrorIn(s, ContextDatasetSchema)

	case DatasetsLoaded:
		if a.Err != nil {
			setEngineError(s, a.Err, ContextListDatasets)
			return s, nil
		}
		s.Set(session.Datasets, append([]string{}, a.Datasets...))
		clearErrorIn(s, ContextListDatasets)

	case Connected:
		if a.Err != nil {
			s.Set(session.CredentialsError, fmt.Sprintf("%s (%s)", MsgInvalidCredentials, errorMessage(a.Err)))
			return s, nil
		}
		s.Set(session.Credentials, a.Handle)
		s.Set(session.CredentialsError, "")
		s.Set(session.Notice, MsgKeySaved)
		return s, []Effect{ListDatasets{}}
	}

	return s, nil
}

func setError(s *session.Store, msg, context string) {
	s.Set(session.QueryError, msg)
	s.Set(session.ErrorContext, context)
}

// setEngineError records err under its own context label when it carries
// one, falling back to context.
func setEngineError(s *session.Store, err error, context string) {
	var engineErr *core.EngineError
	if errors.As(err, &engineErr) && engineErr.Context != "" {
		context = engineErr.Context
	}
	setError(s, errorMessage(err), context)
}

func clearError(s *session.Store) {
	setError(s, "", "")
}

func clearErrorIn(s *session.Store, context string) {
	if session.Must[string](s, session.ErrorContext) == context {
		clearError(s)
	}
}

// errorMessage returns the message shown for err: the engine's own text for
// engine errors, the error text otherwise.
func errorMessage(err error) string {
	var engineErr *core.EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Message()
	}
	return err.Error()
}
