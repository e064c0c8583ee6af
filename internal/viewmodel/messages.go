package viewmodel

// User-facing messages.
const (
	MsgEmptyQuery         = "Please enter a query"
	MsgQuerySucceeded     = "Query executed successfully"
	MsgQueryFailed        = "Query failed. Please check your SQL."
	MsgKeySaved           = "Key saved successfully"
	MsgEmptyKey           = "No key provided. Please paste your service account key."
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgGenericError       = "Something went wrong while processing your request."
	MsgChartNeedsResult   = "Run a SQL query to enable charting"
	MsgNoPlotData         = "No data available to plot. Please run a valid SQL query."
	MsgChartNotReady      = "Choose the X and Y fields, then press Plot."
	MsgInvalidFields      = "Selected fields are not valid. Columns: "
)

// Error context labels shown with the generic error panel.
const (
	ContextRunningQuery  = "Running SQL query"
	ContextDatasetSchema = "Loading dataset schema"
	ContextListDatasets  = "Listing datasets"
	ContextTableSchema   = "Loading table schema"
)

// ErrorHints are the troubleshooting hints of the generic error panel.
var ErrorHints = []string{
	"Temporary connection issues",
	"Missing or invalid credentials",
	"Insufficient permissions",
	"An unexpected warehouse response",
}
