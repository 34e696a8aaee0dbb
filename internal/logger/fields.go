package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldUserID is the authenticated caller's user ID
	FieldUserID = "user_id"

	// FieldCreationID is the creation row ID
	FieldCreationID = "creation_id"

	// FieldKind is the creation kind being generated
	FieldKind = "kind"
)

// Metric fields, attached per log entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldStatus is the HTTP or operation status
	FieldStatus = "status"

	// FieldSize is the data size in bytes
	FieldSize = "size"
)
