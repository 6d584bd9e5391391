package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the pipeline run ID
	FieldRunID = "run_id"

	// FieldOutfitID is the ID of the outfit being enriched
	FieldOutfitID = "outfit_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldProvider is the upstream provider identifier
	FieldProvider = "provider"

	// FieldIntent is the resolved intent kind
	FieldIntent = "intent"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
