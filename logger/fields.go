package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldScope     = "scope"
	FieldRoute     = "route"
)

// Fields builds a map[string]any from alternating key-value pairs.
//
//	log.Debug("request sent", logger.Fields("method", "GET", "status", 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}
