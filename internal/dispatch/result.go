package dispatch

import (
	"encoding/json"
	"fmt"
)

// Result is the envelope returned for every tool call. It marshals to a flat
// object: {"success": ..., "error"?: ..., "warning"?: ..., ...payload}.
type Result struct {
	Success bool
	Error   string
	Warning string
	Payload map[string]any
}

// OK returns a successful result with a human-readable message.
func OK(message string) Result {
	return Result{Success: true, Payload: map[string]any{"message": message}}
}

// Fail returns a failed result.
func Fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...), Payload: map[string]any{}}
}

// With adds a payload field. Reserved envelope keys cannot be overwritten.
func (r Result) With(key string, value any) Result {
	switch key {
	case "success", "error", "warning":
		return r
	}
	if r.Payload == nil {
		r.Payload = map[string]any{}
	}
	r.Payload[key] = value
	return r
}

// Message returns the payload message, if any.
func (r Result) Message() string {
	s, _ := r.Payload["message"].(string)
	return s
}

func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Payload)+3)
	for k, v := range r.Payload {
		m[k] = v
	}
	m["success"] = r.Success
	if r.Error != "" {
		m["error"] = r.Error
	}
	if r.Warning != "" {
		m["warning"] = r.Warning
	}
	return json.Marshal(m)
}
