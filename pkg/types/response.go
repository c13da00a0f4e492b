package types

import "strings"

// SuccessEnvelope wraps every successful bridge response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the error body the WebView shell renders. RequestID echoes the
// X-Request-Id of the failed call so a user report can be matched to logs.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// BackendError is the storefront's error body. Custom views answer with
// {"error": ...}; framework errors (auth, 404) with {"detail": ...}.
type BackendError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Text returns the first non-blank message, or "" when both are empty.
func (e BackendError) Text() string {
	if msg := strings.TrimSpace(e.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(e.Detail)
}
