package google

import (
	"errors"
	"net/http"

	ai "github.com/spetersoncode/maildraft"
	"google.golang.org/genai"
)

// wrapError attaches a status category to Gemini API failures. The genai
// error carries no headers, so there is never a Retry-After hint. Some
// Vertex responses report only the RPC status name, which is mapped back to
// its HTTP code.
func wrapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code := apiErr.Code
	if code == 0 {
		code = rpcStatusCodes[apiErr.Status]
	}
	return ai.NewStatusError("google", code, 0, err)
}

var rpcStatusCodes = map[string]int{
	"INVALID_ARGUMENT":   http.StatusBadRequest,
	"PERMISSION_DENIED":  http.StatusForbidden,
	"NOT_FOUND":          http.StatusNotFound,
	"RESOURCE_EXHAUSTED": http.StatusTooManyRequests,
	"UNAVAILABLE":        http.StatusServiceUnavailable,
	"DEADLINE_EXCEEDED":  http.StatusGatewayTimeout,
	"INTERNAL":           http.StatusInternalServerError,
}
