package anthropic

import (
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/retry"
)

// wrapError attaches a status category to Messages API failures so the
// client can tell a rate limit or an overload (529) from a rejected prompt.
// Transport errors pass through untouched.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var wait time.Duration
	if apiErr.Response != nil {
		wait = retry.RetryAfter(apiErr.Response.Header)
	}
	return ai.NewStatusError("anthropic", apiErr.StatusCode, wait, err)
}
