package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/retry"
)

// wrapError attaches a status category to Chat Completions failures.
// A deadline hit inside the SDK surfaces as ai.ErrTimeout.
func wrapError(err error) error {
	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		var wait time.Duration
		if apiErr.Response != nil {
			wait = retry.RetryAfter(apiErr.Response.Header)
		}
		return ai.NewStatusError("openai", apiErr.StatusCode, wait, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("openai: %w: %w", ai.ErrTimeout, err)
	default:
		return err
	}
}
