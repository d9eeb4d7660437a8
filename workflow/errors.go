package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOutput indicates the model answered with no usable text.
	ErrEmptyOutput = errors.New("workflow: empty model output")

	// ErrUnknownStage indicates a configured stage name does not exist.
	ErrUnknownStage = errors.New("workflow: unknown stage")

	// ErrNoDraft indicates a run ended without producing any draft.
	ErrNoDraft = errors.New("workflow: no draft produced")

	// ErrNoJSON indicates a structured answer carried no JSON object.
	ErrNoJSON = errors.New("workflow: no JSON object in model output")
)

// StageError wraps errors from stage execution.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow: stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
