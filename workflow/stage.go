package workflow

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

// Stage names, in default pipeline order.
const (
	StageParse        = "parse"
	StageDetectIntent = "detect_intent"
	StageWriteDraft   = "write_draft"
	StageStyleTone    = "style_tone"
	StagePersonalize  = "personalize"
	StageReview       = "review"
	StageRefine       = "refine"
)

// DefaultStageOrder lists the stage names in the order they run.
var DefaultStageOrder = []string{
	StageParse, StageDetectIntent, StageWriteDraft, StageStyleTone,
	StagePersonalize, StageReview, StageRefine,
}

// Stage is one transformation of the pipeline. A stage reads the fields it
// needs, may call the model at most once, and returns the updated state.
// It must not clear fields written by other stages.
type Stage interface {
	Name() string
	Transform(ctx context.Context, llm ai.Generator, s State) (State, error)
}

// fatal is implemented by stages whose failure ends the run.
type fatal interface {
	Fatal() bool
}

func isFatal(st Stage) bool {
	f, ok := st.(fatal)
	return ok && f.Fatal()
}

// DefaultStages returns the seven stages in their default order.
func DefaultStages() []Stage {
	stages, _ := StagesByName(DefaultStageOrder, DefaultRefineMinRatio)
	return stages
}

// StagesByName builds stages in the given order. refineMinRatio configures
// the Refine safety threshold; zero uses the default.
func StagesByName(names []string, refineMinRatio float64) ([]Stage, error) {
	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case StageParse:
			stages = append(stages, Parse{})
		case StageDetectIntent:
			stages = append(stages, DetectIntent{})
		case StageWriteDraft:
			stages = append(stages, WriteDraft{})
		case StageStyleTone:
			stages = append(stages, StyleTone{})
		case StagePersonalize:
			stages = append(stages, Personalize{})
		case StageReview:
			stages = append(stages, Review{})
		case StageRefine:
			stages = append(stages, Refine{MinRatio: refineMinRatio})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
	}
	return stages, nil
}

// generate issues a stage's model call and returns the trimmed text.
func generate(ctx context.Context, llm ai.Generator, req ai.GenerateRequest) (string, error) {
	gen, err := llm.Generate(ctx, req)
	if err != nil {
		return "", &StageError{Stage: req.Task, Err: err}
	}
	text := strings.TrimSpace(gen.Text)
	if text == "" {
		return "", &StageError{Stage: req.Task, Err: ErrEmptyOutput}
	}
	return text, nil
}

func temperature(t float64) *float64 { return &t }
