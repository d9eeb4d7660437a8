package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmit(t *testing.T) {
	t.Run("stamps and delivers", func(t *testing.T) {
		ch := NewChannel()
		Emit(ch, Event{Type: StageStart, Stage: "parse"})

		e := <-ch
		assert.Equal(t, StageStart, e.Type)
		assert.Equal(t, "parse", e.Stage)
		assert.False(t, e.Timestamp.IsZero())
	})

	t.Run("drops when full", func(t *testing.T) {
		ch := make(chan Event, 1)
		Emit(ch, Event{Type: RunStart})
		Emit(ch, Event{Type: RunEnd})

		assert.Len(t, ch, 1)
		assert.Equal(t, RunStart, (<-ch).Type)
	})

	t.Run("nil channel", func(t *testing.T) {
		assert.NotPanics(t, func() { Emit(nil, Event{Type: RunStart}) })
	})
}
