package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/agui"
	"github.com/spetersoncode/maildraft/client"
	"github.com/spetersoncode/maildraft/metrics"
	"github.com/spetersoncode/maildraft/store"
	"github.com/spetersoncode/maildraft/workflow"
)

const sarahPrompt = "Follow up with Sarah about the Q3 report deadline"

type downLLM struct{}

func (downLLM) Generate(context.Context, ai.GenerateRequest) (*ai.Generation, error) {
	return nil, fmt.Errorf("%w: connection refused", ai.ErrUnavailable)
}

type fixture struct {
	handler  http.Handler
	history  *store.MemoryHistory
	profiles *store.MemoryProfiles
	usage    *metrics.Accumulator
}

func newFixture(t *testing.T, llm ai.Generator) *fixture {
	t.Helper()
	quiet := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	prom := metrics.NewPrometheus(reg)

	f := &fixture{
		history:  store.NewMemoryHistory(0),
		profiles: store.NewMemoryProfiles(),
		usage:    metrics.New(metrics.WithObserver(prom)),
	}
	orch := workflow.New(llm,
		workflow.WithHistory(f.history),
		workflow.WithProfiles(f.profiles),
		workflow.WithUsage(f.usage),
		workflow.WithObserver(prom),
		workflow.WithLogger(quiet),
	)
	srv := NewServer(NewService(orch, workflow.NewRouter(orch)),
		WithHistory(f.history),
		WithProfiles(f.profiles),
		WithUsage(f.usage),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		WithLogger(quiet),
		WithVersion("test"),
	)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, client.NewStub())

	rec := f.do(t, http.MethodPost, "/api/generate", map[string]any{
		"prompt":   sarahPrompt,
		"use_stub": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	raw := decode[map[string]any](t, rec)
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"draft", "word_count", "tone", "intent", "metadata",
		"review_notes", "metrics", "context_mode", "saved",
	}, keys)

	resp := decode[GenerateResponse](t, rec)
	assert.Contains(t, resp.Draft, "Dear Sarah,")
	assert.Equal(t, "formal", resp.Tone)
	assert.Equal(t, "follow_up", resp.Intent)
	assert.Equal(t, "fresh", resp.ContextMode)
	assert.Equal(t, ai.WordCount(resp.Draft), resp.WordCount)
	assert.True(t, resp.Saved)
	assert.Equal(t, "stub", resp.Metadata[workflow.MetaSource])
	assert.Equal(t, 1, f.history.Len(DefaultUserID))
}

func TestGenerateSecondRunIsContextual(t *testing.T) {
	f := newFixture(t, client.NewStub())
	body := map[string]any{"prompt": sarahPrompt, "user_id": "u1", "use_stub": true}

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/generate", body).Code)
	resp := decode[GenerateResponse](t, f.do(t, http.MethodPost, "/api/generate", body))
	assert.Equal(t, "contextual", resp.ContextMode)

	body["reset_context"] = true
	resp = decode[GenerateResponse](t, f.do(t, http.MethodPost, "/api/generate", body))
	assert.Equal(t, "fresh", resp.ContextMode)
}

func TestGenerateBadRequests(t *testing.T) {
	f := newFixture(t, client.NewStub())

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"blank prompt", map[string]any{"prompt": "   ", "use_stub": true}},
		{"unknown tone", map[string]any{"prompt": sarahPrompt, "tone": "sarcastic"}},
		{"length too short", map[string]any{"prompt": sarahPrompt, "length_preference": 10}},
		{"length too long", map[string]any{"prompt": sarahPrompt, "length_preference": 5000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
	assert.Zero(t, f.usage.Summary().LLMCalls)
}

func TestGenerateServiceFailureReturnsFallback(t *testing.T) {
	f := newFixture(t, downLLM{})

	rec := f.do(t, http.MethodPost, "/api/generate", map[string]any{"prompt": sarahPrompt})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.NotEmpty(t, resp.Error)
	assert.Contains(t, resp.Draft, "Sarah")
	assert.Equal(t, "stub", resp.Metadata["source"])
	assert.Zero(t, f.history.Len(DefaultUserID))
}

func TestRegenerate(t *testing.T) {
	f := newFixture(t, client.NewStub())
	gen := decode[GenerateResponse](t, f.do(t, http.MethodPost, "/api/generate", map[string]any{
		"prompt":   sarahPrompt,
		"use_stub": true,
	}))

	rec := f.do(t, http.MethodPost, "/api/regenerate", map[string]any{
		"original_draft": gen.Draft,
		"edited_draft":   gen.Draft,
		"tone":           "formal",
		"intent":         gen.Intent,
		"user_id":        DefaultUserID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	raw := decode[map[string]any](t, rec)
	assert.Len(t, raw, 3)
	resp := decode[RegenerateResponse](t, rec)
	assert.Equal(t, "lightweight", resp.WorkflowType)
	assert.Zero(t, resp.DiffRatio)
	assert.NotEmpty(t, resp.FinalDraft)
}

func TestRegenerateRejectsEmptyEdit(t *testing.T) {
	f := newFixture(t, client.NewStub())
	rec := f.do(t, http.MethodPost, "/api/regenerate", map[string]any{
		"original_draft": "Dear Sarah,",
		"edited_draft":   "  ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, client.NewStub())
	for range 3 {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/generate", map[string]any{
			"prompt": sarahPrompt, "user_id": "u1", "use_stub": true,
		}).Code)
	}

	resp := decode[HistoryResponse](t, f.do(t, http.MethodGet, "/api/history?user_id=u1&limit=2", nil))
	assert.Equal(t, "u1", resp.UserID)
	assert.Len(t, resp.Entries, 2)

	empty := decode[HistoryResponse](t, f.do(t, http.MethodGet, "/api/history?user_id=nobody", nil))
	assert.NotNil(t, empty.Entries)
	assert.Empty(t, empty.Entries)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/history?limit=zero", nil).Code)
}

func TestProfile(t *testing.T) {
	f := newFixture(t, client.NewStub())

	rec := f.do(t, http.MethodPut, "/api/profile?user_id=u1", map[string]any{
		"name":    "Alex Chen",
		"company": "Acme",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alex Chen", decode[ai.Profile](t, rec).Name)

	got := decode[ai.Profile](t, f.do(t, http.MethodGet, "/api/profile?user_id=u1", nil))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Acme", got.Company)

	gen := decode[GenerateResponse](t, f.do(t, http.MethodPost, "/api/generate", map[string]any{
		"prompt": sarahPrompt, "user_id": "u1", "use_stub": true,
	}))
	assert.Contains(t, gen.Draft, "Alex Chen")
}

func TestUsage(t *testing.T) {
	f := newFixture(t, client.NewStub())
	gen := decode[GenerateResponse](t, f.do(t, http.MethodPost, "/api/generate", map[string]any{
		"prompt": sarahPrompt, "use_stub": true,
	}))

	usage := decode[ai.MetricsSummary](t, f.do(t, http.MethodGet, "/api/usage", nil))
	assert.Equal(t, gen.Metrics.LLMCalls, usage.LLMCalls)
	assert.Positive(t, usage.LLMCalls)
}

func TestRender(t *testing.T) {
	f := newFixture(t, client.NewStub())
	rec := f.do(t, http.MethodPost, "/api/render", RenderRequest{Draft: "Dear Sarah,\n\nThanks.\n\nBest regards,\nAlex"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[RenderResponse](t, rec).HTML, "<p>Dear Sarah,</p>")
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, client.NewStub())

	health := decode[HealthResponse](t, f.do(t, http.MethodGet, "/health", nil))
	assert.Equal(t, HealthResponse{Status: "ok", AppName: "maildraft", Version: "test"}, health)

	f.do(t, http.MethodPost, "/api/generate", map[string]any{"prompt": sarahPrompt, "use_stub": true})
	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maildraft_runs_total")
	assert.Contains(t, rec.Body.String(), "maildraft_llm_calls_total")
}

func TestGenerateStream(t *testing.T) {
	f := newFixture(t, client.NewStub())
	prompt := sarahPrompt
	input := agui.RunAgentInput{
		ThreadID: "t1",
		RunID:    "r1",
		Messages: []events.Message{{ID: "m1", Role: agui.RoleUser, Content: &prompt}},
		State:    map[string]any{"use_stub": true},
	}

	rec := f.do(t, http.MethodPost, "/api/generate/stream", input)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: "+string(events.EventTypeRunStarted))
	assert.Contains(t, body, "event: "+string(events.EventTypeStepStarted))
	assert.Contains(t, body, "event: "+string(events.EventTypeStateSnapshot))
	assert.Contains(t, body, "event: "+string(events.EventTypeTextMessageContent))
	assert.Contains(t, body, "event: "+string(events.EventTypeRunFinished))
	assert.Contains(t, body, "Dear Sarah,")
}

func TestGenerateStreamRequiresMessage(t *testing.T) {
	f := newFixture(t, client.NewStub())
	rec := f.do(t, http.MethodPost, "/api/generate/stream", agui.RunAgentInput{ThreadID: "t1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, client.NewStub())
	rec := f.do(t, http.MethodOptions, "/api/generate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
