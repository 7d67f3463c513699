package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnTurnEnd(ctx, &domain.TurnEvent{Question: "Q1", Outcome: domain.OutcomeAccepted, Duration: time.Millisecond})
	hooks.OnTurnEnd(ctx, &domain.TurnEvent{Question: "Q1", Outcome: domain.OutcomeAccepted})
	hooks.OnRejection(ctx, &domain.TurnEvent{Question: "Q2", Reason: "wrong_answer"})
	hooks.OnCompletion(ctx, &domain.TurnEvent{})
	hooks.OnTurnEnd(ctx, &domain.TurnEvent{Err: errors.New("store down")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues("Q1", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("Q2", "wrong_answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	m.Completions.Inc()

	rec := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "promptflow_completions_total 1")
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnTurnEnd: func(context.Context, *domain.TurnEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnTurnEnd:    func(context.Context, *domain.TurnEvent) { calls = append(calls, "b") },
		OnCompletion: func(context.Context, *domain.TurnEvent) { calls = append(calls, "done") },
	}

	hooks := observability.Combine(a, b)
	hooks.OnTurnEnd(context.Background(), &domain.TurnEvent{})
	hooks.OnCompletion(context.Background(), &domain.TurnEvent{})

	assert.Equal(t, []string{"a", "b", "done"}, calls)
	assert.Nil(t, hooks.OnTurnStart)
	assert.Nil(t, hooks.OnRejection)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LogHooks(logger)

	hooks.OnRejection(context.Background(), &domain.TurnEvent{ConversationID: "c1", Question: "Q1", Reason: "uninterpretable"})
	hooks.OnTurnEnd(context.Background(), &domain.TurnEvent{ConversationID: "c1", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "answer_rejected")
	assert.Contains(t, out, "reason=uninterpretable")
	assert.True(t, strings.Contains(out, "turn_failed"))
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
}
