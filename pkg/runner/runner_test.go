package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/runner"
	"github.com/aretw0/promptflow/pkg/session"
)

func newManager(t *testing.T) (*session.Manager, *promptflow.Engine) {
	t.Helper()
	eng, err := promptflow.New()
	require.NoError(t, err)
	return session.NewManager(eng, eng.FlowStore(), eng.ProfileStore()), eng
}

func TestRunner_Chat(t *testing.T) {
	mgr, eng := newManager(t)
	var out bytes.Buffer

	r := runner.NewRunner(mgr,
		runner.WithConversationID("chat-1"),
		runner.WithUserID("ada"),
		runner.WithGreeting("Type anything to begin."),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("hello\nAda\nbanana\n2\n"), &out, runner.WithPrompt(""))),
	)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, strings.Join([]string{
		"[System] Type anything to begin.",
		"Let's get started. What is your name?",
		"Hi Ada.",
		"What is 1 + 1 ?",
		"I'm sorry, I could not interpret that as an correct value. Please enter correct value",
		"I have the entered values as 2.",
		"What is 2 + 5 ?",
	}, "\n")+"\n", out.String())

	profile, err := eng.ProfileStore().Load(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Len())
}

func TestRunner_DefaultsConversationID(t *testing.T) {
	mgr, _ := newManager(t)
	r := runner.NewRunner(mgr, runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))

	assert.NotEmpty(t, r.ConversationID)
	assert.Equal(t, r.ConversationID, r.UserID)
	assert.NoError(t, r.Run(context.Background()))
}

type failingTurns struct{ calls int }

func (f *failingTurns) HandleTurn(context.Context, domain.Turn) (*domain.TurnResult, error) {
	f.calls++
	return nil, errors.New("store down")
}

func TestRunner_TurnFailureContinues(t *testing.T) {
	turns := &failingTurns{}
	var out bytes.Buffer

	r := runner.NewRunner(turns, runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader("\"a\"\n\"b\"\n"), &out)))
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 2, turns.calls)
	assert.Equal(t, 2, strings.Count(out.String(), `"system"`))
}

func TestResponse(t *testing.T) {
	res := runner.NewResponse(&domain.TurnResult{
		Outcome: domain.OutcomeCompleted,
		Flow:    &domain.FlowState{LastQuestionAsked: domain.QuestionNone, Pass: 1},
	})
	assert.True(t, res.Completed)
	assert.Equal(t, 1, res.Pass)
	assert.NotNil(t, res.Replies)
}
