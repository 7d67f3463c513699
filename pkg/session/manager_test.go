package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/pkg/adapters/memory"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
	"github.com/aretw0/promptflow/pkg/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// slowCounter does a read-modify-write with simulated IO, which loses updates
// unless turns for the same conversation are serialized.
type slowCounter struct {
	flows ports.FlowStore
}

func (h *slowCounter) HandleTurn(ctx context.Context, turn domain.Turn) (*domain.TurnResult, error) {
	state, err := h.flows.Load(ctx, turn.ConversationID)
	if errors.Is(err, domain.ErrNotFound) {
		state = domain.NewFlowState()
	} else if err != nil {
		return nil, err
	}
	time.Sleep(2 * time.Millisecond) // Simulate IO
	state.Pass++
	if err := h.flows.Save(ctx, turn.ConversationID, state); err != nil {
		return nil, err
	}
	return &domain.TurnResult{Flow: state}, nil
}

func TestManager_SerializesTurns(t *testing.T) {
	flows := memory.NewFlowStore()
	mgr := session.NewManager(&slowCounter{flows: flows}, flows, memory.NewProfileStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	turns := 20
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.HandleTurn(ctx, domain.Turn{ConversationID: "race", UserID: "u"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := flows.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, turns, state.Pass, "no update may be lost")
}

func TestManager_RequiresConversation(t *testing.T) {
	mgr := session.NewManager(&slowCounter{flows: memory.NewFlowStore()}, memory.NewFlowStore(), memory.NewProfileStore())
	_, err := mgr.HandleTurn(context.Background(), domain.Turn{Text: "hi"})
	assert.ErrorIs(t, err, session.ErrMissingConversation)
}

func TestManager_Admin(t *testing.T) {
	flows, profiles := memory.NewFlowStore(), memory.NewProfileStore()
	mgr := session.NewManager(&slowCounter{flows: flows}, flows, profiles)
	ctx := context.Background()

	_, err := mgr.HandleTurn(ctx, domain.Turn{ConversationID: "c1"})
	require.NoError(t, err)

	p := domain.NewProfile()
	require.NoError(t, p.Set("Name", domain.TextValue("Ada")))
	require.NoError(t, profiles.Save(ctx, "u1", p))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	s, err := mgr.Inspect(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Flow.Pass)

	got, err := mgr.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Has("Name"))

	users, err := mgr.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	require.NoError(t, mgr.Reset(ctx, "c1"))
	_, err = mgr.Inspect(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mgr.DeleteProfile(ctx, "u1"))
	_, err = mgr.Profile(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type recordingLocker struct {
	locked, unlocked atomic.Int32
	ttl              time.Duration
	err              error
}

func (l *recordingLocker) Lock(_ context.Context, _ string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.ttl = ttl
	l.locked.Add(1)
	return func(context.Context) error {
		l.unlocked.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	flows := memory.NewFlowStore()
	mgr := session.NewManager(&slowCounter{flows: flows}, flows, memory.NewProfileStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)

	_, err := mgr.HandleTurn(context.Background(), domain.Turn{ConversationID: "c"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), locker.locked.Load())
	assert.Equal(t, int32(1), locker.unlocked.Load())
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.err = errors.New("redis down")
	_, err = mgr.HandleTurn(context.Background(), domain.Turn{ConversationID: "c"})
	assert.ErrorIs(t, err, locker.err)
}

func newEngineManager(t *testing.T) *session.Manager {
	t.Helper()
	flows, profiles := memory.NewFlowStore(), memory.NewProfileStore()
	eng, err := promptflow.New(promptflow.WithFlowStore(flows), promptflow.WithProfileStore(profiles))
	require.NoError(t, err)
	return session.NewManager(eng, flows, profiles)
}

func say(t *testing.T, mgr *session.Manager, conversation, user, text string) *domain.TurnResult {
	t.Helper()
	res, err := mgr.HandleTurn(context.Background(), domain.Turn{ConversationID: conversation, UserID: user, Text: text})
	require.NoError(t, err, "turn %q", text)
	return res
}

func TestManager_ResetStartsFreshPass(t *testing.T) {
	mgr := newEngineManager(t)
	ctx := context.Background()

	say(t, mgr, "c1", "u1", "hi")
	say(t, mgr, "c1", "u1", "Ada")
	require.NoError(t, mgr.Reset(ctx, "c1"))

	res := say(t, mgr, "c1", "u1", "hi")
	assert.Equal(t, 0, res.Profile.Len(), "a new pass starts with an empty profile")

	res = say(t, mgr, "c1", "u1", "Bob")
	assert.Equal(t, domain.OutcomeAccepted, res.Outcome)
	assert.Equal(t, "Hi Bob.", res.Replies[0].Text)

	profile, err := mgr.Profile(ctx, "u1")
	require.NoError(t, err)
	name, _ := profile.Get("Name")
	assert.Equal(t, "Bob", name.Text)
}

func TestManager_SecondConversationForSameUser(t *testing.T) {
	mgr := newEngineManager(t)

	say(t, mgr, "a", "u1", "hi")
	say(t, mgr, "a", "u1", "Ada")

	say(t, mgr, "b", "u1", "hi")
	res := say(t, mgr, "b", "u1", "Ada")
	assert.Equal(t, domain.OutcomeAccepted, res.Outcome)
}
