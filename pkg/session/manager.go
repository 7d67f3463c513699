package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a conversation.
const DefaultLockTTL = 30 * time.Second

// ErrMissingConversation is returned for turns without a conversation ID.
var ErrMissingConversation = domain.ErrMissingConversation

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Session is an administrative view of one conversation.
type Session struct {
	ConversationID string            `json:"conversation_id"`
	Flow           *domain.FlowState `json:"flow"`
}

var _ ports.TurnHandler = (*Manager)(nil)

// Manager serializes turns per conversation.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	handler  ports.TurnHandler
	flows    ports.FlowStore
	profiles ports.ProfileStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager around a turn handler and the stores it uses.
func NewManager(handler ports.TurnHandler, flows ports.FlowStore, profiles ports.ProfileStore, opts ...Option) *Manager {
	m := &Manager{
		handler:  handler,
		flows:    flows,
		profiles: profiles,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, conversationID string, fn func(context.Context) error) error {
	entry := m.acquire(conversationID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(conversationID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, conversationID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release even if ctx was canceled mid-turn.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", conversationID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// HandleTurn runs one turn under the conversation lock.
// The Manager is itself a ports.TurnHandler, so transports can wrap the engine with it.
func (m *Manager) HandleTurn(ctx context.Context, turn domain.Turn) (*domain.TurnResult, error) {
	if turn.ConversationID == "" {
		return nil, ErrMissingConversation
	}
	var res *domain.TurnResult
	err := m.WithLock(ctx, turn.ConversationID, func(ctx context.Context) error {
		var err error
		res, err = m.handler.HandleTurn(ctx, turn)
		return err
	})
	return res, err
}

// Inspect returns the flow state of a conversation.
func (m *Manager) Inspect(ctx context.Context, conversationID string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, conversationID, func(ctx context.Context) error {
		state, err := m.flows.Load(ctx, conversationID)
		if err != nil {
			return err
		}
		s = &Session{ConversationID: conversationID, Flow: state}
		return nil
	})
	return s, err
}

// Reset removes a conversation's flow state; its next turn starts over.
func (m *Manager) Reset(ctx context.Context, conversationID string) error {
	return m.WithLock(ctx, conversationID, func(ctx context.Context) error {
		return m.flows.Delete(ctx, conversationID)
	})
}

// List returns the known conversation IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.flows.List(ctx)
}

// Profile returns the answers collected for a user.
func (m *Manager) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	return m.profiles.Load(ctx, userID)
}

// DeleteProfile forgets a user's answers.
func (m *Manager) DeleteProfile(ctx context.Context, userID string) error {
	return m.profiles.Delete(ctx, userID)
}

// Profiles returns the known user IDs.
func (m *Manager) Profiles(ctx context.Context) ([]string, error) {
	return m.profiles.List(ctx)
}
