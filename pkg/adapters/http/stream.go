package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans turn results out to SSE subscribers of a conversation.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ConversationID -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for conversationID.
// The returned function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(conversationID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[conversationID]; !ok {
		sm.subscribers[conversationID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[conversationID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[conversationID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, conversationID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of conversationID without blocking.
func (sm *StreamManager) Broadcast(conversationID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[conversationID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "conversation_id", conversationID)
		}
	}
}

// Subscribers returns the number of open streams for conversationID.
func (sm *StreamManager) Subscribers(conversationID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[conversationID])
}
