package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/promptflow/internal/logging"
)

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())

	ch, cancel := sm.Subscribe("c1")
	assert.Equal(t, 1, sm.Subscribers("c1"))

	sm.Broadcast("c1", "hello")
	sm.Broadcast("c2", "nobody listens")
	assert.Equal(t, "hello", <-ch)

	// A full buffer drops instead of blocking.
	for i := 0; i < 20; i++ {
		sm.Broadcast("c1", "flood")
	}
	assert.Len(t, ch, 10)

	cancel()
	assert.Equal(t, 0, sm.Subscribers("c1"))
}
