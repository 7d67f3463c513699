package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/promptflow/pkg/adapters/memory"
	"github.com/aretw0/promptflow/pkg/domain"
)

type nopHandler struct{}

func (nopHandler) HandleTurn(context.Context, domain.Turn) (*domain.TurnResult, error) {
	return &domain.TurnResult{}, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopHandler{}, memory.NewFlowStore(), memory.NewProfileStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("conv-%d", i)
		_, _ = mgr.HandleTurn(ctx, domain.Turn{ConversationID: id, Text: "hi"})
		_ = mgr.Reset(ctx, id)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Reset", lockCount)
	}
}
