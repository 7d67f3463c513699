package ports

import (
	"context"

	"github.com/aretw0/promptflow/pkg/domain"
)

// TurnHandler is the inbound port: handle one incoming text message for a conversation and user.
// Transports (HTTP, MCP, CLI) depend on this interface rather than on the concrete engine.
type TurnHandler interface {
	HandleTurn(ctx context.Context, turn domain.Turn) (*domain.TurnResult, error)
}
