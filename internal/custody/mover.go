package custody

import (
	"context"

	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

// Mover is the external custody/transfer layer. The ledger records
// balances; actually moving value between custody and a venue is
// delegated here, outside the ledger's invariants.
type Mover interface {
	MoveValue(ctx context.Context, from, to string, amount decimal.Decimal) error
}

// LogMover acknowledges every transfer and logs it. Used when no real
// custody backend is wired, and in tests.
type LogMover struct{}

func NewLogMover() *LogMover {
	return &LogMover{}
}

func (m *LogMover) MoveValue(ctx context.Context, from, to string, amount decimal.Decimal) error {
	logger.Info("custody transfer", "from", from, "to", to, "amount", amount.String())
	return nil
}
