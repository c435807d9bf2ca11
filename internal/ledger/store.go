package ledger

import (
	"context"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/shopspring/decimal"
)

// Batch is one atomic set of ledger effects. A store must persist the
// whole batch or none of it; the ledger only mutates its in-memory
// state after Apply returns nil.
type Batch struct {
	Records  []model.AssetRecord
	Accounts []model.Account // post-apply balances for touched accounts
	Dust     decimal.Decimal // post-apply retained dust total
}

// State is what a store recovers on startup.
type State struct {
	Accounts []model.Account
	Shares   *model.ShareConfig // nil when never persisted
	Dust     decimal.Decimal
	Seqs     map[string]int64 // last used seq per account
}

// Store is the durable backing of a ledger instance. The audit trail
// is append-only: implementations must never compact or reorder
// records.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Apply(ctx context.Context, b Batch) error
	SaveShares(ctx context.Context, cfg model.ShareConfig) error
	History(ctx context.Context, accountID string, limit, offset int) ([]model.AssetRecord, error)
}
