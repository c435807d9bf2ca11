package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind tags an AssetRecord with the event that produced it.
type RecordKind string

const (
	RecordDeposit    RecordKind = "deposit"
	RecordYield      RecordKind = "yield"
	RecordWithdrawal RecordKind = "withdrawal"
)

// Account tracks a single depositor's custodied balances.
// Principal and AccruedYield are never negative; they only move through
// ledger operations.
type Account struct {
	ID           string          `json:"id"`
	Principal    decimal.Decimal `json:"principal"`
	AccruedYield decimal.Decimal `json:"accrued_yield"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AssetRecord is one entry of an account's append-only history.
// Records are never edited or removed; they are the system of record
// for reconciliation and disputes.
type AssetRecord struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Seq         int64           `json:"seq"` // per-account, strictly increasing
	Kind        RecordKind      `json:"kind"`
	Amount      decimal.Decimal `json:"amount"` // always positive, Kind gives direction
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"` // non-decreasing per account
}

// Balance is a consistent read of one account's two balances.
type Balance struct {
	AccountID    string          `json:"account_id"`
	Principal    decimal.Decimal `json:"principal"`
	AccruedYield decimal.Decimal `json:"accrued_yield"`
}
