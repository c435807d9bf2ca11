package repository

import (
	"context"
	"sync"

	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryLedgerStore keeps everything in process memory. Used when no
// database is configured, and in tests. Records are append-only.
type MemoryLedgerStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	records  map[string][]model.AssetRecord
	shares   *model.ShareConfig
	dust     decimal.Decimal

	// FailNextApply makes the next Apply return this error, for
	// exercising the no-partial-effect path in tests.
	FailNextApply error
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts: make(map[string]model.Account),
		records:  make(map[string][]model.AssetRecord),
		dust:     decimal.Zero,
	}
}

func (s *MemoryLedgerStore) Load(_ context.Context) (*ledger.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &ledger.State{
		Dust:   s.dust,
		Shares: s.shares,
		Seqs:   make(map[string]int64),
	}
	for _, acct := range s.accounts {
		state.Accounts = append(state.Accounts, acct)
	}
	for id, recs := range s.records {
		if len(recs) > 0 {
			state.Seqs[id] = recs[len(recs)-1].Seq
		}
	}
	return state, nil
}

func (s *MemoryLedgerStore) Apply(_ context.Context, b ledger.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextApply != nil {
		err := s.FailNextApply
		s.FailNextApply = nil
		return err
	}

	for _, acct := range b.Accounts {
		s.accounts[acct.ID] = acct
	}
	for _, rec := range b.Records {
		s.records[rec.AccountID] = append(s.records[rec.AccountID], rec)
	}
	s.dust = b.Dust
	return nil
}

func (s *MemoryLedgerStore) SaveShares(_ context.Context, cfg model.ShareConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares = &cfg
	return nil
}

func (s *MemoryLedgerStore) History(_ context.Context, accountID string, limit, offset int) ([]model.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[accountID]
	if offset >= len(recs) {
		return []model.AssetRecord{}, nil
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	out := make([]model.AssetRecord, end-offset)
	copy(out, recs[offset:end])
	return out, nil
}
