package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

const DefaultHistoryPageMax = 500

// YieldCredit is one accrued-yield increment staged by the
// distribution engine.
type YieldCredit struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// Ledger is the single sequential authority over account balances.
// Every mutation runs under the writer lock: validate, persist through
// the store, then apply in memory. A store failure surfaces before any
// in-memory effect, so operations are all-or-nothing. Reads share the
// lock and always observe a committed state.
type Ledger struct {
	mu       sync.RWMutex
	store    Store
	accounts map[string]*model.Account
	seqs     map[string]int64
	lastTS   map[string]time.Time
	shares   model.ShareConfig
	dust     decimal.Decimal
	pageMax  int
	now      func() time.Time
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

func WithHistoryPageMax(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.pageMax = n
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New builds a ledger over the given store, recovering any persisted
// state. defaultShares is used only when the store holds no config yet.
func New(ctx context.Context, store Store, defaultShares model.ShareConfig, opts ...Option) (*Ledger, error) {
	if err := ValidateShares(defaultShares); err != nil {
		return nil, err
	}

	l := &Ledger{
		store:    store,
		accounts: make(map[string]*model.Account),
		seqs:     make(map[string]int64),
		lastTS:   make(map[string]time.Time),
		shares:   defaultShares,
		dust:     decimal.Zero,
		pageMax:  DefaultHistoryPageMax,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, "load ledger state", err)
	}
	if state != nil {
		for i := range state.Accounts {
			acct := state.Accounts[i]
			l.accounts[acct.ID] = &acct
		}
		for id, seq := range state.Seqs {
			l.seqs[id] = seq
		}
		if state.Shares != nil {
			l.shares = *state.Shares
		}
		if !state.Dust.IsZero() {
			l.dust = state.Dust
		}
	}
	return l, nil
}

// Deposit increases the account's principal, creating the account on
// first use. Returns the appended record.
func (l *Ledger) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (model.AssetRecord, error) {
	if err := validateMutation(accountID, amount, desc); err != nil {
		return model.AssetRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	post := l.postAccount(accountID)
	post.Principal = post.Principal.Add(amount)
	rec := l.nextRecord(accountID, model.RecordDeposit, amount, desc)

	if err := l.store.Apply(ctx, Batch{
		Records:  []model.AssetRecord{rec},
		Accounts: []model.Account{post},
		Dust:     l.dust,
	}); err != nil {
		return model.AssetRecord{}, apperrors.New(apperrors.ErrInternal, "persist deposit", err)
	}

	l.commit([]model.Account{post}, []model.AssetRecord{rec})
	return rec, nil
}

// CreditYield increases the account's accrued yield. It performs no
// share splitting; that is the distribution engine's job.
func (l *Ledger) CreditYield(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (model.AssetRecord, error) {
	recs, err := l.ApplyDistribution(ctx, func(model.ShareConfig) ([]YieldCredit, decimal.Decimal, error) {
		return []YieldCredit{{AccountID: accountID, Amount: amount, Description: desc}}, decimal.Zero, nil
	})
	if err != nil {
		return model.AssetRecord{}, err
	}
	return recs[0], nil
}

// Withdraw decreases the account's principal. Withdrawing exactly the
// principal is allowed and leaves it at zero.
func (l *Ledger) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (model.AssetRecord, error) {
	if err := validateMutation(accountID, amount, desc); err != nil {
		return model.AssetRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[accountID]
	if !ok {
		return model.AssetRecord{}, apperrors.Newf(apperrors.ErrNotFound, "account %s not found", accountID)
	}
	if amount.GreaterThan(acct.Principal) {
		return model.AssetRecord{}, apperrors.Newf(apperrors.ErrInsufficientBalance,
			"withdraw %s exceeds principal %s", amount, acct.Principal)
	}

	post := *acct
	post.Principal = post.Principal.Sub(amount)
	rec := l.nextRecord(accountID, model.RecordWithdrawal, amount, desc)

	if err := l.store.Apply(ctx, Batch{
		Records:  []model.AssetRecord{rec},
		Accounts: []model.Account{post},
		Dust:     l.dust,
	}); err != nil {
		return model.AssetRecord{}, apperrors.New(apperrors.ErrInternal, "persist withdrawal", err)
	}

	l.commit([]model.Account{post}, []model.AssetRecord{rec})
	return rec, nil
}

// ApplyDistribution runs plan against the current share config inside
// the writer critical section and applies the staged credits plus the
// dust delta as one atomic batch. Either every credit lands or none do.
func (l *Ledger) ApplyDistribution(ctx context.Context, plan func(cfg model.ShareConfig) ([]YieldCredit, decimal.Decimal, error)) ([]model.AssetRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	credits, dustDelta, err := plan(l.shares)
	if err != nil {
		return nil, err
	}
	if dustDelta.IsNegative() {
		return nil, apperrors.NewInvalidAmount("dust delta must not be negative")
	}
	for _, cr := range credits {
		if err := validateMutation(cr.AccountID, cr.Amount, cr.Description); err != nil {
			return nil, err
		}
	}

	// Stage post-balances; multiple credits may touch one account.
	posts := make(map[string]*model.Account, len(credits))
	records := make([]model.AssetRecord, 0, len(credits))
	for _, cr := range credits {
		post, ok := posts[cr.AccountID]
		if !ok {
			p := l.postAccount(cr.AccountID)
			post = &p
			posts[cr.AccountID] = post
		}
		post.AccruedYield = post.AccruedYield.Add(cr.Amount)
		records = append(records, l.nextRecordAfter(cr.AccountID, records, model.RecordYield, cr.Amount, cr.Description))
	}

	accounts := make([]model.Account, 0, len(posts))
	for _, post := range posts {
		accounts = append(accounts, *post)
	}
	newDust := l.dust.Add(dustDelta)

	if err := l.store.Apply(ctx, Batch{
		Records:  records,
		Accounts: accounts,
		Dust:     newDust,
	}); err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, "persist distribution", err)
	}

	l.commit(accounts, records)
	l.dust = newDust
	return records, nil
}

// Balance returns a consistent snapshot of one account's balances.
func (l *Ledger) Balance(accountID string) (model.Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[accountID]
	if !ok {
		return model.Balance{}, apperrors.Newf(apperrors.ErrNotFound, "account %s not found", accountID)
	}
	return model.Balance{
		AccountID:    acct.ID,
		Principal:    acct.Principal,
		AccruedYield: acct.AccruedYield,
	}, nil
}

// History returns a page of the account's append-only record sequence,
// ordered by seq ascending.
func (l *Ledger) History(ctx context.Context, accountID string, limit, offset int) ([]model.AssetRecord, error) {
	if limit <= 0 || limit > l.pageMax {
		limit = l.pageMax
	}
	if offset < 0 {
		offset = 0
	}
	recs, err := l.store.History(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, "read history", err)
	}
	return recs, nil
}

// Dust returns the running total of yield retained unassigned.
func (l *Ledger) Dust() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dust
}

// Accounts lists current account IDs, for reporting.
func (l *Ledger) Accounts() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	return ids
}

func validateMutation(accountID string, amount decimal.Decimal, desc string) error {
	if strings.TrimSpace(accountID) == "" {
		return apperrors.NewInvalidRequest("account id is required")
	}
	if !amount.IsPositive() {
		return apperrors.Newf(apperrors.ErrInvalidAmount, "amount %s must be positive", amount)
	}
	if strings.TrimSpace(desc) == "" {
		return apperrors.New(apperrors.ErrEmptyDescription, "description is required", nil)
	}
	return nil
}

// postAccount copies the current account state, creating a fresh one
// for unknown IDs (lazy creation on first deposit or credit).
func (l *Ledger) postAccount(accountID string) model.Account {
	if acct, ok := l.accounts[accountID]; ok {
		return *acct
	}
	return model.Account{
		ID:           accountID,
		Principal:    decimal.Zero,
		AccruedYield: decimal.Zero,
		CreatedAt:    l.now().UTC(),
	}
}

func (l *Ledger) nextRecord(accountID string, kind model.RecordKind, amount decimal.Decimal, desc string) model.AssetRecord {
	return l.nextRecordAfter(accountID, nil, kind, amount, desc)
}

// nextRecordAfter assigns seq and a non-decreasing timestamp, counting
// records already staged in the same batch.
func (l *Ledger) nextRecordAfter(accountID string, staged []model.AssetRecord, kind model.RecordKind, amount decimal.Decimal, desc string) model.AssetRecord {
	seq := l.seqs[accountID]
	for _, rec := range staged {
		if rec.AccountID == accountID && rec.Seq > seq {
			seq = rec.Seq
		}
	}
	ts := l.now().UTC()
	if last, ok := l.lastTS[accountID]; ok && ts.Before(last) {
		ts = last
	}
	return model.AssetRecord{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Seq:         seq + 1,
		Kind:        kind,
		Amount:      amount,
		Description: desc,
		CreatedAt:   ts,
	}
}

func (l *Ledger) commit(accounts []model.Account, records []model.AssetRecord) {
	for i := range accounts {
		acct := accounts[i]
		l.accounts[acct.ID] = &acct
	}
	for _, rec := range records {
		if rec.Seq > l.seqs[rec.AccountID] {
			l.seqs[rec.AccountID] = rec.Seq
		}
		if rec.CreatedAt.After(l.lastTS[rec.AccountID]) {
			l.lastTS[rec.AccountID] = rec.CreatedAt
		}
	}
}
