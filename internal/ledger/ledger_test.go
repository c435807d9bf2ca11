package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/repository"
	"github.com/shopspring/decimal"
)

var testShares = model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000}

func newTestLedger(t *testing.T) (*ledger.Ledger, *repository.MemoryLedgerStore) {
	t.Helper()
	store := repository.NewMemoryLedgerStore()
	l, err := ledger.New(context.Background(), store, testShares)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l, store
}

func TestDepositCreatesAccount(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	rec, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(100), "initial deposit")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if rec.Seq != 1 || rec.Kind != model.RecordDeposit {
		t.Fatalf("unexpected record: seq=%d kind=%s", rec.Seq, rec.Kind)
	}

	bal, err := l.Balance("acct-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.Principal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected principal 100, got %s", bal.Principal)
	}
	if !bal.AccruedYield.IsZero() {
		t.Fatalf("expected zero yield, got %s", bal.AccruedYield)
	}
}

func TestWithdrawExactPrincipal(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(50), "seed"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := l.Withdraw(ctx, "acct-1", decimal.NewFromInt(50), "full exit"); err != nil {
		t.Fatalf("withdraw exact principal should succeed: %v", err)
	}

	bal, _ := l.Balance("acct-1")
	if !bal.Principal.IsZero() {
		t.Fatalf("expected zero principal, got %s", bal.Principal)
	}

	_, err := l.Withdraw(ctx, "acct-1", decimal.NewFromInt(1), "overdraft")
	if !apperrors.Is(err, apperrors.ErrInsufficientBalance) {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %v", err)
	}
}

func TestWithdrawUnknownAccount(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Withdraw(context.Background(), "nobody", decimal.NewFromInt(1), "x")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMutationValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, "acct-1", decimal.Zero, "zero")
	if !apperrors.Is(err, apperrors.ErrInvalidAmount) {
		t.Fatalf("zero amount: expected INVALID_AMOUNT, got %v", err)
	}

	_, err = l.Deposit(ctx, "acct-1", decimal.NewFromInt(-5), "negative")
	if !apperrors.Is(err, apperrors.ErrInvalidAmount) {
		t.Fatalf("negative amount: expected INVALID_AMOUNT, got %v", err)
	}

	_, err = l.Deposit(ctx, "acct-1", decimal.NewFromInt(5), "   ")
	if !apperrors.Is(err, apperrors.ErrEmptyDescription) {
		t.Fatalf("blank description: expected EMPTY_DESCRIPTION, got %v", err)
	}

	// None of the rejected calls may leave a record behind.
	recs, err := l.History(ctx, "acct-1", 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty history after rejected mutations, got %d records", len(recs))
	}
	if _, err := l.Balance("acct-1"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("rejected deposit must not create the account, got %v", err)
	}
}

func TestHistoryOrderAndPagination(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(int64(i+1)), "deposit"); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}

	page, err := l.History(ctx, "acct-1", 2, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}

	all, err := l.History(ctx, "acct-1", 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Seq != all[i-1].Seq+1 {
			t.Fatalf("seq gap at %d: %d -> %d", i, all[i-1].Seq, all[i].Seq)
		}
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Fatalf("timestamps went backwards at %d", i)
		}
	}
}

func TestStoreFailureLeavesNoEffect(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	store.FailNextApply = errors.New("disk full")
	if _, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(10), "seed"); err == nil {
		t.Fatalf("expected store failure to surface")
	}

	if _, err := l.Balance("acct-1"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("failed deposit must not create the account, got %v", err)
	}

	// Next attempt starts clean at seq 1.
	rec, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(10), "seed")
	if err != nil {
		t.Fatalf("retry deposit: %v", err)
	}
	if rec.Seq != 1 {
		t.Fatalf("expected seq 1 after failed attempt, got %d", rec.Seq)
	}
}

func TestCreditYieldSeparateFromPrincipal(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Deposit(ctx, "acct-1", decimal.NewFromInt(100), "seed"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	rec, err := l.CreditYield(ctx, "acct-1", decimal.NewFromInt(7), "july yield")
	if err != nil {
		t.Fatalf("credit yield: %v", err)
	}
	if rec.Kind != model.RecordYield || rec.Seq != 2 {
		t.Fatalf("unexpected yield record: %+v", rec)
	}

	bal, _ := l.Balance("acct-1")
	if !bal.Principal.Equal(decimal.NewFromInt(100)) || !bal.AccruedYield.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("unexpected balance: principal=%s yield=%s", bal.Principal, bal.AccruedYield)
	}
}

func TestRecoversStateFromStore(t *testing.T) {
	store := repository.NewMemoryLedgerStore()
	ctx := context.Background()

	l1, err := ledger.New(ctx, store, testShares)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if _, err := l1.Deposit(ctx, "acct-1", decimal.NewFromInt(100), "seed"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := l1.CreditYield(ctx, "acct-1", decimal.NewFromInt(3), "yield"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l1.SetShares(ctx, model.ShareConfig{UserBps: 8000, PlatformBps: 1500, ReserveBps: 500}); err != nil {
		t.Fatalf("set shares: %v", err)
	}

	// A fresh instance over the same store picks up balances, the seq
	// counter, and the replaced share config.
	l2, err := ledger.New(ctx, store, testShares)
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	bal, err := l2.Balance("acct-1")
	if err != nil {
		t.Fatalf("balance after reopen: %v", err)
	}
	if !bal.Principal.Equal(decimal.NewFromInt(100)) || !bal.AccruedYield.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected recovered balance: %+v", bal)
	}
	if got := l2.Shares(); got.UserBps != 8000 {
		t.Fatalf("expected recovered shares, got %+v", got)
	}

	rec, err := l2.Deposit(ctx, "acct-1", decimal.NewFromInt(1), "after reopen")
	if err != nil {
		t.Fatalf("deposit after reopen: %v", err)
	}
	if rec.Seq != 3 {
		t.Fatalf("expected seq to continue at 3, got %d", rec.Seq)
	}
}
