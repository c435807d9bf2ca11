package ledger_test

import (
	"context"
	"testing"

	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
)

func TestSetSharesReplacesWholeTriple(t *testing.T) {
	l, _ := newTestLedger(t)

	next := model.ShareConfig{UserBps: 9000, PlatformBps: 500, ReserveBps: 500}
	if err := l.SetShares(context.Background(), next); err != nil {
		t.Fatalf("set shares: %v", err)
	}
	if got := l.Shares(); got != next {
		t.Fatalf("expected %+v, got %+v", next, got)
	}
}

func TestSetSharesOverflowKeepsPriorConfig(t *testing.T) {
	l, _ := newTestLedger(t)

	err := l.SetShares(context.Background(), model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 2000})
	if !apperrors.Is(err, apperrors.ErrShareOverflow) {
		t.Fatalf("expected SHARE_OVERFLOW, got %v", err)
	}
	if got := l.Shares(); got != testShares {
		t.Fatalf("prior config must survive a rejected update, got %+v", got)
	}
}

func TestSetSharesOutOfRange(t *testing.T) {
	l, _ := newTestLedger(t)

	cases := []model.ShareConfig{
		{UserBps: -1, PlatformBps: 3000, ReserveBps: 1000},
		{UserBps: 10001, PlatformBps: 0, ReserveBps: 0},
		{UserBps: 5000, PlatformBps: -200, ReserveBps: 0},
	}
	for _, cfg := range cases {
		err := l.SetShares(context.Background(), cfg)
		if !apperrors.Is(err, apperrors.ErrShareOutOfRange) {
			t.Fatalf("config %+v: expected SHARE_OUT_OF_RANGE, got %v", cfg, err)
		}
	}
	if got := l.Shares(); got != testShares {
		t.Fatalf("prior config must survive, got %+v", got)
	}
}

func TestSharesMaySumBelowDenominator(t *testing.T) {
	l, _ := newTestLedger(t)

	// An undershooting sum is valid; the gap widens the retained dust.
	cfg := model.ShareConfig{UserBps: 5000, PlatformBps: 2000, ReserveBps: 1000}
	if err := l.SetShares(context.Background(), cfg); err != nil {
		t.Fatalf("undershooting config should be accepted: %v", err)
	}

	exact := model.ShareConfig{UserBps: 7000, PlatformBps: 2000, ReserveBps: 1000}
	if err := l.SetShares(context.Background(), exact); err != nil {
		t.Fatalf("exact-sum config should be accepted: %v", err)
	}
}

func TestValidateSharesBoundaries(t *testing.T) {
	if err := ledger.ValidateShares(model.ShareConfig{UserBps: 10000, PlatformBps: 0, ReserveBps: 0}); err != nil {
		t.Fatalf("full-user config should validate: %v", err)
	}
	if err := ledger.ValidateShares(model.ShareConfig{}); err != nil {
		t.Fatalf("all-zero config should validate: %v", err)
	}
}
