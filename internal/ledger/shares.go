package ledger

import (
	"context"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
)

// ValidateShares checks the basis-point invariants: each component in
// [0, 10000] and the sum no greater than 10000.
func ValidateShares(cfg model.ShareConfig) error {
	for _, bps := range []int64{cfg.UserBps, cfg.PlatformBps, cfg.ReserveBps} {
		if bps < 0 || bps > model.BpsDenominator {
			return apperrors.Newf(apperrors.ErrShareOutOfRange,
				"share %d bps outside [0, %d]", bps, model.BpsDenominator)
		}
	}
	if sum := cfg.Sum(); sum > model.BpsDenominator {
		return apperrors.Newf(apperrors.ErrShareOverflow,
			"shares sum to %d bps, max %d", sum, model.BpsDenominator)
	}
	return nil
}

// Shares returns the current share configuration.
func (l *Ledger) Shares() model.ShareConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shares
}

// SetShares atomically replaces the whole share triple. A failed
// validation or store write leaves the prior config in place; there is
// no partial field update.
func (l *Ledger) SetShares(ctx context.Context, cfg model.ShareConfig) error {
	if err := ValidateShares(cfg); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveShares(ctx, cfg); err != nil {
		return apperrors.New(apperrors.ErrInternal, "persist share config", err)
	}
	l.shares = cfg
	return nil
}
