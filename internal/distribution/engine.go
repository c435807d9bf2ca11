package distribution

import (
	"context"
	"fmt"
	"strings"

	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/pkg/metrics"
	"github.com/rentyield/yieldgate/internal/venue"
	"github.com/shopspring/decimal"
)

// Split is the floor-division allocation of one yield amount.
// UserPortion + PlatformPortion + ReservePortion never exceeds the
// input; Remainder is whatever flooring plus unallocated bps leaves
// over, and is retained as dust rather than credited anywhere.
type Split struct {
	UserPortion     decimal.Decimal
	PlatformPortion decimal.Decimal
	ReservePortion  decimal.Decimal
	Remainder       decimal.Decimal
}

var bpsDenom = decimal.NewFromInt(model.BpsDenominator)

// ComputeSplit floors each portion: amount * bps / 10000.
func ComputeSplit(amount decimal.Decimal, cfg model.ShareConfig) Split {
	user := amount.Mul(decimal.NewFromInt(cfg.UserBps)).Div(bpsDenom).Floor()
	platform := amount.Mul(decimal.NewFromInt(cfg.PlatformBps)).Div(bpsDenom).Floor()
	reserve := amount.Mul(decimal.NewFromInt(cfg.ReserveBps)).Div(bpsDenom).Floor()
	return Split{
		UserPortion:     user,
		PlatformPortion: platform,
		ReservePortion:  reserve,
		Remainder:       amount.Sub(user).Sub(platform).Sub(reserve),
	}
}

// Engine splits realized yield between the target account, the
// platform account and the risk reserve, and applies the result to the
// ledger. It never decides how much yield was realized; that figure
// arrives from outside.
type Engine struct {
	ledger          *ledger.Ledger
	venues          *venue.Registry
	platformAccount string
	reserveAccount  string
}

func NewEngine(l *ledger.Ledger, venues *venue.Registry, platformAccount, reserveAccount string) *Engine {
	return &Engine{
		ledger:          l,
		venues:          venues,
		platformAccount: platformAccount,
		reserveAccount:  reserveAccount,
	}
}

type entry struct {
	accountID string
	amount    decimal.Decimal
	desc      string
}

// Distribute splits one realized yield amount and credits the parties.
func (e *Engine) Distribute(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (*model.DistributionResult, error) {
	results, err := e.apply(ctx, []entry{{accountID, amount, desc}})
	if err != nil {
		return nil, err
	}
	metrics.DistributionsTotal.WithLabelValues("single").Inc()
	return &results[0], nil
}

// DistributeBatch applies Distribute to parallel sequences of
// accounts, amounts and descriptions. The batch is all-or-nothing:
// every entry is validated and staged before any ledger mutation, so a
// failing entry leaves all target accounts untouched.
func (e *Engine) DistributeBatch(ctx context.Context, accountIDs []string, amounts []decimal.Decimal, descs []string) ([]model.DistributionResult, error) {
	if len(accountIDs) != len(amounts) || len(accountIDs) != len(descs) {
		metrics.DistributionRejects.WithLabelValues("length_mismatch").Inc()
		return nil, apperrors.Newf(apperrors.ErrLengthMismatch,
			"batch lengths differ: %d accounts, %d amounts, %d descriptions",
			len(accountIDs), len(amounts), len(descs))
	}
	entries := make([]entry, len(accountIDs))
	for i := range accountIDs {
		entries[i] = entry{accountIDs[i], amounts[i], descs[i]}
	}
	results, err := e.apply(ctx, entries)
	if err != nil {
		return nil, err
	}
	metrics.DistributionsTotal.WithLabelValues("batch").Inc()
	return results, nil
}

// DistributeFromVenue gates on the venue's health before distributing.
// An unhealthy venue's reported yield is untrusted and must not reach
// the ledger.
func (e *Engine) DistributeFromVenue(ctx context.Context, venueName, accountID string, amount decimal.Decimal, desc string) (*model.DistributionResult, error) {
	adapter, ok := e.venues.Get(venueName)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrNotFound, "venue %s not registered", venueName)
	}

	healthy := adapter.IsHealthy(ctx)
	metrics.VenueHealthChecks.WithLabelValues(venueName, fmt.Sprintf("%t", healthy)).Inc()
	if !healthy {
		metrics.DistributionRejects.WithLabelValues("venue_unhealthy").Inc()
		return nil, apperrors.Newf(apperrors.ErrVenueUnhealthy,
			"venue %s reports unhealthy, distribution skipped", venueName)
	}

	results, err := e.apply(ctx, []entry{{accountID, amount, desc}})
	if err != nil {
		return nil, err
	}
	metrics.DistributionsTotal.WithLabelValues("venue").Inc()
	return &results[0], nil
}

// apply stages all entries against one share-config snapshot and
// commits them as a single atomic ledger batch.
func (e *Engine) apply(ctx context.Context, entries []entry) ([]model.DistributionResult, error) {
	for _, en := range entries {
		if err := validateEntry(en); err != nil {
			metrics.DistributionRejects.WithLabelValues(string(apperrors.Wrap(err).Type)).Inc()
			return nil, err
		}
	}

	results := make([]model.DistributionResult, len(entries))
	recs, err := e.ledger.ApplyDistribution(ctx, func(cfg model.ShareConfig) ([]ledger.YieldCredit, decimal.Decimal, error) {
		credits := make([]ledger.YieldCredit, 0, len(entries)*3)
		dust := decimal.Zero
		for i, en := range entries {
			split := ComputeSplit(en.amount, cfg)
			results[i] = model.DistributionResult{
				AccountID:       en.accountID,
				Total:           en.amount,
				UserPortion:     split.UserPortion,
				PlatformPortion: split.PlatformPortion,
				ReservePortion:  split.ReservePortion,
				Remainder:       split.Remainder,
			}
			if split.UserPortion.IsPositive() {
				credits = append(credits, ledger.YieldCredit{
					AccountID:   en.accountID,
					Amount:      split.UserPortion,
					Description: en.desc,
				})
			}
			if split.PlatformPortion.IsPositive() {
				credits = append(credits, ledger.YieldCredit{
					AccountID:   e.platformAccount,
					Amount:      split.PlatformPortion,
					Description: fmt.Sprintf("platform share: %s", en.desc),
				})
			}
			if split.ReservePortion.IsPositive() {
				credits = append(credits, ledger.YieldCredit{
					AccountID:   e.reserveAccount,
					Amount:      split.ReservePortion,
					Description: fmt.Sprintf("reserve share: %s", en.desc),
				})
			}
			dust = dust.Add(split.Remainder)
		}
		return credits, dust, nil
	})
	if err != nil {
		metrics.DistributionRejects.WithLabelValues(string(apperrors.Wrap(err).Type)).Inc()
		return nil, err
	}

	// Records come back in staging order: up to three per entry.
	ri := 0
	for i := range results {
		n := 0
		if results[i].UserPortion.IsPositive() {
			n++
		}
		if results[i].PlatformPortion.IsPositive() {
			n++
		}
		if results[i].ReservePortion.IsPositive() {
			n++
		}
		results[i].Records = recs[ri : ri+n]
		ri += n
	}

	dustTotal := decimal.Zero
	for _, res := range results {
		dustTotal = dustTotal.Add(res.Remainder)
	}
	if f, _ := dustTotal.Float64(); f > 0 {
		metrics.DustRetained.Add(f)
	}
	return results, nil
}

func validateEntry(en entry) error {
	if strings.TrimSpace(en.accountID) == "" {
		return apperrors.NewInvalidRequest("account id is required")
	}
	if !en.amount.IsPositive() {
		return apperrors.Newf(apperrors.ErrInvalidAmount, "yield amount %s must be positive", en.amount)
	}
	if strings.TrimSpace(en.desc) == "" {
		return apperrors.New(apperrors.ErrEmptyDescription, "description is required", nil)
	}
	return nil
}
