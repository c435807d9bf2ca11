package distribution_test

import (
	"context"
	"testing"

	"github.com/rentyield/yieldgate/internal/distribution"
	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/repository"
	"github.com/rentyield/yieldgate/internal/venue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	platformAcct = "platform-treasury"
	reserveAcct  = "risk-reserve"
)

func newTestEngine(t *testing.T, shares model.ShareConfig) (*distribution.Engine, *ledger.Ledger, *venue.Registry) {
	t.Helper()
	store := repository.NewMemoryLedgerStore()
	l, err := ledger.New(context.Background(), store, shares)
	require.NoError(t, err)
	registry := venue.NewRegistry()
	return distribution.NewEngine(l, registry, platformAcct, reserveAcct), l, registry
}

func TestComputeSplitExact(t *testing.T) {
	cfg := model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000}
	split := distribution.ComputeSplit(decimal.NewFromInt(1000), cfg)

	require.True(t, split.UserPortion.Equal(decimal.NewFromInt(600)))
	require.True(t, split.PlatformPortion.Equal(decimal.NewFromInt(300)))
	require.True(t, split.ReservePortion.Equal(decimal.NewFromInt(100)))
	require.True(t, split.Remainder.IsZero())
}

func TestComputeSplitFloorsAndRetainsDust(t *testing.T) {
	cfg := model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000}
	// 7 * 0.6 = 4.2 -> 4, 7 * 0.3 = 2.1 -> 2, 7 * 0.1 = 0.7 -> 0.
	split := distribution.ComputeSplit(decimal.NewFromInt(7), cfg)

	require.True(t, split.UserPortion.Equal(decimal.NewFromInt(4)))
	require.True(t, split.PlatformPortion.Equal(decimal.NewFromInt(2)))
	require.True(t, split.ReservePortion.IsZero())
	require.True(t, split.Remainder.Equal(decimal.NewFromInt(1)))
}

func TestComputeSplitUnallocatedBps(t *testing.T) {
	// Sum below 10000: the unallocated 2000 bps land in the remainder.
	cfg := model.ShareConfig{UserBps: 5000, PlatformBps: 2000, ReserveBps: 1000}
	split := distribution.ComputeSplit(decimal.NewFromInt(1000), cfg)

	require.True(t, split.UserPortion.Equal(decimal.NewFromInt(500)))
	require.True(t, split.Remainder.Equal(decimal.NewFromInt(200)))
}

func TestDistributeCreditsAllParties(t *testing.T) {
	engine, l, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})
	ctx := context.Background()

	res, err := engine.Distribute(ctx, "acct-1", decimal.NewFromInt(1000), "august rent yield")
	require.NoError(t, err)
	require.True(t, res.UserPortion.Equal(decimal.NewFromInt(600)))
	require.True(t, res.Remainder.IsZero())
	require.Len(t, res.Records, 3)

	userBal, err := l.Balance("acct-1")
	require.NoError(t, err)
	require.True(t, userBal.AccruedYield.Equal(decimal.NewFromInt(600)))
	require.True(t, userBal.Principal.IsZero())

	platBal, err := l.Balance(platformAcct)
	require.NoError(t, err)
	require.True(t, platBal.AccruedYield.Equal(decimal.NewFromInt(300)))

	resBal, err := l.Balance(reserveAcct)
	require.NoError(t, err)
	require.True(t, resBal.AccruedYield.Equal(decimal.NewFromInt(100)))
}

func TestDistributeRetainsDustNeverCredits(t *testing.T) {
	engine, l, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})
	ctx := context.Background()

	res, err := engine.Distribute(ctx, "acct-1", decimal.NewFromInt(7), "small yield")
	require.NoError(t, err)
	require.True(t, res.Remainder.Equal(decimal.NewFromInt(1)))
	// Zero reserve portion produces no record and no account.
	require.Len(t, res.Records, 2)
	_, err = l.Balance(reserveAcct)
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	require.True(t, l.Dust().Equal(decimal.NewFromInt(1)))

	// Credited portions plus dust always reconstruct the input.
	sum := res.UserPortion.Add(res.PlatformPortion).Add(res.ReservePortion).Add(res.Remainder)
	require.True(t, sum.Equal(res.Total))
}

func TestDistributeBatchLengthMismatch(t *testing.T) {
	engine, l, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})

	_, err := engine.DistributeBatch(context.Background(),
		[]string{"a", "b"},
		[]decimal.Decimal{decimal.NewFromInt(10)},
		[]string{"x", "y"})
	require.True(t, apperrors.Is(err, apperrors.ErrLengthMismatch))
	require.Empty(t, l.Accounts())
}

func TestDistributeBatchAllOrNothing(t *testing.T) {
	engine, l, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})

	_, err := engine.DistributeBatch(context.Background(),
		[]string{"a", "b", "c"},
		[]decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(-5), decimal.NewFromInt(100)},
		[]string{"ok", "bad", "ok"})
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidAmount))

	// The valid first entry must not have landed.
	require.Empty(t, l.Accounts())
	require.True(t, l.Dust().IsZero())
}

func TestDistributeBatchSharedConfigSnapshot(t *testing.T) {
	engine, l, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})
	ctx := context.Background()

	results, err := engine.DistributeBatch(ctx,
		[]string{"a", "b"},
		[]decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(7)},
		[]string{"q3 yield", "q3 yield"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].UserPortion.Equal(decimal.NewFromInt(600)))
	require.True(t, results[1].UserPortion.Equal(decimal.NewFromInt(4)))

	// Platform account accrued both platform portions in one batch.
	platBal, err := l.Balance(platformAcct)
	require.NoError(t, err)
	require.True(t, platBal.AccruedYield.Equal(decimal.NewFromInt(302)))
	require.True(t, l.Dust().Equal(decimal.NewFromInt(1)))
}

func TestDistributeFromVenueUnhealthy(t *testing.T) {
	engine, l, registry := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})
	registry.Register(venue.NewSim("vault-a", "1.0", venue.WithHealthy(false)))

	_, err := engine.DistributeFromVenue(context.Background(), "vault-a", "acct-1", decimal.NewFromInt(100), "yield")
	require.True(t, apperrors.Is(err, apperrors.ErrVenueUnhealthy))
	require.Empty(t, l.Accounts())
}

func TestDistributeFromVenueUnknown(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})

	_, err := engine.DistributeFromVenue(context.Background(), "ghost", "acct-1", decimal.NewFromInt(100), "yield")
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDistributeFromVenueHealthy(t *testing.T) {
	engine, l, registry := newTestEngine(t, model.ShareConfig{UserBps: 6000, PlatformBps: 3000, ReserveBps: 1000})
	registry.Register(venue.NewSim("vault-a", "1.0", venue.WithHealthy(true)))

	res, err := engine.DistributeFromVenue(context.Background(), "vault-a", "acct-1", decimal.NewFromInt(1000), "vault yield")
	require.NoError(t, err)
	require.True(t, res.UserPortion.Equal(decimal.NewFromInt(600)))

	bal, err := l.Balance("acct-1")
	require.NoError(t, err)
	require.True(t, bal.AccruedYield.Equal(decimal.NewFromInt(600)))
}
