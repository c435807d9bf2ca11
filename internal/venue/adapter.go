package venue

import (
	"context"

	"github.com/shopspring/decimal"
)

// Adapter is the uniform contract over one external yield venue. The
// ledger never trusts an adapter for allocation decisions; it only
// consults it for external state and fund movement.
type Adapter interface {
	// Identify returns pure metadata, no side effects.
	Identify() (name, version string)

	// Deposit moves amount of custodied value into the venue.
	Deposit(ctx context.Context, amount decimal.Decimal) error

	// Withdraw releases funds from the venue. The returned amount MAY
	// be less than requested when the venue enforces slippage or caps;
	// callers must reconcile with the returned value.
	Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)

	// CurrentYieldRate is the instantaneous indicative rate in bps.
	// No guarantee of realized yield.
	CurrentYieldRate(ctx context.Context) (int64, error)

	// IsHealthy is the venue's self-reported operational status.
	// Distribution from an unhealthy venue is refused.
	IsHealthy(ctx context.Context) bool

	// TotalManagedAssets is the sum of all depositors' tracked value
	// at this venue. Reporting and reconciliation only.
	TotalManagedAssets(ctx context.Context) (decimal.Decimal, error)
}
