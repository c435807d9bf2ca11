package venue

import (
	"context"
	"sync"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// Sim is an in-process venue used for development and tests. It tracks
// one pooled position and can simulate unhealthy periods and
// per-withdrawal caps.
type Sim struct {
	mu      sync.RWMutex
	name    string
	version string
	apyBps  int64
	healthy bool

	position decimal.Decimal // the platform's tracked value here

	// withdrawCapBps limits one withdrawal to this fraction of the
	// current position; 0 means uncapped.
	withdrawCapBps int64
}

type SimOption func(*Sim)

func WithAPY(bps int64) SimOption {
	return func(s *Sim) { s.apyBps = bps }
}

func WithWithdrawCap(bps int64) SimOption {
	return func(s *Sim) { s.withdrawCapBps = bps }
}

func WithHealthy(healthy bool) SimOption {
	return func(s *Sim) { s.healthy = healthy }
}

func NewSim(name, version string, opts ...SimOption) *Sim {
	s := &Sim{
		name:     name,
		version:  version,
		apyBps:   0,
		healthy:  true,
		position: decimal.Zero,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sim) Identify() (string, string) {
	return s.name, s.version
}

func (s *Sim) Deposit(_ context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.Newf(apperrors.ErrInvalidAmount, "deposit amount %s must be positive", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = s.position.Add(amount)
	return nil
}

func (s *Sim) Withdraw(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.Newf(apperrors.ErrInvalidAmount, "withdraw amount %s must be positive", amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.position.LessThan(amount) {
		return decimal.Zero, apperrors.Newf(apperrors.ErrInsufficientBalance,
			"position %s less than requested %s", s.position, amount)
	}

	actual := amount
	if s.withdrawCapBps > 0 {
		limit := s.position.Mul(decimal.NewFromInt(s.withdrawCapBps)).
			Div(decimal.NewFromInt(model.BpsDenominator)).Floor()
		if actual.GreaterThan(limit) {
			actual = limit
		}
	}

	s.position = s.position.Sub(actual)
	return actual, nil
}

func (s *Sim) CurrentYieldRate(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apyBps, nil
}

func (s *Sim) IsHealthy(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

func (s *Sim) TotalManagedAssets(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position, nil
}

// SetHealthy flips the simulated health status.
func (s *Sim) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// SetAPY adjusts the simulated indicative rate.
func (s *Sim) SetAPY(bps int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apyBps = bps
}
