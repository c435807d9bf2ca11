package service

import (
	"context"
	"fmt"

	"github.com/rentyield/yieldgate/internal/custody"
	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/pkg/metrics"
	"github.com/rentyield/yieldgate/internal/venue"
	"github.com/shopspring/decimal"
)

// CustodyPoolAccount names the pooled custody side of value moves.
const CustodyPoolAccount = "custody-pool"

// LedgerService glues the custody layer, the ledger and the venue
// registry together. The ledger stays a pure balance/history store;
// value movement happens here, around the bookkeeping.
type LedgerService struct {
	ledger *ledger.Ledger
	venues *venue.Registry
	mover  custody.Mover
}

func NewLedgerService(l *ledger.Ledger, venues *venue.Registry, mover custody.Mover) *LedgerService {
	return &LedgerService{
		ledger: l,
		venues: venues,
		mover:  mover,
	}
}

// Deposit moves value into custody, then records it.
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (model.AssetRecord, error) {
	if err := s.mover.MoveValue(ctx, accountID, CustodyPoolAccount, amount); err != nil {
		return model.AssetRecord{}, apperrors.New(apperrors.ErrUpstream, "custody transfer failed", err)
	}
	rec, err := s.ledger.Deposit(ctx, accountID, amount, desc)
	if err != nil {
		return model.AssetRecord{}, err
	}
	metrics.DepositsTotal.Inc()
	return rec, nil
}

// Withdraw records the decrement, then releases value from custody.
func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, desc string) (model.AssetRecord, error) {
	rec, err := s.ledger.Withdraw(ctx, accountID, amount, desc)
	if err != nil {
		return model.AssetRecord{}, err
	}
	if err := s.mover.MoveValue(ctx, CustodyPoolAccount, accountID, amount); err != nil {
		// The ledger record stands; reconciliation runs off the audit
		// trail. Surface the custody failure to the caller.
		return rec, apperrors.New(apperrors.ErrUpstream, "custody release failed", err)
	}
	metrics.WithdrawalsTotal.Inc()
	return rec, nil
}

func (s *LedgerService) Balance(accountID string) (model.Balance, error) {
	return s.ledger.Balance(accountID)
}

func (s *LedgerService) History(ctx context.Context, accountID string, limit, offset int) ([]model.AssetRecord, error) {
	return s.ledger.History(ctx, accountID, limit, offset)
}

func (s *LedgerService) Dust() model.DustReport {
	return model.DustReport{Retained: s.ledger.Dust()}
}

// RouteToVenue pushes pooled funds into a venue through its adapter.
func (s *LedgerService) RouteToVenue(ctx context.Context, venueName string, amount decimal.Decimal) error {
	adapter, ok := s.venues.Get(venueName)
	if !ok {
		return apperrors.Newf(apperrors.ErrNotFound, "venue %s not registered", venueName)
	}
	if err := adapter.Deposit(ctx, amount); err != nil {
		return err
	}
	if err := s.mover.MoveValue(ctx, CustodyPoolAccount, venueAccount(venueName), amount); err != nil {
		return apperrors.New(apperrors.ErrUpstream, "custody transfer failed", err)
	}
	return nil
}

// RecallFromVenue pulls funds back from a venue. The venue decides the
// actual amount released; reconciliation uses that figure, never the
// requested one.
func (s *LedgerService) RecallFromVenue(ctx context.Context, venueName string, amount decimal.Decimal) (decimal.Decimal, error) {
	adapter, ok := s.venues.Get(venueName)
	if !ok {
		return decimal.Zero, apperrors.Newf(apperrors.ErrNotFound, "venue %s not registered", venueName)
	}
	actual, err := adapter.Withdraw(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.mover.MoveValue(ctx, venueAccount(venueName), CustodyPoolAccount, actual); err != nil {
		return actual, apperrors.New(apperrors.ErrUpstream, "custody transfer failed", err)
	}
	return actual, nil
}

func venueAccount(name string) string {
	return fmt.Sprintf("venue:%s", name)
}
