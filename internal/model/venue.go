package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VenueDescriptor is a snapshot of a venue's self-reported state.
// The ledger never owns this; it looks it up on demand for reporting
// and health gating.
type VenueDescriptor struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	CurrentAPYBps int64           `json:"current_apy_bps"`
	Healthy       bool            `json:"healthy"`
	TotalManaged  decimal.Decimal `json:"total_managed_assets"`
	ObservedAt    time.Time       `json:"observed_at"`
}

// Stale reports whether the snapshot is older than ttl. A stale
// "healthy" reading is treated the same as unhealthy.
func (d VenueDescriptor) Stale(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(d.ObservedAt) > ttl
}
