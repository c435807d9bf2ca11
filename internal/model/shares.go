package model

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// ShareConfig holds the proportional yield shares in basis points.
// The three values may sum to less than 10000; the shortfall is
// intentionally unallocated and retained as dust, never distributed.
type ShareConfig struct {
	UserBps     int64 `json:"user_bps" mapstructure:"user_bps"`
	PlatformBps int64 `json:"platform_bps" mapstructure:"platform_bps"`
	ReserveBps  int64 `json:"reserve_bps" mapstructure:"reserve_bps"`
}

func (c ShareConfig) Sum() int64 {
	return c.UserBps + c.PlatformBps + c.ReserveBps
}
