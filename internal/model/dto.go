package model

import "github.com/shopspring/decimal"

// DepositRequest is the body of POST /v1/accounts/:id/deposits.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// DistributeRequest carries one realized yield amount to split.
type DistributeRequest struct {
	AccountID   string          `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// DistributeBatchRequest carries parallel sequences; all three must be
// the same length.
type DistributeBatchRequest struct {
	AccountIDs   []string          `json:"account_ids" binding:"required"`
	Amounts      []decimal.Decimal `json:"amounts" binding:"required"`
	Descriptions []string          `json:"descriptions" binding:"required"`
}

type WithdrawResponse struct {
	Record AssetRecord     `json:"record"`
	Actual decimal.Decimal `json:"actual"`
}

// DistributionResult reports how one yield amount was allocated.
type DistributionResult struct {
	AccountID       string          `json:"account_id"`
	Total           decimal.Decimal `json:"total"`
	UserPortion     decimal.Decimal `json:"user_portion"`
	PlatformPortion decimal.Decimal `json:"platform_portion"`
	ReservePortion  decimal.Decimal `json:"reserve_portion"`
	Remainder       decimal.Decimal `json:"remainder"` // retained dust, not credited
	Records         []AssetRecord   `json:"records"`
}

type DustReport struct {
	Retained decimal.Decimal `json:"retained"`
}

// VenueTransferRequest moves pooled funds to or from an external venue.
type VenueTransferRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type VenueTransferResponse struct {
	Venue     string          `json:"venue"`
	Requested decimal.Decimal `json:"requested"`
	Actual    decimal.Decimal `json:"actual"`
}
