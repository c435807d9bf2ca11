package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	remoteDefaultTimeout = 5 * time.Second
	remoteRetryBaseDelay = 200 * time.Millisecond
)

// Remote is an Adapter over a venue exposing a JSON HTTP API. Calls
// carry a per-request timeout and bounded retry with backoff; a failed
// call surfaces to the caller and never touches ledger state.
type Remote struct {
	name    string
	version string
	baseURL string
	apiKey  string
	retries int
	client  *http.Client
}

type RemoteOption func(*Remote)

func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

func WithRetries(n int) RemoteOption {
	return func(r *Remote) {
		if n >= 0 {
			r.retries = n
		}
	}
}

func WithAPIKey(key string) RemoteOption {
	return func(r *Remote) { r.apiKey = key }
}

func NewRemote(name, version, baseURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		name:    name,
		version: version,
		baseURL: baseURL,
		retries: 1,
		client:  &http.Client{Timeout: remoteDefaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Identify() (string, string) {
	return r.name, r.version
}

type remoteAmountReq struct {
	Amount decimal.Decimal `json:"amount"`
}

type remoteWithdrawResp struct {
	Actual decimal.Decimal `json:"actual"`
}

type remoteRateResp struct {
	APYBps int64 `json:"apy_bps"`
}

type remoteHealthResp struct {
	Healthy bool `json:"healthy"`
}

type remoteAssetsResp struct {
	Total decimal.Decimal `json:"total"`
}

type remoteErrorResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *Remote) Deposit(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.Newf(apperrors.ErrInvalidAmount, "deposit amount %s must be positive", amount)
	}
	return r.do(ctx, http.MethodPost, "/v1/deposits", remoteAmountReq{Amount: amount}, nil)
}

func (r *Remote) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.Newf(apperrors.ErrInvalidAmount, "withdraw amount %s must be positive", amount)
	}
	var resp remoteWithdrawResp
	if err := r.do(ctx, http.MethodPost, "/v1/withdrawals", remoteAmountReq{Amount: amount}, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Actual, nil
}

func (r *Remote) CurrentYieldRate(ctx context.Context) (int64, error) {
	var resp remoteRateResp
	if err := r.do(ctx, http.MethodGet, "/v1/rate", nil, &resp); err != nil {
		return 0, err
	}
	return resp.APYBps, nil
}

// IsHealthy fails closed: an unreachable venue is an unhealthy venue.
func (r *Remote) IsHealthy(ctx context.Context) bool {
	var resp remoteHealthResp
	if err := r.do(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		logger.Warn("venue health probe failed", "venue", r.name, "error", err)
		return false
	}
	return resp.Healthy
}

func (r *Remote) TotalManagedAssets(ctx context.Context) (decimal.Decimal, error) {
	var resp remoteAssetsResp
	if err := r.do(ctx, http.MethodGet, "/v1/assets", nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Total, nil
}

func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var lastErr error
	delay := remoteRetryBaseDelay

	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperrors.New(apperrors.ErrUpstream, "venue call canceled", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		retriable, err := r.doOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable {
			return err
		}
	}
	return lastErr
}

// doOnce returns (retriable, err). Validation errors reported by the
// venue are final; transport and 5xx errors are worth retrying.
func (r *Remote) doOnce(ctx context.Context, method, path string, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, apperrors.Wrap(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return false, apperrors.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-Venue-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return true, apperrors.New(apperrors.ErrUpstream,
			fmt.Sprintf("venue %s unreachable", r.name), err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return false, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return false, apperrors.New(apperrors.ErrUpstream,
				fmt.Sprintf("venue %s returned malformed response", r.name), err)
		}
		return false, nil
	}

	var errResp remoteErrorResp
	_ = json.Unmarshal(raw, &errResp)
	switch errResp.Code {
	case string(apperrors.ErrInvalidAmount):
		return false, apperrors.New(apperrors.ErrInvalidAmount, errResp.Message, nil)
	case string(apperrors.ErrInsufficientBalance):
		return false, apperrors.New(apperrors.ErrInsufficientBalance, errResp.Message, nil)
	}

	retriable := resp.StatusCode >= 500
	return retriable, apperrors.Newf(apperrors.ErrUpstream,
		"venue %s responded %d: %s", r.name, resp.StatusCode, errResp.Message)
}
