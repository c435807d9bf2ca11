package model

import (
	"time"
)

// AuditLog is one HTTP request captured by the audit middleware.
// This is the operational audit of the API surface; the ledger's own
// asset records are kept separately and are the financial history.
type AuditLog struct {
	ID        string `json:"id"` // request ID (UUID)
	CallerID  string `json:"caller_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	RequestBody  string `json:"request_body"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Business context attached by handlers (account IDs, record IDs,
	// upstream errors).
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
