package model

// Role is the access level resolved for an authenticated caller.
type Role string

const (
	RoleMember   Role = "member"   // deposit/withdraw/read on own scope
	RoleOperator Role = "operator" // may record and distribute yield
	RoleAdmin    Role = "admin"    // may replace share config
)

// Caller is an authenticated API client resolved from its gateway key.
type Caller struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	APIKey string          `json:"-"`
	Role   Role            `json:"role"`
	Rate   RateLimitConfig `json:"rate_limit"`
}

type RateLimitConfig struct {
	QPS   float64 `json:"qps" mapstructure:"qps"`
	Burst int     `json:"burst" mapstructure:"burst"`
}

// Allows reports whether the caller's role satisfies the required one.
// Admin implies operator implies member.
func (c *Caller) Allows(required Role) bool {
	if c == nil {
		return false
	}
	switch required {
	case RoleMember:
		return true
	case RoleOperator:
		return c.Role == RoleOperator || c.Role == RoleAdmin
	case RoleAdmin:
		return c.Role == RoleAdmin
	default:
		return false
	}
}
