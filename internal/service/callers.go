package service

import (
	"sync"

	"github.com/rentyield/yieldgate/internal/config"
	"github.com/rentyield/yieldgate/internal/model"
	"golang.org/x/time/rate"
)

// Authorizer is the external role/permission gate. The core consumes
// it as a single predicate and never implements role storage itself.
type Authorizer interface {
	IsAuthorized(caller *model.Caller, required model.Role) bool
}

// CallerManager resolves gateway API keys to callers and owns their
// rate limiters. It is the default Authorizer.
type CallerManager struct {
	mu            sync.RWMutex
	callers       map[string]*model.Caller // key: API key
	limiters      map[string]*rate.Limiter // key: caller ID
	defaultCaller *model.Caller
}

func NewCallerManager(cfg *config.Config) *CallerManager {
	cm := &CallerManager{
		callers:  make(map[string]*model.Caller),
		limiters: make(map[string]*rate.Limiter),
	}

	for _, cc := range cfg.Callers {
		role := model.Role(cc.Role)
		switch role {
		case model.RoleMember, model.RoleOperator, model.RoleAdmin:
		default:
			role = model.RoleMember
		}
		cm.Register(&model.Caller{
			ID:     cc.ID,
			Name:   cc.Name,
			APIKey: cc.APIKey,
			Role:   role,
			Rate:   model.RateLimitConfig{QPS: cc.QPS, Burst: cc.Burst},
		})
	}

	// Single-key mode for development: one operator caller, so local
	// setups can exercise distributions without a caller list.
	if len(cfg.Callers) == 0 {
		caller := &model.Caller{
			ID:     "default-caller",
			Name:   "Default Caller",
			APIKey: cfg.Auth.APIKey,
			Role:   model.RoleOperator,
			Rate:   model.RateLimitConfig{QPS: 10, Burst: 20},
		}
		if caller.APIKey == "" {
			caller.APIKey = "sk-default-12345"
		}
		cm.Register(caller)
		cm.defaultCaller = caller
	}

	return cm
}

func (cm *CallerManager) Register(c *model.Caller) {
	if c == nil {
		return
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callers[c.APIKey] = c

	limit := rate.Limit(c.Rate.QPS)
	if limit == 0 {
		limit = rate.Inf
	}
	burst := c.Rate.Burst
	if burst == 0 {
		burst = 1
	}
	cm.limiters[c.ID] = rate.NewLimiter(limit, burst)
}

func (cm *CallerManager) GetByAPIKey(apiKey string) (*model.Caller, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.callers[apiKey]
	return c, ok
}

func (cm *CallerManager) DefaultCaller() *model.Caller {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.defaultCaller
}

func (cm *CallerManager) LimiterFor(callerID string) *rate.Limiter {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.limiters[callerID]
}

func (cm *CallerManager) IsAuthorized(caller *model.Caller, required model.Role) bool {
	return caller.Allows(required)
}
