package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
)

func TestInMemStoreLockAndReplay(t *testing.T) {
	store := NewInMemIdempotencyStore()

	rec, hit := store.GetOrLock("caller:key-1")
	if hit || rec != nil {
		t.Fatalf("first access should lock, not hit")
	}

	rec, hit = store.GetOrLock("caller:key-1")
	if !hit || !rec.Processing {
		t.Fatalf("second access during processing should report in-progress")
	}

	store.Save("caller:key-1", http.StatusCreated, []byte(`{"ok":true}`))
	rec, hit = store.GetOrLock("caller:key-1")
	if !hit || rec.Processing {
		t.Fatalf("expected completed record after save")
	}
	if rec.Status != http.StatusCreated || string(rec.Body) != `{"ok":true}` {
		t.Fatalf("unexpected replay record: %+v", rec)
	}
}

func TestInMemStoreUnlockAllowsRetry(t *testing.T) {
	store := NewInMemIdempotencyStore()

	if _, hit := store.GetOrLock("caller:key-2"); hit {
		t.Fatalf("unexpected hit")
	}
	store.Unlock("caller:key-2")

	if _, hit := store.GetOrLock("caller:key-2"); hit {
		t.Fatalf("unlocked key should lock fresh, not replay")
	}
}

func newIdempotencyRouter(store IdempotencyStore, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(ContextCallerKey, &model.Caller{ID: "caller-1"})
		c.Next()
	})
	r.Use(IdempotencyMiddleware(store))
	r.POST("/mutate", handler)
	return r
}

func TestIdempotencyDoesNotCacheHandlerErrors(t *testing.T) {
	store := NewInMemIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(c *gin.Context) {
		calls++
		c.Error(apperrors.NewInvalidAmount("amount must be positive"))
	})

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-err")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on first attempt, got %d", rec.Code)
	}

	// The retry must re-execute and surface the same error, not replay
	// a phantom success.
	req2 := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req2.Header.Set(HeaderIdempotencyKey, "key-err")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("retry of failed mutation returned %d, expected 400", rec2.Code)
	}
	if rec2.Body.Len() == 0 {
		t.Fatalf("retry of failed mutation returned an empty body")
	}
	if calls != 2 {
		t.Fatalf("expected handler to re-execute on retry, calls=%d", calls)
	}
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	store := NewInMemIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-ok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req2.Header.Set(HeaderIdempotencyKey, "key-ok")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", rec2.Code)
	}
	if rec2.Body.String() != rec.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", rec2.Body.String(), rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected cached replay without re-execution, calls=%d", calls)
	}
}
