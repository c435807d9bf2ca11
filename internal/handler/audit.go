package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/service"
)

type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// ListLogs returns recent operational audit entries, newest first.
// Filters: caller_id, limit, from/to as RFC3339.
func (h *AuditHandler) ListLogs(c *gin.Context) {
	callerID := c.Query("caller_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = &t
		}
	}

	logs, err := h.svc.List(c.Request.Context(), callerID, limit, from, to)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
