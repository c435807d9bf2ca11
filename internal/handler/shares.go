package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/middleware"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
)

type SharesHandler struct {
	ledger *ledger.Ledger
}

func NewSharesHandler(l *ledger.Ledger) *SharesHandler {
	return &SharesHandler{ledger: l}
}

func (h *SharesHandler) GetShares(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Shares())
}

// PutShares replaces the full share configuration. Partial updates are not
// supported, the caller always sends all three portions.
func (h *SharesHandler) PutShares(c *gin.Context) {
	var req model.ShareConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.ledger.SetShares(c.Request.Context(), req); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "user_bps", req.UserBps)
	middleware.AddAuditContext(c, "platform_bps", req.PlatformBps)
	middleware.AddAuditContext(c, "reserve_bps", req.ReserveBps)
	c.JSON(http.StatusOK, h.ledger.Shares())
}
