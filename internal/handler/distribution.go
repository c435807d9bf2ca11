package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/distribution"
	"github.com/rentyield/yieldgate/internal/middleware"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
)

type DistributionHandler struct {
	engine *distribution.Engine
}

func NewDistributionHandler(engine *distribution.Engine) *DistributionHandler {
	return &DistributionHandler{engine: engine}
}

func (h *DistributionHandler) Distribute(c *gin.Context) {
	var req model.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	result, err := h.engine.Distribute(c.Request.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "account_id", req.AccountID)
	middleware.AddAuditContext(c, "amount", req.Amount.String())
	c.JSON(http.StatusCreated, result)
}

func (h *DistributionHandler) DistributeBatch(c *gin.Context) {
	var req model.DistributeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	results, err := h.engine.DistributeBatch(c.Request.Context(), req.AccountIDs, req.Amounts, req.Descriptions)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "batch_size", len(results))
	c.JSON(http.StatusCreated, gin.H{"results": results})
}

func (h *DistributionHandler) DistributeFromVenue(c *gin.Context) {
	venueName := c.Param("name")

	var req model.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	result, err := h.engine.DistributeFromVenue(c.Request.Context(), venueName, req.AccountID, req.Amount, req.Description)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "venue", venueName)
	c.JSON(http.StatusCreated, result)
}
