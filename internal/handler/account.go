package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/middleware"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/service"
)

type AccountHandler struct {
	svc *service.LedgerService
}

func NewAccountHandler(svc *service.LedgerService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	accountID := c.Param("id")

	var req model.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	rec, err := h.svc.Deposit(c.Request.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "record_id", rec.ID)
	c.JSON(http.StatusCreated, rec)
}

func (h *AccountHandler) Withdraw(c *gin.Context) {
	accountID := c.Param("id")

	var req model.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	rec, err := h.svc.Withdraw(c.Request.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "record_id", rec.ID)
	c.JSON(http.StatusCreated, model.WithdrawResponse{Record: rec, Actual: req.Amount})
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, err := h.svc.Balance(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *AccountHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.svc.History(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *AccountHandler) GetDust(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dust())
}
