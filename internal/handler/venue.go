package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentyield/yieldgate/internal/middleware"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/rentyield/yieldgate/internal/repository"
	"github.com/rentyield/yieldgate/internal/service"
	"github.com/rentyield/yieldgate/internal/venue"
)

type VenueHandler struct {
	registry *venue.Registry
	svc      *service.LedgerService
	cache    *repository.RedisTelemetryCache // optional, nil when redis is absent
}

func NewVenueHandler(registry *venue.Registry, svc *service.LedgerService, cache *repository.RedisTelemetryCache) *VenueHandler {
	return &VenueHandler{registry: registry, svc: svc, cache: cache}
}

func (h *VenueHandler) ListVenues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"venues": h.registry.Descriptors()})
}

// GetVenue returns the latest descriptor for one venue, preferring the
// telemetry cache when one is wired.
func (h *VenueHandler) GetVenue(c *gin.Context) {
	name := c.Param("name")

	if h.cache != nil {
		d, err := h.cache.GetDescriptor(c.Request.Context(), name)
		if err != nil {
			logger.Warn("telemetry cache read failed", "venue", name, "error", err)
		} else if d != nil {
			c.JSON(http.StatusOK, d)
			return
		}
	}

	d, ok := h.registry.Descriptor(name)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrNotFound, "unknown venue: "+name, nil))
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *VenueHandler) ProbeVenue(c *gin.Context) {
	name := c.Param("name")

	d, err := h.registry.Probe(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *VenueHandler) RouteFunds(c *gin.Context) {
	name := c.Param("name")

	var req model.VenueTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.RouteToVenue(c.Request.Context(), name, req.Amount); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "venue", name)
	middleware.AddAuditContext(c, "amount", req.Amount.String())
	c.JSON(http.StatusOK, model.VenueTransferResponse{
		Venue:     name,
		Requested: req.Amount,
		Actual:    req.Amount,
	})
}

// RecallFunds withdraws from a venue. The venue may return less than
// requested, the response reports what actually came back.
func (h *VenueHandler) RecallFunds(c *gin.Context) {
	name := c.Param("name")

	var req model.VenueTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	actual, err := h.svc.RecallFromVenue(c.Request.Context(), name, req.Amount)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "venue", name)
	middleware.AddAuditContext(c, "requested", req.Amount.String())
	middleware.AddAuditContext(c, "actual", actual.String())
	c.JSON(http.StatusOK, model.VenueTransferResponse{
		Venue:     name,
		Requested: req.Amount,
		Actual:    actual,
	})
}
