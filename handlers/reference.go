package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/repository"
	"go.uber.org/zap"
)

// ReferenceHandler serves the read-only lookup tables and the health probe.
type ReferenceHandler struct {
	store  repository.Store
	logger *zap.Logger
}

func NewReferenceHandler(store repository.Store, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{store: store, logger: logger}
}

func (h *ReferenceHandler) GetBookingStatuses(c *gin.Context) {
	statuses, err := h.store.ListBookingStatuses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *ReferenceHandler) GetCoverageConfigs(c *gin.Context) {
	configs, err := h.store.ListCoverageConfigs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *ReferenceHandler) GetExceptionStatuses(c *gin.Context) {
	statuses, err := h.store.ListExceptionStatuses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *ReferenceHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
