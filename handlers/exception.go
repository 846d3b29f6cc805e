package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/sittawut/coverage-admin/validation"
	"go.uber.org/zap"
)

type ExceptionHandler struct {
	store  repository.Store
	logger *zap.Logger
}

func NewExceptionHandler(store repository.Store, logger *zap.Logger) *ExceptionHandler {
	return &ExceptionHandler{
		store:  store,
		logger: logger,
	}
}

// GetExceptions lists exception log entries, newest first. ?resolved=true
// keeps resolved rows; any other value keeps unresolved ones.
func (h *ExceptionHandler) GetExceptions(c *gin.Context) {
	ctx := c.Request.Context()

	exceptionID, present, ok := queryID(c, "id", "Exception")
	if !ok {
		return
	}
	if present {
		exception, err := h.store.GetExceptionByID(ctx, exceptionID)
		if err != nil {
			respondError(c, h.logger, err, "Exception not found")
			return
		}
		c.JSON(http.StatusOK, exception)
		return
	}

	var filter repository.ExceptionFilter
	if raw, ok := c.GetQuery("resolved"); ok {
		resolved := raw == "true"
		filter.Resolved = &resolved
	}

	exceptions, err := h.store.ListExceptions(ctx, filter)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	if exceptions == nil {
		exceptions = []models.BookingException{}
	}
	c.JSON(http.StatusOK, exceptions)
}

func (h *ExceptionHandler) CreateException(c *gin.Context) {
	values, ok := decodeBody(c, h.logger, validation.CreateException)
	if !ok {
		return
	}
	fields := models.Fields(values)
	stampCreator(c, fields)

	exception, err := h.store.CreateException(c.Request.Context(), fields)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, exception)
}

func (h *ExceptionHandler) UpdateException(c *gin.Context) {
	exceptionID, ok := requiredID(c, "Exception")
	if !ok {
		return
	}
	values, ok := decodeBody(c, h.logger, validation.UpdateException)
	if !ok {
		return
	}
	exception, err := h.store.UpdateException(c.Request.Context(), exceptionID, models.Fields(values))
	if err != nil {
		respondError(c, h.logger, err, "Exception not found")
		return
	}
	c.JSON(http.StatusOK, exception)
}
