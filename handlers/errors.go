package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/sittawut/coverage-admin/validation"
	"go.uber.org/zap"
)

// respondError maps validation and store errors onto the API error body.
// notFoundMsg is used when the store reports that no row matched.
func respondError(c *gin.Context, logger *zap.Logger, err error, notFoundMsg string) {
	if notFoundMsg == "" {
		notFoundMsg = "Resource not found"
	}

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Validation error", Details: verr.Issues})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFoundMsg})
		return
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Resource already exists"})
		return
	}

	// Errors the stores did not classify.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Resource not found"})
	case strings.Contains(msg, "duplicate"):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Resource already exists"})
	default:
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(middleware.ContextRequestID)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msg})
	}
}

// decodeBody validates the request body against schema. It writes the error
// response itself and reports false when the handler should stop.
func decodeBody(c *gin.Context, logger *zap.Logger, schema *validation.Schema) (validation.Values, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read request body"})
		return nil, false
	}
	values, err := schema.ValidateJSON(body)
	var verr *validation.Error
	switch {
	case err == nil:
		return values, true
	case errors.As(err, &verr):
		respondError(c, logger, err, "")
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	return nil, false
}

// queryID parses the numeric id in query parameter key. ok is false when
// the parameter is absent or a response has already been written.
func queryID(c *gin.Context, key, entity string) (id int64, present, ok bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return 0, false, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: entity + " ID must be a number"})
		return 0, true, false
	}
	return id, true, true
}

// requiredID is queryID for update routes, where a missing id is an error.
func requiredID(c *gin.Context, entity string) (int64, bool) {
	id, present, ok := queryID(c, "id", entity)
	if !ok {
		return 0, false
	}
	if !present {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: entity + " ID is required"})
		return 0, false
	}
	return id, true
}

// stampCreator records the authenticated staff member on a new row.
func stampCreator(c *gin.Context, fields models.Fields) {
	if actor := middleware.Actor(c); actor != "" {
		fields["created_by"] = actor
	}
}
