// Package api is the HTTP surface of the server: a gin router, middleware
// for request identity, authentication and metrics, and handlers that
// translate between the wire format and the services.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopcraft/api/internal/common"
	"github.com/shopcraft/api/internal/logging"
)

// envelope is the uniform response body. Success responses carry Data;
// failures carry Message and, for validation errors, field details.
type envelope struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Data      any            `json:"data,omitempty"`
	Errors    map[string]any `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{
		Success:   true,
		RequestID: requestID(c),
		Data:      data,
	})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Message:   message,
		RequestID: requestID(c),
		Data:      data,
	})
}

// respondError maps a service error to its HTTP status. Classified errors
// surface their message; anything else reports a generic failure without
// leaking the cause. Internal errors are additionally logged with the
// request ID so the log line can be matched to the response.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	kind := common.KindOf(err)
	if kind == common.KindInternal {
		var appErr *common.Error
		cause := err
		if errors.As(err, &appErr) && appErr.Err != nil {
			cause = appErr.Err
		}
		logger.Error(c.Request.Context(), "request failed",
			"error", cause.Error(),
			"requestID", requestID(c),
			"path", c.FullPath(),
		)
	}

	c.AbortWithStatusJSON(kind.HTTPStatus(), envelope{
		Success:   false,
		Message:   common.MessageOf(err),
		RequestID: requestID(c),
	})
}

// respondValidation reports a 400 with per-field messages from binding.
func respondValidation(c *gin.Context, fields map[string]any) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
		Success:   false,
		Message:   "Validation failed",
		RequestID: requestID(c),
		Errors:    fields,
	})
}
