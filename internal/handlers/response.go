package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
)

// APIVersion is echoed in every envelope so clients can detect contract
// changes.
const APIVersion = "1.0"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Envelope struct {
	Success bool      `json:"success"`
	Version string    `json:"version"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

func RespondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Version: APIVersion,
		Data:    data,
	})
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{
		Success: false,
		Version: APIVersion,
		Error: &APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondPipelineError maps the pipeline's typed failures onto distinct
// status codes so a caller can tell "the AI is unavailable" from "the AI's
// answer was ill-formed" from "wait before retrying".
func RespondPipelineError(c *gin.Context, err error) {
	status, code := statusForPipelineError(err)
	RespondError(c, status, code, err)
}

func statusForPipelineError(err error) (int, string) {
	var rateErr *aierr.RateLimitError
	switch {
	case aierr.IsConfiguration(err):
		return http.StatusInternalServerError, "prompt_config"
	case aierr.IsProvider(err):
		return http.StatusServiceUnavailable, "ai_unavailable"
	case aierr.IsMalformedOutput(err):
		return http.StatusBadGateway, "ai_malformed_output"
	case aierr.IsSchemaValidation(err):
		return http.StatusBadGateway, "ai_invalid_output"
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
