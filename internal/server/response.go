package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/llm"
)

// Error codes sent in the envelope.
const (
	CodeBadRequest    = "bad_request"
	CodeInvalidOutput = "invalid_output"
	CodeRateLimited   = "rate_limited"
	CodeTimeout       = "timeout"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal"
)

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gateway.ErrorBody{Error: gateway.ErrorDetail{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// statusFor maps a gateway failure to an HTTP status and envelope code.
func statusFor(err error) (int, string) {
	var invalid *gateway.ErrInvalidOutput
	if errors.As(err, &invalid) {
		return http.StatusBadGateway, CodeInvalidOutput
	}
	switch llm.Classify(err) {
	case llm.ClassRateLimit:
		return http.StatusTooManyRequests, CodeRateLimited
	case llm.ClassTimeout:
		return http.StatusGatewayTimeout, CodeTimeout
	case llm.ClassInvalid, llm.ClassMaxTokens:
		return http.StatusBadGateway, CodeInvalidOutput
	case llm.ClassUnavailable:
		return http.StatusServiceUnavailable, CodeUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}
