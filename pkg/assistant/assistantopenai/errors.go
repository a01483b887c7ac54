package assistantopenai

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/openai/openai-go/v3"
)

var (
	// Error registry for the OpenAI assistant provider
	errorRegistry = errx.NewRegistry("OPENAI")

	// API Errors
	ErrAPIRequest = errorRegistry.Register(
		"API_REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to make request to OpenAI API",
	)

	ErrAPIResponse = errorRegistry.Register(
		"API_RESPONSE_INVALID",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Invalid response from OpenAI API",
	)

	ErrAPIUnauthorized = errorRegistry.Register(
		"API_UNAUTHORIZED",
		errx.TypeConfiguration,
		http.StatusInternalServerError,
		"Invalid or missing OpenAI API key",
	)

	ErrAPIRateLimit = errorRegistry.Register(
		"API_RATE_LIMIT",
		errx.TypeExternal,
		http.StatusTooManyRequests,
		"OpenAI API rate limit exceeded",
	)

	ErrAPIQuotaExceeded = errorRegistry.Register(
		"API_QUOTA_EXCEEDED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"OpenAI API quota exceeded",
	)

	ErrNotFound = errorRegistry.Register(
		"NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"Thread, run or assistant not found",
	)

	ErrInvalidRequest = errorRegistry.Register(
		"INVALID_REQUEST",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Invalid request parameters",
	)

	ErrRunActive = errorRegistry.Register(
		"RUN_ACTIVE",
		errx.TypeValidation,
		http.StatusConflict,
		"A run is already active on this thread",
	)

	// Stream Errors
	ErrStreamFailed = errorRegistry.Register(
		"STREAM_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Streaming request failed",
	)

	// Configuration Errors
	ErrMissingAPIKey = errorRegistry.Register(
		"MISSING_API_KEY",
		errx.TypeConfiguration,
		http.StatusInternalServerError,
		"OpenAI API key not provided",
	)
)

// ParseOpenAIError classifies an error returned by the OpenAI client
func ParseOpenAIError(err error) *errx.Error {
	if err == nil {
		return nil
	}

	// Check if it's already a custom error
	var customErr *errx.Error
	if errx.As(err, &customErr) {
		return customErr
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		e := errorRegistry.NewWithCause(codeForStatus(apiErr.StatusCode, apiErr.Message), err)
		e.WithDetail("status_code", apiErr.StatusCode)
		if apiErr.Code != "" {
			e.WithDetail("error_code", apiErr.Code)
		}
		if apiErr.Message != "" {
			e.Message = apiErr.Message
		}
		return e
	}

	errLower := strings.ToLower(err.Error())

	var baseErr *errx.ErrorCode
	switch {
	case strings.Contains(errLower, "unauthorized") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "incorrect api key"):
		baseErr = ErrAPIUnauthorized
	case strings.Contains(errLower, "rate limit") || strings.Contains(errLower, "rate_limit"):
		baseErr = ErrAPIRateLimit
	case strings.Contains(errLower, "quota"):
		baseErr = ErrAPIQuotaExceeded
	case strings.Contains(errLower, "already has an active run"):
		baseErr = ErrRunActive
	case strings.Contains(errLower, "stream"):
		baseErr = ErrStreamFailed
	default:
		baseErr = ErrAPIRequest
	}

	return errorRegistry.NewWithCause(baseErr, err)
}

// WrapError wraps a standard error with the given code
func WrapError(err error, code *errx.ErrorCode) *errx.Error {
	if err == nil {
		return nil
	}

	var customErr *errx.Error
	if errx.As(err, &customErr) {
		return customErr
	}

	return errorRegistry.NewWithCause(code, err)
}

func codeForStatus(status int, message string) *errx.ErrorCode {
	msg := strings.ToLower(message)
	switch status {
	case http.StatusUnauthorized:
		return ErrAPIUnauthorized
	case http.StatusForbidden:
		if strings.Contains(msg, "quota") {
			return ErrAPIQuotaExceeded
		}
		return ErrAPIUnauthorized
	case http.StatusTooManyRequests:
		if strings.Contains(msg, "quota") {
			return ErrAPIQuotaExceeded
		}
		return ErrAPIRateLimit
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		if strings.Contains(msg, "active run") {
			return ErrRunActive
		}
		return ErrInvalidRequest
	}
	if status >= 500 {
		return ErrAPIResponse
	}
	return ErrAPIRequest
}
