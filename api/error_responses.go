package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrorCodeFacetNotFound        ErrorCode = "FACET_NOT_FOUND"
	ErrorCodeUnsupportedFacetType ErrorCode = "UNSUPPORTED_FACET_TYPE"
	ErrorCodeMalformedResponse    ErrorCode = "MALFORMED_RESPONSE"
	ErrorCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON          ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery         ErrorCode = "INVALID_QUERY"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	// Add request ID if available
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendTranslationError maps pipeline errors to status codes
func SendTranslationError(c *gin.Context, operation string, err error) {
	var facetErr *internalErrors.FacetNotFoundError
	var validationErr *internalErrors.ValidationError

	switch {
	case errors.As(err, &facetErr):
		SendError(c, http.StatusUnprocessableEntity, ErrorCodeFacetNotFound, err.Error(),
			ErrorDetail{Field: facetErr.Field, Message: "filtered field has no facet definition"})
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(),
			ErrorDetail{Field: validationErr.Field, Message: validationErr.Message, Code: "VALIDATION_ERROR"})
	case errors.Is(err, internalErrors.ErrUnsupportedFacetType):
		SendError(c, http.StatusBadRequest, ErrorCodeUnsupportedFacetType, err.Error())
	case errors.Is(err, internalErrors.ErrMalformedResponse):
		// only the upstream engine can send a malformed response during a search
		status := http.StatusBadRequest
		if operation == "search" {
			status = http.StatusBadGateway
		}
		SendError(c, status, ErrorCodeMalformedResponse, err.Error())
	case errors.Is(err, internalErrors.ErrTransport):
		SendError(c, http.StatusBadGateway, ErrorCodeSearchFailed,
			"Search failed: "+err.Error())
	default:
		SendInternalError(c, operation, err)
	}
}
