package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrConflict           = "CONFLICT"
	ErrQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrAccountBlocked     = "ACCOUNT_BLOCKED"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrPayloadTooLarge    = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the error envelope. Error is always a plain message so
// clients that only read "error" keep working.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

func warn(c *gin.Context, msg string, fields map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}
	fields["request_id"] = middleware.GetRequestID(c)
	fields["path"] = c.Request.URL.Path
	log.Warn(msg, fields)
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", map[string]interface{}{"message": message})
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	warn(c, "Bad request", fields)
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// ValidationError returns a 400 response listing each offending field.
func ValidationError(c *gin.Context, fields map[string]string) {
	details := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		details[field] = msg
	}
	warn(c, "Validation error", map[string]interface{}{"fields": details})
	respond(c, http.StatusBadRequest, ErrValidation, validationMessage(fields), details)
}

// validationMessage picks a single readable message for the error field.
// A lone field keeps its own message so a form can show it verbatim.
func validationMessage(fields map[string]string) string {
	if len(fields) == 1 {
		for field, msg := range fields {
			return field + ": " + msg
		}
	}
	return "Validation failed for one or more fields"
}

// Conflict returns a 409 response carrying the number of dependent records.
func Conflict(c *gin.Context, message string, count int) {
	warn(c, "Conflict", map[string]interface{}{"message": message, "count": count})
	respond(c, http.StatusConflict, ErrConflict, message, map[string]interface{}{"count": count})
}

// QuotaExceeded returns a 507 response when local storage is full.
func QuotaExceeded(c *gin.Context) {
	warn(c, "Storage quota exceeded", map[string]interface{}{})
	respond(c, http.StatusInsufficientStorage, ErrQuotaExceeded, "Storage quota exceeded", nil)
}

// Unauthorized returns a 401 response for failed credential checks.
func Unauthorized(c *gin.Context, message string) {
	warn(c, "Unauthorized", map[string]interface{}{"message": message})
	respond(c, http.StatusUnauthorized, ErrInvalidCredentials, message, nil)
}

// Forbidden returns a 403 response for blocked accounts.
func Forbidden(c *gin.Context, message string) {
	warn(c, "Forbidden", map[string]interface{}{"message": message})
	respond(c, http.StatusForbidden, ErrAccountBlocked, message, nil)
}

// ServiceUnavailable returns a 503 response for readiness failures.
func ServiceUnavailable(c *gin.Context, message string) {
	warn(c, "Service unavailable", map[string]interface{}{"message": message})
	respond(c, http.StatusServiceUnavailable, ErrServiceUnavailable, message, nil)
}

// PayloadTooLarge returns a 413 response for bodies over the size limit.
func PayloadTooLarge(c *gin.Context, limit int64) {
	warn(c, "Request body too large", map[string]interface{}{"limit": limit})
	respond(c, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge, "Request body too large", nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The underlying error is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// FromError renders a store error with its matching status. resource names
// the entity in the not-found message; anything unrecognised becomes a 500.
func FromError(c *gin.Context, err error, resource string) {
	var verr *store.ValidationError
	var conflict *store.ConflictError

	switch {
	case errors.As(err, &verr):
		ValidationError(c, verr.Fields)
	case errors.Is(err, store.ErrValidation):
		BadRequest(c, err.Error(), nil)
	case errors.As(err, &conflict):
		Conflict(c, conflict.Message, conflict.Count)
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, resource+" not found")
	case errors.Is(err, store.ErrQuotaExceeded):
		QuotaExceeded(c)
	default:
		InternalServerError(c, "An unexpected error occurred", err)
	}
}

// BindError renders a request-binding failure: struct tag violations
// become a field map, malformed JSON a plain 400, and a body cut off by
// the size limit a 413.
func BindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		PayloadTooLarge(c, tooLarge.Limit)
		return
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		ValidationError(c, fieldMessages(fieldErrs))
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		BadRequest(c, "Malformed JSON body", nil)
	case errors.As(err, &typeErr):
		BadRequest(c, "Invalid type for field "+typeErr.Field, nil)
	default:
		BadRequest(c, "Invalid request body", map[string]interface{}{"reason": err.Error()})
	}
}

func fieldMessages(fieldErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = store.FormatFieldError(fe)
	}
	return fields
}
