package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	CodeMissingToken            = "MISSING_TOKEN"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeAccountDisabled         = "ACCOUNT_DISABLED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeDatabaseError           = "DATABASE_ERROR"
	CodeServiceUnavailable      = "SERVICE_UNAVAILABLE"
	CodeThrottled               = "THROTTLED"
)

// SendError writes the standard error envelope.
func SendError(c *gin.Context, status int, code, errorMessage, detailedMessage string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:   errorMessage,
		Message: detailedMessage,
		Code:    code,
		Details: details,
	})
}

// AbortWithError writes the envelope and stops the middleware chain.
func AbortWithError(c *gin.Context, status int, code, errorMessage, detailedMessage string) {
	SendError(c, status, code, errorMessage, detailedMessage, nil)
	c.Abort()
}

func SendValidationError(c *gin.Context, message string, details interface{}) {
	SendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", message, details)
}

// SendFieldError reports a single invalid field.
func SendFieldError(c *gin.Context, field, message string) {
	SendValidationError(c, message, map[string][]string{field: {message}})
}

func SendNotFoundError(c *gin.Context, resource string) {
	SendError(c, http.StatusNotFound, CodeResourceNotFound, "Resource not found",
		"The requested "+resource+" was not found", nil)
}

func SendForbidden(c *gin.Context, message string) {
	SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Permission denied", message, nil)
}

func SendDatabaseError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Database error", message, nil)
}

// SendBindingError turns gin binding failures into per-field details.
func SendBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		SendValidationError(c, "Invalid request body", nil)
		return
	}
	details := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		details[field] = append(details[field], describe(fe))
	}
	SendValidationError(c, "One or more fields are invalid", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	case "weekday":
		return "Must be a day of the week, e.g. Monday."
	case "clock":
		return "Use the HH:MM format."
	case "isodate":
		return "Use the YYYY-MM-DD format."
	case "gender":
		return "Must be one of: male female other."
	case "reporttype":
		return "Must be one of: appointments finance users."
	case "reportformat":
		return "Must be one of: csv xlsx pdf."
	}
	return "Invalid value."
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
