package server

import (
	"errors"
	"net/http"
	"strings"

	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	apikeydomain "github.com/waitlyhq/waitly/internal/apikey/domain"
	authdomain "github.com/waitlyhq/waitly/internal/auth/domain"
	embeddomain "github.com/waitlyhq/waitly/internal/embed/domain"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, apikeydomain.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, waitlistdomain.ErrEmailAlreadyRegistered),
		errors.Is(err, emaildomain.ErrAlreadySent):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, waitlistdomain.ErrReferralCodeExhausted):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "unavailable",
			Message: "could not allocate a referral code, retry the request",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword):
		return true
	case errors.Is(err, projectdomain.ErrInvalidOwner),
		errors.Is(err, projectdomain.ErrInvalidName):
		return true
	case errors.Is(err, waitlistdomain.ErrInvalidProject),
		errors.Is(err, waitlistdomain.ErrInvalidEmail),
		errors.Is(err, waitlistdomain.ErrInvalidStatus):
		return true
	case errors.Is(err, embeddomain.ErrInvalidProject),
		errors.Is(err, emaildomain.ErrInvalidProject),
		errors.Is(err, analyticsdomain.ErrInvalidProject),
		errors.Is(err, webhookdomain.ErrInvalidProject),
		errors.Is(err, apikeydomain.ErrInvalidProject):
		return true
	case errors.Is(err, embeddomain.ErrInvalidLabel),
		errors.Is(err, embeddomain.ErrInvalidType):
		return true
	case errors.Is(err, emaildomain.ErrInvalidName),
		errors.Is(err, emaildomain.ErrInvalidSubject),
		errors.Is(err, emaildomain.ErrInvalidTrigger),
		errors.Is(err, emaildomain.ErrNoRecipients):
		return true
	case errors.Is(err, analyticsdomain.ErrInvalidRange):
		return true
	case errors.Is(err, webhookdomain.ErrInvalidURL):
		return true
	case errors.Is(err, apikeydomain.ErrInvalidName):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, waitlistdomain.ErrEntryNotFound),
		errors.Is(err, embeddomain.ErrFieldNotFound),
		errors.Is(err, emaildomain.ErrTemplateNotFound),
		errors.Is(err, emaildomain.ErrCampaignNotFound),
		errors.Is(err, emaildomain.ErrEventNotFound),
		errors.Is(err, webhookdomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, waitlistdomain.ErrEmailAlreadyRegistered):
		return "email already registered"
	case errors.Is(err, emaildomain.ErrAlreadySent):
		return "campaign already sent"
	default:
		return "conflict"
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, emaildomain.ErrNoRecipients):
		return "no_recipients"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "no_recipients":
		return "recipients"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "no_recipients":
		return "no active entries to send to"
	default:
		return "invalid value"
	}
}
