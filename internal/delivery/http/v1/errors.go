package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-tasks/internal/services"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Could not validate credentials"
	msgInvalidRefresh     = "Invalid or expired refresh token"
)

type apiError struct {
	Code    int    `json:"-"`
	Message string `json:"detail"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newUnprocessableError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// newServiceError maps a service error to its response. Unknown errors
// become a bare 500.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError(detail(err))
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSessionExpired):
		return newUnauthorizedError(msgInvalidRefresh)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrLabelNotFound):
		return newNotFoundError(detail(err))
	case errors.Is(err, services.ErrEmailAlreadyRegistered),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrInvalidRefreshToken),
		errors.Is(err, services.ErrCurrentPasswordRequired),
		errors.Is(err, services.ErrCurrentPasswordIncorrect),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrLabelAlreadyExists),
		errors.Is(err, services.ErrInvalidLabelIDs):
		return newBadRequestError(detail(err))
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

// detail capitalizes the first letter of err's message.
func detail(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

// newBindError turns a binding failure into 422 for rule violations and
// 400 for malformed bodies.
func newBindError(err error) apiError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return newUnprocessableError(fieldErrorMessage(validationErrs[0]))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return newUnprocessableError(fmt.Sprintf("%s: invalid value", typeErr.Field))
	}
	return newBadRequestError(msgInvalidRequestBody)
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", field)
	case "email":
		return fmt.Sprintf("%s: value is not a valid email address", field)
	case "min":
		return fmt.Sprintf("%s: should have at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: should have at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: should be %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case priorityTag:
		return fmt.Sprintf("%s: should be High, Medium, Low", field)
	case usernameTag:
		return fmt.Sprintf("%s: must contain only alphanumeric characters and underscores", field)
	case hexColorTag:
		return fmt.Sprintf("%s: must be a valid hex code (e.g., #FF5733)", field)
	default:
		return fmt.Sprintf("%s: invalid value", field)
	}
}
