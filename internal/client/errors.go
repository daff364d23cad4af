package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by
	// exchanging the refresh token. Stored tokens are already cleared.
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidBaseURL = errors.New("invalid base url")
)

const genericErrorDetail = "something went wrong"

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ErrorDetail returns the message to show for err: the backend detail of an
// *APIError, or the error text otherwise.
func ErrorDetail(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired, please log in again"
	}
	return err.Error()
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

func newAPIError(resp *http.Response) *APIError {
	const maxErrorBody = 64 << 10
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		Status: resp.StatusCode,
		Detail: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}
	if len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		apiErr.Detail = genericErrorDetail
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
		apiErr.Detail = detail
		return apiErr
	}

	// Validation failures may carry a list of issues instead of a string.
	var issues []validationIssue
	if err := json.Unmarshal(body.Detail, &issues); err == nil && len(issues) > 0 && issues[0].Msg != "" {
		apiErr.Detail = issues[0].Msg
		return apiErr
	}

	apiErr.Detail = genericErrorDetail
	return apiErr
}
