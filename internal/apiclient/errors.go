package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is returned for every non-2xx answer from the backend
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NotFound reports whether the backend answered 404
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// Transient reports whether retrying the request may succeed
func (e *APIError) Transient() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// IsAbort reports whether err is the result of a cancelled request. Aborts are
// not failures and must never be surfaced.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled)
}

// AsAPIError extracts an *APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorCode extracts the machine readable code of an error body, if any
func errorCode(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"code", "errorCode", "error.code"} {
		if code := gjson.GetBytes(body, path); code.Type == gjson.String {
			return code.String()
		}
	}
	return ""
}

// errorMessage picks a human readable message out of an error body
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error", "error.message", "title"} {
			if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.String() != "" {
				return msg.String()
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
