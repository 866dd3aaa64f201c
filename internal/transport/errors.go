package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// APIError is the uniform shape every transport failure is normalized to.
type APIError struct {
	Err        string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // 0 when no response was received

	cause error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// MessageOf returns the user-facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// networkError builds the error for a request that produced no response.
func networkError(err error, timeout time.Duration) *APIError {
	msg := err.Error()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = fmt.Sprintf("timeout of %dms exceeded", timeout.Milliseconds())
	}
	if msg == "" {
		msg = "An error occurred"
	}
	return &APIError{Err: "Network Error", Message: msg, cause: err}
}

// responseError builds the error for a non-2xx response from its body.
func responseError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	// A body that is not the API's JSON error shape falls back to defaults.
	_ = json.Unmarshal(body, &payload)

	e := &APIError{Err: payload.Error, Message: payload.Message, StatusCode: status}
	if e.Err == "" {
		e.Err = "Network Error"
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("Request failed with status code %d", status)
	}
	return e
}
