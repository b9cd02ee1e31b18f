package errors

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

const (
	msgGeneric      = "Something went wrong. Please try again."
	msgTimeout      = "The request timed out. Please try again."
	msgCancelled    = "The request was cancelled."
	msgOffline      = "Unable to reach the server. Please check your internet connection and try again."
	msgRateLimited  = "Too many requests. Please wait a moment and try again."
	msgSession      = "Session expired. Please log in again."
	msgUnauthorized = "Unauthorized – please log in again."
)

// StatusCoder is implemented by errors that originate from an HTTP response.
type StatusCoder interface {
	StatusCode() int
}

// UserMessage returns display-ready text describing err. It never returns an
// empty string for a non-nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, ErrRateLimited):
		return msgRateLimited
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrMalformedToken), errors.Is(err, ErrNoSession):
		return msgSession
	}

	var sc StatusCoder
	if errors.As(err, &sc) && sc.StatusCode() != 0 {
		return StatusMessage(sc.StatusCode())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return msgTimeout
	}

	if isNetworkError(err) {
		return msgOffline
	}

	if errors.Is(err, ErrUnauthorized) {
		return msgUnauthorized
	}

	return msgGeneric
}

// StatusMessage maps an HTTP status code to user facing text.
func StatusMessage(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "The request was invalid. Please check your input and try again."
	case status == http.StatusUnauthorized:
		return msgUnauthorized
	case status == http.StatusForbidden:
		return "You do not have permission to perform this action."
	case status == http.StatusNotFound:
		return "The requested resource was not found."
	case status == http.StatusRequestTimeout:
		return msgTimeout
	case status == http.StatusConflict:
		return "This record conflicts with an existing one."
	case status == http.StatusRequestEntityTooLarge:
		return "The uploaded file is too large."
	case status == http.StatusUnprocessableEntity:
		return "Some of the submitted data is invalid."
	case status == http.StatusTooManyRequests:
		return msgRateLimited
	case status >= 500:
		return "Server error. Please try again later."
	}
	return msgGeneric
}

func isNetworkError(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}
