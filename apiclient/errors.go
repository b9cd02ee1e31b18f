package apiclient

import (
	"encoding/json"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/internal/utils"
)

// Kind classifies a failed request.
type Kind int

const (
	KindRateLimited    Kind = iota + 1 // Blocked locally before any network call
	KindSessionExpired                 // Token missing or inside the expiry buffer
	KindUnauthorized                   // Server answered 401
	KindHTTP                           // Any other non 2xx status
	KindNetwork                        // No response received
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindSessionExpired:
		return "session_expired"
	case KindUnauthorized:
		return "unauthorized"
	case KindHTTP:
		return "http_error"
	case KindNetwork:
		return "network_failure"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindRateLimited:
		return apperrors.ErrRateLimited
	case KindSessionExpired:
		return apperrors.ErrSessionExpired
	case KindUnauthorized:
		return apperrors.ErrUnauthorized
	case KindHTTP:
		return apperrors.ErrHTTP
	case KindNetwork:
		return apperrors.ErrNetwork
	}
	return apperrors.ErrInternal
}

// ErrorBody is the optional JSON body a failing endpoint returns. A body that
// does not decode leaves every field empty.
type ErrorBody struct {
	Message *string `json:"message,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// GetMessage returns the message field or "".
func (b *ErrorBody) GetMessage() string {
	if b == nil {
		return ""
	}
	return utils.Value(b.Message)
}

// GetError returns the error field or "".
func (b *ErrorBody) GetError() string {
	if b == nil {
		return ""
	}
	return utils.Value(b.Error)
}

func decodeErrorBody(data []byte) *ErrorBody {
	body := &ErrorBody{}
	if err := json.Unmarshal(data, body); err != nil {
		return &ErrorBody{}
	}
	return body
}

// Error is returned for every failed Fetch. UserMessage is always populated;
// Status and Data are set only for failures derived from an HTTP response.
type Error struct {
	Kind        Kind
	Message     string
	Status      int
	Data        *ErrorBody
	UserMessage string
	RequestID   string
	Err         error // Underlying transport error, if any
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode implements errors.StatusCoder.
func (e *Error) StatusCode() int {
	return e.Status
}

// Unwrap exposes the sentinel for the kind and the underlying cause, so
// errors.Is(err, errors.ErrUnauthorized) and errors.Is(err, context.Canceled)
// both work.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// AsError returns err as *Error when it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if apperrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// UserMessage returns display text for any error, preferring the text
// attached by the pipeline.
func UserMessage(err error) string {
	if apiErr, ok := AsError(err); ok && apiErr.UserMessage != "" {
		return apiErr.UserMessage
	}
	return apperrors.UserMessage(err)
}
