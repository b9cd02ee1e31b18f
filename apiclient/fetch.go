package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/ratelimit"
)

const maxErrorBody = 1 << 20

// RequestOptions mirrors the parts of an HTTP request a caller controls.
// For multipart bodies set IsFormData and pass the writer's content type in
// Header.
type RequestOptions struct {
	Method     string
	Header     http.Header
	Body       io.Reader
	IsFormData bool
}

// PipelineConfig switches individual pipeline stages off for a request.
type PipelineConfig struct {
	SkipRateLimit bool
	RateLimitType string // Rate limit category, "api" when empty
	SkipAuth      bool   // No expiry guard and no Authorization decoration
}

// Fetch runs a request through the pipeline. A 2xx response is returned
// untouched and the caller owns its body. Every failure is an *Error with a
// populated UserMessage. Nothing is retried.
func (c *Client) Fetch(ctx context.Context, url string, opts RequestOptions, cfg PipelineConfig) (*http.Response, error) {
	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.fetch(ctx, url, opts, cfg)
	if err != nil {
		apiErr := c.normalize(err, requestID)
		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", methodOf(opts)).
			Str("url", url).
			Str("kind", apiErr.Kind.String()).
			Int("status", apiErr.Status).
			Dur("duration", time.Since(start)).
			Msg("request failed")
		return nil, apiErr
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", methodOf(opts)).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, url string, opts RequestOptions, cfg PipelineConfig) (*http.Response, error) {
	if !cfg.SkipRateLimit {
		category := cfg.RateLimitType
		if category == "" {
			category = ratelimit.CategoryAPI
		}
		if res := c.limiter.Check(url, category); !res.Allowed {
			c.logger.Warn().Str("category", category).Int("count", res.Count).Msg("request blocked by rate limiter")
			return nil, &Error{Kind: KindRateLimited, Message: res.Message, UserMessage: res.Message}
		}
	}

	if !cfg.SkipAuth && c.store.IsTokenExpired(ctx) {
		c.broadcast(msgSessionExpired, http.StatusUnauthorized)
		return nil, &Error{
			Kind:        KindSessionExpired,
			Message:     msgSessionExpired,
			Status:      http.StatusUnauthorized,
			UserMessage: msgSessionExpired,
		}
	}

	var header http.Header
	if cfg.SkipAuth {
		header = opts.Header.Clone()
		if header == nil {
			header = http.Header{}
		}
	} else {
		header = mergeHeaders(c.BuildHeaders(ctx, opts.IsFormData), opts.Header)
	}

	req, err := http.NewRequestWithContext(ctx, methodOf(opts), url, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		body := readErrorBody(resp)
		message := body.GetMessage()
		if message == "" {
			message = msgUnauthorized
		}
		c.broadcast(message, http.StatusUnauthorized)
		return nil, &Error{
			Kind:        KindUnauthorized,
			Message:     message,
			Status:      http.StatusUnauthorized,
			Data:        body,
			UserMessage: message,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readErrorBody(resp)
		message := body.GetMessage()
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, &Error{
			Kind:    KindHTTP,
			Message: message,
			Status:  resp.StatusCode,
			Data:    body,
		}
	}

	return resp, nil
}

// normalize turns any failure into an *Error carrying a user message.
func (c *Client) normalize(err error, requestID string) *Error {
	apiErr, ok := err.(*Error)
	if !ok {
		apiErr = &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	if apiErr.UserMessage == "" {
		apiErr.UserMessage = apperrors.UserMessage(apiErr)
	}
	apiErr.RequestID = requestID
	return apiErr
}

func (c *Client) broadcast(message string, status int) {
	c.logger.Warn().Int("status", status).Str("message", message).Msg("broadcasting auth error")
	c.events.Emit(message, status)
}

// readErrorBody drains and closes the response body. Bodies that are not a
// JSON object decode to an empty ErrorBody.
func readErrorBody(resp *http.Response) *ErrorBody {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &ErrorBody{}
	}
	return decodeErrorBody(data)
}

func methodOf(opts RequestOptions) string {
	if opts.Method == "" {
		return http.MethodGet
	}
	return opts.Method
}
