package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware wraps a transport.
type Middleware func(http.RoundTripper) http.RoundTripper

// ChainTransport wraps base so the first middleware sees the request first.
// A nil base means http.DefaultTransport.
func ChainTransport(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// UserAgent sets the User-Agent header when the caller did not.
func UserAgent(agent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", agent)
			return next.RoundTrip(r)
		})
	}
}

// WireLogging logs every round trip at trace level. Headers are never logged.
func WireLogging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			ev := logger.Trace().Str("method", r.Method).Str("url", r.URL.Redacted()).Dur("duration", time.Since(start))
			if err != nil {
				ev.Err(err).Msg("round trip failed")
				return resp, err
			}
			ev.Int("status", resp.StatusCode).Msg("round trip")
			return resp, nil
		})
	}
}
