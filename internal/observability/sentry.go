package observability

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
)

func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// ShouldReport is true for failures worth an alert: the server being
// unreachable or answering 5xx. Auth, rate limit and 4xx failures are routine.
func ShouldReport(err error) bool {
	if err == nil {
		return false
	}

	var sc apperrors.StatusCoder
	if apperrors.As(err, &sc) && sc.StatusCode() != 0 {
		return sc.StatusCode() >= http.StatusInternalServerError
	}
	return apperrors.Is(err, apperrors.ErrNetwork)
}

// CaptureError reports err when ShouldReport allows it. It is a no-op while
// sentry is not initialised.
func CaptureError(err error, tags map[string]string) bool {
	if !ShouldReport(err) {
		return false
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
	return true
}
