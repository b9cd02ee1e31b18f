package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-agri-client/apiclient"
	"github.com/jrsteele09/go-agri-client/internal/config"
	"github.com/jrsteele09/go-agri-client/internal/observability"
	"github.com/jrsteele09/go-agri-client/session"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			code = 1
		}
	}()

	if len(args) < 1 {
		printUsage(stdout)
		return 2
	}
	cmd, ok := commands()[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(stderr, "load config: %s\n", err)
		return 1
	}
	logger := observability.NewLogger(cfg.GetEnv(), cfg.GetLogLevel())

	if err := observability.InitSentry(cfg.GetSentryDSN(), cfg.GetEnv(), version); err != nil {
		logger.Warn().Err(err).Msg("sentry init failed")
	}
	defer observability.FlushSentry()

	a, err := newApp(ctx, cfg, logger, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}
	defer a.Close()

	if cmd.banner {
		displayAppname(stdout, cfg.GetAppName())
	}
	if err := cmd.run(a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		observability.CaptureError(err, map[string]string{"command": cmd.name})
		logger.Debug().Err(err).Str("command", cmd.name).Msg("command failed")
		fmt.Fprintln(stderr, displayError(err))
		return 1
	}
	return 0
}

// displayError prefers the text each layer prepared for the user.
func displayError(err error) string {
	var loginErr *session.LoginError
	if errors.As(err, &loginErr) {
		return loginErr.Message
	}
	if apiErr, ok := apiclient.AsError(err); ok {
		return apiErr.UserMessage
	}
	return err.Error()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
