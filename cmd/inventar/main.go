package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/erazemk/inventar/internal/output"
)

// levelRouter is a slog.Handler that routes INFO/WARN to one writer and
// ERROR+ to another.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR
// goes to stderr. If logPath is non-empty, all levels are also written to
// that file. The returned cleanup closes the log file and is never nil.
func setupLogger(logPath string, stdout, stderr io.Writer) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdout, opts),
		stderr: slog.NewTextHandler(stderr, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
