// Package logging holds the process-wide structured logger.
//
// Library packages call Logger() and log through log/slog. By default nothing
// is written; binaries install a handler with SetLogger, normally one built by
// New on top of github.com/charmbracelet/log.
package logging

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the process logger. Passing nil silences logging.
// Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current process logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Options configures New.
type Options struct {
	Level      string // debug, info, warn, error
	Timestamps bool
	Caller     bool
}

// New builds a slog.Logger that renders through charmbracelet/log.
// An unknown level falls back to info.
func New(w io.Writer, opts Options) *slog.Logger {
	lvl, err := charmlog.ParseLevel(opts.Level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	h := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          "arviewer",
	})
	return slog.New(h)
}
