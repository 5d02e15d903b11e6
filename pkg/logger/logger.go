// Package logger provides the leveled key/value logger used across dayplan,
// backed by charmbracelet/log.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

type Logger interface {
	Debug(interface{}, ...interface{})
	Info(interface{}, ...interface{})
	Warn(interface{}, ...interface{})
	Error(interface{}, ...interface{})
	Fatal(interface{}, ...interface{})
}

type Options struct {
	Writer io.Writer
	Level  string
	Prefix string
}

// New builds a Logger writing to opts.Writer (stderr by default).
// An unknown level falls back to info.
func New(opts Options) Logger {
	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}

	lvl, err := log.ParseLevel(opts.Level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
	})
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() Logger {
	return log.New(io.Discard)
}
