// Package log provides category-tagged structured logging for tada.
// Logging is silent until Init is called (--debug flag or TADA_DEBUG env),
// since stdout belongs to the CLI and the TUI.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Category groups related log messages.
type Category string

const (
	CatStore    Category = "store"    // persistence backends
	CatRegistry Category = "registry" // list creation, lookups, appends
	CatCache    Category = "cache"    // cache hits and invalidation
	CatConfig   Category = "config"   // configuration loading/saving
	CatCLI      Category = "cli"      // command dispatch
	CatUI       Category = "ui"       // interactive view
)

var (
	mu     sync.RWMutex
	logger = charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
	file   *os.File
)

// Init starts writing logfmt records to path at debug level.
// Returns a cleanup function that closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	mu.Lock()
	file = f
	logger = charmlog.NewWithOptions(f, charmlog.Options{
		Level:           charmlog.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05",
		Formatter:       charmlog.LogfmtFormatter,
	})
	mu.Unlock()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if file != nil {
			_ = file.Close()
			file = nil
		}
		logger = charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
	}, nil
}

// SetOutput redirects logging to w at debug level. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = charmlog.NewWithOptions(w, charmlog.Options{
		Level:     charmlog.DebugLevel,
		Formatter: charmlog.LogfmtFormatter,
	})
}

func current(cat Category) *charmlog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With("cat", string(cat))
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { current(cat).Debug(msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { current(cat).Info(msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { current(cat).Warn(msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { current(cat).Error(msg, fields...) }

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	current(cat).Error(msg, fields...)
}
