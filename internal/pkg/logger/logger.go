package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects the sinks of a Logger.
type Options struct {
	// Verbose enables a text handler on Stderr.
	Verbose bool
	Stderr  io.Writer
	// File appends JSON records to this path when set.
	File  string
	Level string
}

// SlogLogger implements ports.Logger on top of log/slog.
type SlogLogger struct {
	log  *slog.Logger
	file *os.File
}

// New builds a logger fanning out to every configured sink. Without sinks all
// records are discarded, so callers that own stdout stay silent.
func New(opts Options) *SlogLogger {
	level := parseLevel(opts.Level)
	var handlers []slog.Handler

	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err == nil {
			f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				file = f
				handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
			}
		}
	}

	var handler slog.Handler = slog.DiscardHandler
	if len(handlers) > 0 {
		handler = slogmulti.Fanout(handlers...)
	}
	return &SlogLogger{log: slog.New(handler), file: file}
}

// Close releases the log file, if any.
func (l *SlogLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	a := attrs(fields)
	if err != nil {
		a = append(a, slog.String("error", err.Error()))
	}
	l.log.LogAttrs(context.Background(), slog.LevelError, msg, a...)
}

func attrs(fields map[string]interface{}) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	out := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
