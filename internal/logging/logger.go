// v0
// internal/logging/logger.go
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init builds a text slog.Logger writing to stdout and to logPath. If the
// file cannot be opened it logs to stdout only. The returned closer closes
// the log file and is never nil.
func Init(logPath, level string) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if logPath == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), io.NopCloser(nil)
	}
	if dir := filepath.Dir(logPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l := slog.New(slog.NewTextHandler(os.Stdout, opts))
		l.Error("failed to open log file", "path", logPath, "err", err)
		return l, io.NopCloser(nil)
	}
	mw := io.MultiWriter(os.Stdout, f)
	l := slog.New(slog.NewTextHandler(mw, opts))
	// keep stdlib log (gorilla access log, paho) on the same writers
	log.SetOutput(mw)
	l.Info("logger initialized", "file", logPath)
	return l, f
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
