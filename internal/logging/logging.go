// SPDX-License-Identifier: Apache-2.0

// Package logging builds the command's slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/wundergraph/go-halffit/internal/config"
)

// New returns a logger writing to w with the level and format from cfg.
// Unknown levels fall back to info, unknown formats to text.
func New(w io.Writer, cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Level parses a level name case-insensitively.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
