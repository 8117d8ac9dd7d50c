package main

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes JSON records to stderr, keeping stdout free for the
// summary line, and optionally to a rotating file.
func newLogger(level slog.Leveler, file string) *slog.Logger {
	var w io.Writer = os.Stderr
	if file != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			LocalTime:  true,
			MaxSize:    20,
			MaxBackups: 3,
		})
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
