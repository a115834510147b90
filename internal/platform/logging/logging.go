// Copyright (c) 2026 CoPla. All rights reserved.

// Package logging builds the structured JSON logger shared by the API server
// and the copla CLI, with optional size-based file rotation.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log records go.
type Options struct {
	// Debug lowers the level from Info to Debug.
	Debug bool

	// Console receives every record when non-nil (os.Stdout for the server).
	Console io.Writer

	// FilePath enables a rotating log file when set.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Attrs are attached to every record, e.g. the app name and version.
	Attrs []slog.Attr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a JSON logger writing to the configured sinks and a closer
// releasing the log file. With no sink configured records are discarded.
func New(options Options) (*slog.Logger, io.Closer) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if options.Console != nil {
		writers = append(writers, options.Console)
	}

	if options.FilePath != "" {
		file := &lumberjack.Logger{
			Filename:   options.FilePath,
			MaxSize:    orDefault(options.MaxSizeMB, 50),
			MaxBackups: orDefault(options.MaxBackups, 5),
			MaxAge:     options.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}).WithAttrs(options.Attrs)
	return slog.New(handler), closer
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
