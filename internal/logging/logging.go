/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures the optional rotating JSON log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup configures zerolog for the process.
func Setup(environment string) zerolog.Logger {
	return SetupWithFile(environment, FileOptions{})
}

// SetupWithFile configures zerolog with console output and, when
// opts.Path is set, a rotating JSON file alongside it. Extra writers (the
// server's log buffer) receive the same JSON lines.
func SetupWithFile(environment string, opts FileOptions, extra ...io.Writer) zerolog.Logger {
	var writers []io.Writer
	if opts.Path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    valueOr(opts.MaxSizeMB, 50),
			MaxBackups: valueOr(opts.MaxBackups, 5),
			MaxAge:     valueOr(opts.MaxAgeDays, 14),
			Compress:   true,
		})
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		return SetupWithWriter(environment, nil)
	case 1:
		return SetupWithWriter(environment, writers[0])
	}
	return SetupWithWriter(environment, zerolog.MultiLevelWriter(writers...))
}

// SetupWithWriter configures zerolog with an additional JSON writer.
func SetupWithWriter(environment string, additionalWriter io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}

	var writer io.Writer = consoleWriter
	if additionalWriter != nil {
		writer = zerolog.MultiLevelWriter(consoleWriter, additionalWriter)
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
