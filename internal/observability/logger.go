// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// InitLogger configures the process logger: human-readable console output
// when stdout is a terminal, JSON otherwise. Unknown levels fall back to
// info.
func InitLogger(app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if term.IsTerminal(int(os.Stdout.Fd())) {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
