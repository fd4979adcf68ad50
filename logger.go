/*
Copyright © 2026 Drawsarous Authors
*/

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func newLogger(cfg *Config) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
