// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging configures the zerolog logger of the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = New(os.Stderr, zerolog.InfoLevel, false)

// New returns a logger writing to w. Without json the output is human readable.
func New(w io.Writer, level zerolog.Level, json bool) zerolog.Logger {
	if !json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Configure replaces the package logger. format is "console" or "json".
func Configure(level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch format {
	case "console":
		logger = New(os.Stderr, lvl, false)
	case "json":
		logger = New(os.Stderr, lvl, true)
	default:
		return fmt.Errorf("log format %q must be console or json", format)
	}
	return nil
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}
