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

// Package cliconfig assembles the configuration of the command line tool from defaults, a config
// file, the environment and flags.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/medbrief/dicom-normalizer/internal/report"
	"github.com/medbrief/dicom-normalizer/internal/uid"
	"github.com/medbrief/dicom-normalizer/normalize"
	"github.com/rs/zerolog"
)

// Config holds the configuration of a run or watch.
type Config struct {
	Input  string
	Output string

	StripPrivate bool
	Vendor       string
	StrictVerify bool

	Workers           int
	DecompressTimeout time.Duration
	Debounce          time.Duration

	LogFile  string
	Manifest string

	ImplementationUID     string
	ImplementationVersion string
	FallbackSOPClass      string

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.NumCPU(),
		Debounce:          2 * time.Second,
		ImplementationUID: normalize.DefaultImplementationClassUID,
		FallbackSOPClass:  normalize.DefaultFallbackSOPClassUID,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input directory is required")
	}
	if c.Output == "" {
		return errors.New("output directory is required")
	}
	info, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input %s is not a directory", c.Input)
	}
	if filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		return errors.New("output directory must differ from the input directory")
	}

	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Output, report.DefaultLogName)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.DecompressTimeout < 0 {
		return errors.New("decompress timeout must not be negative")
	}
	if c.Debounce <= 0 {
		return errors.New("debounce must be positive")
	}

	if c.Vendor != "" {
		if _, ok := normalize.LookupVendor(c.Vendor); !ok {
			return fmt.Errorf("unknown vendor %q (known: %s)", c.Vendor, strings.Join(vendorNames(), ", "))
		}
	}
	if !uid.Valid(c.ImplementationUID) {
		return fmt.Errorf("implementation uid %q is not a valid UID", c.ImplementationUID)
	}
	if c.FallbackSOPClass != "" && !uid.Valid(c.FallbackSOPClass) {
		return fmt.Errorf("fallback sop class %q is not a valid UID", c.FallbackSOPClass)
	}
	if len(c.ImplementationVersion) > 16 {
		return fmt.Errorf("implementation version %q is longer than 16 characters", c.ImplementationVersion)
	}

	return ValidateLogging(c.LogLevel, c.LogFormat)
}

// ValidateLogging checks the log level and format.
func ValidateLogging(level, format string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch format {
	case "console", "json":
	default:
		return fmt.Errorf("log format %q must be console or json", format)
	}
	return nil
}

// VendorFilter returns the configured vendor, or nil when no filter is set.
func (c *Config) VendorFilter() *normalize.Vendor {
	if c.Vendor == "" {
		return nil
	}
	v, ok := normalize.LookupVendor(c.Vendor)
	if !ok {
		return nil
	}
	return &v
}

// Options returns the per-file options of the configuration.
func (c *Config) Options() normalize.Options {
	return normalize.Options{
		StripPrivate:      c.StripPrivate,
		Vendor:            c.VendorFilter(),
		StrictVerify:      c.StrictVerify,
		DecompressTimeout: c.DecompressTimeout,
	}
}

// MetaConfig returns the file meta constants of the configuration.
func (c *Config) MetaConfig() normalize.MetaConfig {
	return normalize.MetaConfig{
		ImplementationClassUID:    c.ImplementationUID,
		ImplementationVersionName: c.ImplementationVersion,
		FallbackSOPClassUID:       c.FallbackSOPClass,
	}
}

func vendorNames() []string {
	var names []string
	for _, v := range normalize.Vendors() {
		names = append(names, v.Name)
	}
	return names
}

// configSetter applies values unless the corresponding flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
