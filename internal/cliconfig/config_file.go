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

package cliconfig

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config with durations as strings. Paths are not configurable from a file.
type FileConfig struct {
	StripPrivate          *bool  `toml:"strip_private" yaml:"strip_private"`
	Vendor                string `toml:"vendor" yaml:"vendor"`
	StrictVerify          *bool  `toml:"strict_verify" yaml:"strict_verify"`
	Workers               int    `toml:"workers" yaml:"workers"`
	DecompressTimeout     string `toml:"decompress_timeout" yaml:"decompress_timeout"`
	Debounce              string `toml:"debounce" yaml:"debounce"`
	LogFile               string `toml:"log_file" yaml:"log_file"`
	Manifest              string `toml:"manifest" yaml:"manifest"`
	ImplementationUID     string `toml:"implementation_uid" yaml:"implementation_uid"`
	ImplementationVersion string `toml:"implementation_version" yaml:"implementation_version"`
	FallbackSOPClass      string `toml:"fallback_sop_class" yaml:"fallback_sop_class"`
	LogLevel              string `toml:"log_level" yaml:"log_level"`
	LogFormat             string `toml:"log_format" yaml:"log_format"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or .yml are YAML, anything
// else is TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.dicom-normalize/config.toml, or the empty string when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".dicom-normalize", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("vendor", fc.Vendor, &cfg.Vendor)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("manifest", fc.Manifest, &cfg.Manifest)
	s.setString("implementation-uid", fc.ImplementationUID, &cfg.ImplementationUID)
	s.setString("implementation-version", fc.ImplementationVersion, &cfg.ImplementationVersion)
	s.setString("fallback-sop-class", fc.FallbackSOPClass, &cfg.FallbackSOPClass)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("decompress-timeout", fc.DecompressTimeout, &cfg.DecompressTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setInt("workers", fc.Workers, &cfg.Workers)

	s.setBool("strip-private", fc.StripPrivate, &cfg.StripPrivate)
	s.setBool("strict-verify", fc.StrictVerify, &cfg.StrictVerify)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
