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

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "DICOMNORM_"

// ApplyEnvConfig applies DICOMNORM_* environment variables to cfg, except for flags that were set
// explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("vendor", os.Getenv(EnvPrefix+"VENDOR"), &cfg.Vendor)
	s.setString("log-file", os.Getenv(EnvPrefix+"LOG_FILE"), &cfg.LogFile)
	s.setString("manifest", os.Getenv(EnvPrefix+"MANIFEST"), &cfg.Manifest)
	s.setString("implementation-uid", os.Getenv(EnvPrefix+"IMPLEMENTATION_UID"), &cfg.ImplementationUID)
	s.setString("implementation-version", os.Getenv(EnvPrefix+"IMPLEMENTATION_VERSION"), &cfg.ImplementationVersion)
	s.setString("fallback-sop-class", os.Getenv(EnvPrefix+"FALLBACK_SOP_CLASS"), &cfg.FallbackSOPClass)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv(EnvPrefix+"LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("decompress-timeout", os.Getenv(EnvPrefix+"DECOMPRESS_TIMEOUT"), &cfg.DecompressTimeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv(EnvPrefix+"DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("workers", os.Getenv(EnvPrefix+"WORKERS"), &cfg.Workers); err != nil {
		return err
	}

	s.setBoolFromString("strip-private", os.Getenv(EnvPrefix+"STRIP_PRIVATE"), &cfg.StripPrivate)
	s.setBoolFromString("strict-verify", os.Getenv(EnvPrefix+"STRICT_VERIFY"), &cfg.StrictVerify)

	return nil
}
