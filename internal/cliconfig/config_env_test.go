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
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all env vars",
			envVars: map[string]string{
				"DICOMNORM_VENDOR":                 "Philips",
				"DICOMNORM_LOG_FILE":               "/l.csv",
				"DICOMNORM_MANIFEST":               "/m.jsonl",
				"DICOMNORM_IMPLEMENTATION_UID":     "1.2.3",
				"DICOMNORM_IMPLEMENTATION_VERSION": "V1",
				"DICOMNORM_FALLBACK_SOP_CLASS":     "1.2.4",
				"DICOMNORM_LOG_LEVEL":              "error",
				"DICOMNORM_LOG_FORMAT":             "json",
				"DICOMNORM_DECOMPRESS_TIMEOUT":     "10s",
				"DICOMNORM_DEBOUNCE":               "1s",
				"DICOMNORM_WORKERS":                "4",
				"DICOMNORM_STRIP_PRIVATE":          "1",
				"DICOMNORM_STRICT_VERIFY":          "true",
			},
			changed: map[string]bool{},
			expected: Config{
				Vendor:                "Philips",
				LogFile:               "/l.csv",
				Manifest:              "/m.jsonl",
				ImplementationUID:     "1.2.3",
				ImplementationVersion: "V1",
				FallbackSOPClass:      "1.2.4",
				LogLevel:              "error",
				LogFormat:             "json",
				DecompressTimeout:     10 * time.Second,
				Debounce:              time.Second,
				Workers:               4,
				StripPrivate:          true,
				StrictVerify:          true,
			},
		},
		{
			name:     "respects changed flags",
			envVars:  map[string]string{"DICOMNORM_WORKERS": "4", "DICOMNORM_VENDOR": "GE"},
			changed:  map[string]bool{"workers": true},
			initial:  Config{Workers: 1},
			expected: Config{Workers: 1, Vendor: "GE"},
		},
		{
			name:     "bool 'false' clears",
			envVars:  map[string]string{"DICOMNORM_STRIP_PRIVATE": "false"},
			changed:  map[string]bool{},
			initial:  Config{StripPrivate: true},
			expected: Config{},
		},
		{
			name:     "non positive workers ignored",
			envVars:  map[string]string{"DICOMNORM_WORKERS": "0"},
			changed:  map[string]bool{},
			initial:  Config{Workers: 2},
			expected: Config{Workers: 2},
		},
		{
			name:    "invalid duration",
			envVars: map[string]string{"DICOMNORM_DECOMPRESS_TIMEOUT": "later"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "invalid int",
			envVars: map[string]string{"DICOMNORM_WORKERS": "lots"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Fatalf("got %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
