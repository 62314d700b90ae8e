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

// Command dicom-normalize rewrites a tree of DICOM files into uniform, self-describing Part 10
// files.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/medbrief/dicom-normalizer/internal/cliconfig"
	"github.com/medbrief/dicom-normalizer/internal/logging"
)

const longHelp = `Normalize a directory tree of DICOM files.

Every input file is rewritten below the output directory with a complete file meta group, a
declared transfer syntax and, where a decoder is available, decompressed pixel data. Inputs that
cannot be read are recorded in the CSV log and do not stop the run.`

var exampleUsage = strings.TrimSpace(`
  dicom-normalize run ./incoming ./normalized
  dicom-normalize run --vendor GE --strip-private ./incoming ./normalized
  dicom-normalize watch ./incoming ./normalized
  dicom-normalize inspect ./incoming/ct/IM0001
`)

// rootFlags are the persistent flags shared by every command.
var rootFlags struct {
	logLevel  string
	logFormat string
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log := logging.Logger()
		log.Error().Err(err).Msg("dicom-normalize")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dicom-normalize",
		Short:         "Normalize DICOM files into self-describing Part 10 files",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(rootFlags.logLevel, rootFlags.logFormat)
		},
	}

	def := cliconfig.DefaultConfig()
	root.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&rootFlags.logFormat, "log-format", def.LogFormat, "log format (console or json)")

	root.AddCommand(newRunCommand(), newWatchCommand(), newInspectCommand())
	return root
}

// configFlags are the flags shared by run and watch.
type configFlags struct {
	cfg     cliconfig.Config
	cfgPath string
	onlyGE  bool
}

func newConfigFlags(fs *pflag.FlagSet) *configFlags {
	f := &configFlags{cfg: cliconfig.DefaultConfig()}
	cfg := &f.cfg

	fs.StringVar(&f.cfgPath, "config", "", "path to config file (default: $HOME/.dicom-normalize/config.toml)")

	fs.BoolVar(&cfg.StripPrivate, "strip-private", cfg.StripPrivate, "remove private elements from the output")
	fs.StringVar(&cfg.Vendor, "vendor", cfg.Vendor, "only normalize files that look like they come from this vendor, skip the rest")
	fs.BoolVar(&f.onlyGE, "only-ge", false, "same as --vendor GE")
	if err := fs.MarkHidden("only-ge"); err != nil {
		log := logging.Logger()
		log.Info().Err(err).Msg("failed to hide only-ge flag")
	}
	fs.BoolVar(&cfg.StrictVerify, "strict-verify", cfg.StrictVerify, "fail files whose output does not read back with the intended transfer syntax")

	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of files normalized concurrently")
	fs.DurationVar(&cfg.DecompressTimeout, "decompress-timeout", cfg.DecompressTimeout, "time limit for decoding the pixel data of one file (0 for none)")

	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "path of the CSV log (default: normalize_log.csv in the output directory)")
	fs.StringVar(&cfg.Manifest, "manifest", cfg.Manifest, "path of an optional JSON lines manifest")

	fs.StringVar(&cfg.ImplementationUID, "implementation-uid", cfg.ImplementationUID, "Implementation Class UID written to every file")
	fs.StringVar(&cfg.ImplementationVersion, "implementation-version", cfg.ImplementationVersion, "Implementation Version Name written to every file")
	fs.StringVar(&cfg.FallbackSOPClass, "fallback-sop-class", cfg.FallbackSOPClass, "SOP Class UID used for data sets without one")
	return f
}

// load layers defaults, the config file, DICOMNORM_* variables and explicitly set flags, in
// increasing order of precedence, then validates the result and configures logging.
func (f *configFlags) load(cmd *cobra.Command, input, output string) (*cliconfig.Config, error) {
	cfg := &f.cfg
	cfg.Input, cfg.Output = input, output

	changed := map[string]bool{}
	cmd.Flags().Visit(func(fl *pflag.Flag) { changed[fl.Name] = true })

	if f.onlyGE && !changed["vendor"] {
		cfg.Vendor = "GE"
		changed["vendor"] = true
	}
	if changed["log-level"] {
		cfg.LogLevel = rootFlags.logLevel
	}
	if changed["log-format"] {
		cfg.LogFormat = rootFlags.logFormat
	}

	cfgFile := f.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return nil, err
		}
	} else if f.cfgPath != "" {
		return nil, fmt.Errorf("config file %s does not exist", f.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}
