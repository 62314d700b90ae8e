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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medbrief/dicom-normalizer/codec"
	"github.com/medbrief/dicom-normalizer/internal/logging"
	"github.com/medbrief/dicom-normalizer/internal/report"
	"github.com/medbrief/dicom-normalizer/internal/watch"
	"github.com/medbrief/dicom-normalizer/normalize"
)

func newWatchCommand() *cobra.Command {
	var flags *configFlags
	cmd := &cobra.Command{
		Use:   "watch INPUT OUTPUT",
		Short: "Normalize files into OUTPUT as they are written below INPUT",
		Long: `Watch INPUT and normalize every file written below it once it has not changed for the
debounce interval. Each outcome is appended to the CSV log as soon as it is known. Files already
present when the watch starts are left alone; use run for those.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			log := logging.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := os.MkdirAll(cfg.Output, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			csvLog, err := report.OpenCSVLog(cfg.LogFile)
			if err != nil {
				return err
			}
			defer csvLog.Close()
			sinks := []watch.Sink{csvLog}
			exclude := []string{cfg.LogFile}
			if cfg.Manifest != "" {
				manifest, err := report.OpenManifestLog(cfg.Manifest)
				if err != nil {
					return err
				}
				defer manifest.Close()
				sinks = append(sinks, manifest)
				exclude = append(exclude, cfg.Manifest)
			}

			w, err := watch.New(watch.Config{
				Input:      cfg.Input,
				Output:     cfg.Output,
				Debounce:   cfg.Debounce,
				Exclude:    exclude,
				Normalizer: normalize.NewNormalizer(codec.DefaultRegistry(), normalize.NewMetaBuilder(cfg.MetaConfig()), log),
				Options:    cfg.Options(),
				Sinks:      sinks,
				Log:        log,
			})
			if err != nil {
				return err
			}

			log.Info().Str("input", cfg.Input).Str("output", cfg.Output).Dur("debounce", cfg.Debounce).Msg("watching")
			if err := w.Run(ctx); err != nil {
				return err
			}
			log.Info().Int("files", csvLog.Rows()).Msg("stopped")
			return nil
		},
	}
	flags = newConfigFlags(cmd.Flags())
	cmd.Flags().DurationVar(&flags.cfg.Debounce, "debounce", flags.cfg.Debounce, "how long a file must stay unchanged before it is normalized")
	return cmd
}
