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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medbrief/dicom-normalizer/codec"
	"github.com/medbrief/dicom-normalizer/internal/batch"
	"github.com/medbrief/dicom-normalizer/internal/logging"
	"github.com/medbrief/dicom-normalizer/internal/report"
	"github.com/medbrief/dicom-normalizer/normalize"
)

func newRunCommand() *cobra.Command {
	var flags *configFlags
	cmd := &cobra.Command{
		Use:   "run INPUT OUTPUT",
		Short: "Normalize every file below INPUT into OUTPUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			log := logging.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exclude := []string{cfg.LogFile}
			if cfg.Manifest != "" {
				exclude = append(exclude, cfg.Manifest)
			}
			jobs, err := batch.Discover(cfg.Input, cfg.Output, exclude...)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Output, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			log.Info().
				Str("input", cfg.Input).
				Str("output", cfg.Output).
				Int("files", len(jobs)).
				Int("workers", cfg.Workers).
				Msg("starting")

			n := normalize.NewNormalizer(codec.DefaultRegistry(), normalize.NewMetaBuilder(cfg.MetaConfig()), log)
			driver := &batch.Driver{
				Normalizer: n,
				Options:    cfg.Options(),
				Workers:    cfg.Workers,
				Observer:   batch.LogProgress(log),
			}
			outcomes := driver.Run(ctx, jobs)

			if err := report.WriteCSVFile(cfg.LogFile, outcomes); err != nil {
				return err
			}
			if cfg.Manifest != "" {
				if err := report.WriteManifestFile(cfg.Manifest, outcomes); err != nil {
					return err
				}
			}

			s := batch.Summarize(outcomes)
			ev := log.Info()
			if len(outcomes) > 0 {
				ev = ev.Str("log", cfg.LogFile)
			}
			ev.Int("ok", s.OK).Int("skipped", s.Skipped).Int("failed", s.Failed).Msg("done")

			if ctx.Err() != nil {
				return errors.New("interrupted")
			}
			return nil
		},
	}
	flags = newConfigFlags(cmd.Flags())
	return cmd
}
