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

package batch

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/medbrief/dicom-normalizer/normalize"
	"github.com/rs/zerolog"
)

// ErrCanceled is the error recorded for files that were never started because the run was
// canceled.
var ErrCanceled = errors.New("canceled")

// Normalizer normalizes a single file.
type Normalizer interface {
	NormalizeFile(ctx context.Context, src, dst string, opts normalize.Options) normalize.Outcome
}

// Observer receives every Outcome as soon as it is known. done counts the finished files
// including this one.
type Observer interface {
	OnFileDone(done, total int, job Job, o normalize.Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(done, total int, job Job, o normalize.Outcome)

// OnFileDone calls f.
func (f ObserverFunc) OnFileDone(done, total int, job Job, o normalize.Outcome) {
	f(done, total, job, o)
}

// Driver normalizes a batch of files with a bounded pool of workers.
type Driver struct {
	Normalizer Normalizer
	Options    normalize.Options

	// Workers is the size of the pool. Zero means one worker per CPU.
	Workers int

	Observer Observer
}

// Run normalizes every job and returns one Outcome per job, ordered by input path. Files still
// queued when ctx is canceled are reported as failed with ErrCanceled. Files already in progress
// observe ctx themselves.
func (d *Driver) Run(ctx context.Context, jobs []Job) []normalize.Outcome {
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type result struct {
		job     Job
		outcome normalize.Outcome
	}

	queue := make(chan Job)
	results := make(chan result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results <- result{j, d.Normalizer.NormalizeFile(ctx, j.Input, j.Output, d.Options)}
			}
		}()
	}

	go func() {
		defer func() {
			close(queue)
			wg.Wait()
			close(results)
		}()
		for i, j := range jobs {
			if ctx.Err() == nil {
				select {
				case queue <- j:
					continue
				case <-ctx.Done():
				}
			}
			for _, rest := range jobs[i:] {
				results <- result{rest, canceled(rest)}
			}
			return
		}
	}()

	outcomes := make([]normalize.Outcome, 0, len(jobs))
	done := 0
	for r := range results {
		done++
		outcomes = append(outcomes, r.outcome)
		if d.Observer != nil {
			d.Observer.OnFileDone(done, len(jobs), r.job, r.outcome)
		}
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Input < outcomes[j].Input
	})
	return outcomes
}

func canceled(j Job) normalize.Outcome {
	return normalize.Outcome{
		Input:  j.Input,
		Output: j.Output,
		Status: normalize.StatusFail,
		Err:    ErrCanceled,
	}
}

// LogProgress returns an Observer that logs one line per finished file.
func LogProgress(log zerolog.Logger) Observer {
	return ObserverFunc(func(done, total int, job Job, o normalize.Outcome) {
		var ev *zerolog.Event
		switch o.Status {
		case normalize.StatusFail:
			ev = log.Warn().Str("error", o.ErrorText())
		case normalize.StatusSkip:
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		ev.Int("done", done).
			Int("total", total).
			Str("file", job.Rel).
			Str("ts_in", o.TransferSyntaxIn).
			Str("ts_out", o.TransferSyntaxOut).
			Str("decompressed", o.Decompressed.String()).
			Dur("took", o.Duration.Round(time.Millisecond)).
			Msg(string(o.Status))
	})
}

// Summary counts outcomes by status.
type Summary struct {
	OK, Skipped, Failed int
}

// Summarize counts the outcomes of a run.
func Summarize(outcomes []normalize.Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case normalize.StatusOK:
			s.OK++
		case normalize.StatusSkip:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
