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

// Package watch normalizes files as they appear below an input directory.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/medbrief/dicom-normalizer/internal/batch"
	"github.com/medbrief/dicom-normalizer/normalize"
	"github.com/rs/zerolog"
)

// Sink records the outcome of every normalized file.
type Sink interface {
	Append(o normalize.Outcome) error
}

// Config configures a Watcher.
type Config struct {
	Input  string
	Output string

	// Debounce is how long a file must stay unchanged before it is normalized.
	Debounce time.Duration

	// Exclude lists files below Input that are never normalized.
	Exclude []string

	Normalizer batch.Normalizer
	Options    normalize.Options
	Sinks      []Sink
	Log        zerolog.Logger
}

// Watcher normalizes every file written below the input directory to the mirrored path below the
// output directory. Files present before the watch started are left alone.
type Watcher struct {
	cfg       Config
	fsw       *fsnotify.Watcher
	outputAbs string
	excluded  map[string]bool

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// New starts watching the directory tree below cfg.Input. Events are handled by Run.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %v", cfg.Debounce)
	}
	outputAbs, err := filepath.Abs(cfg.Output)
	if err != nil {
		return nil, err
	}
	excluded := map[string]bool{}
	for _, p := range cfg.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			excluded[abs] = true
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		cfg:       cfg,
		fsw:       fsw,
		outputAbs: outputAbs,
		excluded:  excluded,
		timers:    map[string]*time.Timer{},
	}
	if _, err := w.addTree(cfg.Input); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run handles events until ctx is canceled. Files whose debounce has not expired by then are not
// normalized; files being normalized are waited for.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancel(event.Name)
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create == 0 {
			return
		}
		// files may have landed in the directory before it was watched
		files, err := w.addTree(event.Name)
		if err != nil {
			w.cfg.Log.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch directory")
		}
		for _, f := range files {
			w.schedule(ctx, f)
		}
		return
	}
	if info.Mode().IsRegular() {
		w.schedule(ctx, event.Name)
	}
}

// addTree watches root and every directory below it, except the output directory. It returns the
// regular files found.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if w.ignored(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.cfg.Log.Debug().Str("dir", path).Msg("watching")
		return nil
	})
	return files, err
}

// ignored reports whether path is inside the output directory or excluded.
func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	if w.excluded[abs] {
		return true
	}
	return abs == w.outputAbs || strings.HasPrefix(abs, w.outputAbs+string(filepath.Separator))
}

// schedule normalizes path once it has not changed for the debounce interval.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.process(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	job, err := batch.Mirror(w.cfg.Input, w.cfg.Output, path)
	if err != nil {
		w.cfg.Log.Warn().Err(err).Msg("skipping file")
		return
	}

	o := w.cfg.Normalizer.NormalizeFile(ctx, job.Input, job.Output, w.cfg.Options)

	ev := w.cfg.Log.Info()
	if o.Status == normalize.StatusFail {
		ev = w.cfg.Log.Warn().Str("error", o.ErrorText())
	}
	ev.Str("file", job.Rel).
		Str("ts_in", o.TransferSyntaxIn).
		Str("ts_out", o.TransferSyntaxOut).
		Str("decompressed", o.Decompressed.String()).
		Msg(string(o.Status))

	for _, sink := range w.cfg.Sinks {
		if err := sink.Append(o); err != nil {
			w.cfg.Log.Error().Err(err).Msg("cannot record outcome")
		}
	}
}
