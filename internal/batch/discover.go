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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Job is one input file and the path its normalized copy is written to.
type Job struct {
	Input  string
	Output string

	// Rel is the path of Input relative to the input root, which is also the path of Output
	// relative to the output root.
	Rel string
}

// Discover walks the input root and returns a Job for every regular file, in lexical order. When
// the output root lies inside the input root it is not descended into. Files listed in exclude,
// such as the log of a previous run, are skipped. Unreadable directories are skipped too.
func Discover(input, output string, exclude ...string) ([]Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input root %s is not a directory", input)
	}

	inputAbs, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}
	excluded := map[string]bool{}
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			excluded[abs] = true
		}
	}

	var jobs []Job
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != input {
				return fs.SkipDir
			}
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs == outputAbs && abs != inputAbs {
				return fs.SkipDir
			}
			return nil
		}
		if excluded[abs] || !isRegular(path, d) {
			return nil
		}

		job, err := Mirror(input, output, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", input, err)
	}
	return jobs, nil
}

// Mirror returns the Job for path, a file below the input root.
func Mirror(input, output, path string) (Job, error) {
	rel, err := filepath.Rel(input, path)
	if err != nil {
		return Job{}, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Job{}, fmt.Errorf("%s is outside of %s", path, input)
	}
	return Job{Input: path, Output: filepath.Join(output, rel), Rel: rel}, nil
}

// isRegular reports whether d is a regular file or a symbolic link to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
