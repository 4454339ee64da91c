// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides filesource.go: glob expansion into a shared
// work queue of file paths (SPEC_FULL.md §4.3).
//
// fileQueue is deliberately a single mutex-guarded slice rather than a
// lock-free ring buffer: there is exactly one producer (init, populating
// the queue once) and many consumers (one goroutine per worker, each
// calling pop until the queue reports exhaustion), and at this scale the
// simplest correct primitive is preferred over a lock-free structure.
package pbscan

import (
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// expandGlob resolves the files parameter to a concrete list of paths,
// using doublestar so that a "**" segment matches any number of
// directories (plain filepath.Glob cannot do this). The paths are returned
// in the order doublestar yields them; no sort is applied here.
func expandGlob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("[PBSCAN]> invalid files glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoFiles, pattern)
	}
	return matches, nil
}

// fileQueue hands out file paths to workers, one at a time, with no
// ordering guarantee across workers (SPEC_FULL.md §5 "Ordering").
type fileQueue struct {
	mu    sync.Mutex
	paths []string
	next  int
}

func newFileQueue(paths []string) *fileQueue {
	return &fileQueue{paths: paths}
}

// pop returns the next unprocessed path, or ok=false once the queue is
// drained.
func (q *fileQueue) pop() (path string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.paths) {
		return "", false
	}
	path = q.paths[q.next]
	q.next++
	return path, true
}

// remaining reports how many paths have not yet been popped. Init does not
// call it: the parallelism hint is the expanded path count.
func (q *fileQueue) remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths) - q.next
}
