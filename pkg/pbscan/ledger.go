// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides ledger.go: per-chunk column-offset bookkeeping
// for list columns (SPEC_FULL.md §4.6).
//
// Grounded on the original implementation's ColumnKey/ColumnKeyElement and
// ProtobufMessageWriter.column_information: &mut HashMap<ColumnKey, u64>
// (see _examples/original_source/src/read.rs). Go maps can't key on a
// slice directly the way Rust's derived Hash/Eq on Vec<ColumnKeyElement>
// can, so columnKey renders its path to a comparable string before it's
// used as a map key.
package pbscan

import (
	"fmt"
	"strings"
)

// columnKeyElement is one step of a path identifying a list column for
// ledger bookkeeping: either "descend into field N" or "the list of
// elements at the current position".
type columnKeyElement struct {
	isList bool
	tag    int32 // valid when !isList
}

// columnKey is an immutable path from the chunk root to a list column.
// Two keys are equal exactly when their element sequences match.
type columnKey struct {
	path string
}

func emptyColumnKey() columnKey {
	return columnKey{}
}

func (k columnKey) extendField(tag int32) columnKey {
	return columnKey{path: fmt.Sprintf("%s/f%d", k.path, tag)}
}

func (k columnKey) extendList() columnKey {
	return columnKey{path: k.path + "/[]"}
}

func (k columnKey) String() string {
	if k.path == "" {
		return "<root>"
	}
	return strings.TrimPrefix(k.path, "/")
}

// ledger tracks, for one chunk, how many elements have been appended to
// each list column's child vector so far (SPEC_FULL.md §4.6 invariant 1).
// It is created fresh at the start of every chunk and discarded at the
// end; it is never shared across workers.
type ledger struct {
	offsets map[columnKey]uint64
}

func newLedger() *ledger {
	return &ledger{offsets: make(map[columnKey]uint64)}
}

// next returns the current running offset for key without consuming it.
func (l *ledger) next(key columnKey) uint64 {
	return l.offsets[key]
}

// advance records that count additional elements were appended to key's
// child vector, and returns the new running total.
func (l *ledger) advance(key columnKey, count uint64) uint64 {
	total := l.offsets[key] + count
	l.offsets[key] = total
	return total
}
