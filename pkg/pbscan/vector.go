// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides vector.go: the narrow host vector-access
// contract the projector writes through (SPEC_FULL.md §4.5).
//
// This mirrors the original implementation's VectorAccessor trait
// (DataChunk/StructVector impls) and the duckdb_list_vector_reserve/
// duckdb_list_vector_set_size/duckdb_list_vector_get_child C API surface,
// reduced to the handful of operations the projector actually needs. The
// real host engine that backs these interfaces is out of scope
// (SPEC_FULL.md §1); pkg/hostvec ships an in-memory implementation used
// by tests and the CLI demo.
package pbscan

// VectorAccessor is a uniform view over either the chunk's root columns
// or one struct vector's child columns, letting the projector recurse
// into sub-messages without knowing which case it's in.
type VectorAccessor interface {
	// Child returns the vector for the column at columnIdx, in the order
	// the schema mapper declared it (SPEC_FULL.md §4.4).
	Child(columnIdx int) Vector
}

// ListEntry is the host's (offset, length) pair identifying one row's
// slice of a list column's child vector.
type ListEntry struct {
	Offset uint64
	Length uint64
}

// Vector is a single output column (or one element slot of a list
// column's child). Only the leaf kinds the schema mapper can produce
// (SPEC_FULL.md §4.4) have setters; callers never need to distinguish a
// top-level column from a struct-child or list-child vector beyond that.
type Vector interface {
	SetNull(row int)
	SetBool(row int, v bool)
	SetInt32(row int, v int32)
	SetInt64(row int, v int64)
	SetUint32(row int, v uint32)
	SetUint64(row int, v uint64)
	SetFloat32(row int, v float32)
	SetFloat64(row int, v float64)
	SetString(row int, v string)
	// SetTimestampMicros writes microseconds-since-epoch into a native
	// TIMESTAMP slot (SPEC_FULL.md §4.4 timestamp_as_native).
	SetTimestampMicros(row int, v int64)

	// Struct returns an accessor over this vector's struct children. Only
	// valid when the column was declared STRUCT by the schema mapper.
	Struct() VectorAccessor

	// ListEntry/SetListEntry read and write this vector's (offset,
	// length) pair at row. Only valid when the column was declared LIST.
	ListEntry(row int) ListEntry
	SetListEntry(row int, entry ListEntry)

	// ListReserve grows the list child vector's backing storage to hold
	// at least n elements, and ListChild returns (a possibly-reallocated)
	// accessor to that child vector. Callers must re-fetch ListChild
	// after every ListReserve, mirroring duckdb_list_vector_reserve's
	// pointer-invalidating contract.
	ListReserve(n uint64) error
	ListChild() Vector
}
