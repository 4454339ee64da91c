// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hostvec is an in-memory reference implementation of
// pbscan.VectorAccessor/pbscan.Vector. It stands in for a real embedding
// host's columnar vectors (SPEC_FULL.md §1 calls the host engine itself
// out of scope) so the projector can be exercised end-to-end by tests and
// the CLI demo without a real host present.
//
// Vector's slices grow by doubling rather than being resized to the exact
// needed length on every append, the same amortized-growth idiom
// pkg/metricstore used for its in-memory buffers.
package hostvec

import (
	"fmt"

	"github.com/0xcaff/duckdb-protobuf/pkg/pbscan"
)

// Vector is one output column's storage: the slice matching its Kind is
// populated; the others stay nil. List columns additionally carry a
// listChild holding the flattened element values across all rows.
type Vector struct {
	col pbscan.Column

	nulls      []bool
	bools      []bool
	int32s     []int32
	int64s     []int64
	uint32s    []uint32
	uint64s    []uint64
	float32s   []float32
	float64s   []float64
	strings    []string
	timestamps []int64

	listEntries []pbscan.ListEntry

	structChildren []*Vector
	listChild      *Vector
}

func newVector(col pbscan.Column, capacity int) *Vector {
	v := &Vector{col: col}
	v.growTo(capacity)

	if col.List {
		// The list column itself only ever needs its per-row ListEntry
		// slots; its elements (including any struct fields) live on
		// listChild instead, so there's no reason to also allocate a
		// row-cardinality copy of the struct children here.
		elem := col
		elem.List = false
		v.listChild = newVector(elem, 0)
		return v
	}

	if col.Kind == pbscan.KindStruct {
		v.structChildren = make([]*Vector, len(col.Fields))
		for i, f := range col.Fields {
			v.structChildren[i] = newVector(f, capacity)
		}
	}

	return v
}

// growTo ensures every row-indexed slice this vector's Kind actually uses
// has length at least n, doubling the previous length rather than
// resizing to exactly n so repeated single-row growth stays amortized
// O(1).
func (v *Vector) growTo(n int) {
	cur := len(v.nulls)
	if n <= cur {
		return
	}
	newLen := cur * 2
	if newLen < n {
		newLen = n
	}
	if newLen < 8 {
		newLen = 8
	}

	grow := func(old []bool) []bool {
		next := make([]bool, newLen)
		copy(next, old)
		return next
	}
	v.nulls = grow(v.nulls)

	switch v.col.Kind {
	case pbscan.KindBoolean:
		next := make([]bool, newLen)
		copy(next, v.bools)
		v.bools = next
	case pbscan.KindInteger:
		next := make([]int32, newLen)
		copy(next, v.int32s)
		v.int32s = next
	case pbscan.KindBigint:
		next := make([]int64, newLen)
		copy(next, v.int64s)
		v.int64s = next
	case pbscan.KindUinteger:
		next := make([]uint32, newLen)
		copy(next, v.uint32s)
		v.uint32s = next
	case pbscan.KindUbigint:
		next := make([]uint64, newLen)
		copy(next, v.uint64s)
		v.uint64s = next
	case pbscan.KindFloat:
		next := make([]float32, newLen)
		copy(next, v.float32s)
		v.float32s = next
	case pbscan.KindDouble:
		next := make([]float64, newLen)
		copy(next, v.float64s)
		v.float64s = next
	case pbscan.KindVarchar:
		next := make([]string, newLen)
		copy(next, v.strings)
		v.strings = next
	case pbscan.KindTimestamp:
		next := make([]int64, newLen)
		copy(next, v.timestamps)
		v.timestamps = next
	}

	if v.col.List {
		next := make([]pbscan.ListEntry, newLen)
		copy(next, v.listEntries)
		v.listEntries = next
	}

	if v.col.Kind == pbscan.KindStruct {
		for _, child := range v.structChildren {
			child.growTo(newLen)
		}
	}
}

func (v *Vector) SetNull(row int) {
	v.growTo(row + 1)
	v.nulls[row] = true
}

func (v *Vector) SetBool(row int, x bool) {
	v.growTo(row + 1)
	v.bools[row] = x
}

func (v *Vector) SetInt32(row int, x int32) {
	v.growTo(row + 1)
	v.int32s[row] = x
}

func (v *Vector) SetInt64(row int, x int64) {
	v.growTo(row + 1)
	v.int64s[row] = x
}

func (v *Vector) SetUint32(row int, x uint32) {
	v.growTo(row + 1)
	v.uint32s[row] = x
}

func (v *Vector) SetUint64(row int, x uint64) {
	v.growTo(row + 1)
	v.uint64s[row] = x
}

func (v *Vector) SetFloat32(row int, x float32) {
	v.growTo(row + 1)
	v.float32s[row] = x
}

func (v *Vector) SetFloat64(row int, x float64) {
	v.growTo(row + 1)
	v.float64s[row] = x
}

func (v *Vector) SetString(row int, x string) {
	v.growTo(row + 1)
	v.strings[row] = x
}

func (v *Vector) SetTimestampMicros(row int, x int64) {
	v.growTo(row + 1)
	v.timestamps[row] = x
}

func (v *Vector) Struct() pbscan.VectorAccessor {
	if v.col.Kind != pbscan.KindStruct {
		panic(fmt.Sprintf("hostvec: Struct() called on non-struct column %q", v.col.Name))
	}
	return &vectorAccessor{children: v.structChildren}
}

func (v *Vector) ListEntry(row int) pbscan.ListEntry {
	v.growTo(row + 1)
	return v.listEntries[row]
}

func (v *Vector) SetListEntry(row int, e pbscan.ListEntry) {
	v.growTo(row + 1)
	v.listEntries[row] = e
}

func (v *Vector) ListReserve(n uint64) error {
	if !v.col.List {
		return fmt.Errorf("hostvec: ListReserve called on non-list column %q", v.col.Name)
	}
	v.listChild.growTo(int(n))
	return nil
}

func (v *Vector) ListChild() pbscan.Vector {
	return v.listChild
}

// Null reports whether row was ever written with SetNull, for tests and
// the CLI demo to render output.
func (v *Vector) Null(row int) bool {
	if row >= len(v.nulls) {
		return false
	}
	return v.nulls[row]
}

// The Column* accessors below read back a row's value for tests and the
// CLI demo; callers are expected to already know the column's Kind (from
// the schema BuildSchema produced) and to check Null first.
func (v *Vector) ColumnBool(row int) bool       { return v.bools[row] }
func (v *Vector) ColumnInt32(row int) int32     { return v.int32s[row] }
func (v *Vector) ColumnInt64(row int) int64     { return v.int64s[row] }
func (v *Vector) ColumnUint32(row int) uint32   { return v.uint32s[row] }
func (v *Vector) ColumnUint64(row int) uint64   { return v.uint64s[row] }
func (v *Vector) ColumnFloat32(row int) float32 { return v.float32s[row] }
func (v *Vector) ColumnFloat64(row int) float64 { return v.float64s[row] }
func (v *Vector) ColumnString(row int) string   { return v.strings[row] }
func (v *Vector) ColumnTimestamp(row int) int64 { return v.timestamps[row] }

// ColumnListEntry returns row's (offset, length) into ListChild, for a
// List column.
func (v *Vector) ColumnListEntry(row int) pbscan.ListEntry { return v.listEntries[row] }

// ListChildVector exposes the typed list-child Vector directly, for tests
// and the CLI demo that need more than the pbscan.Vector interface.
func (v *Vector) ListChildVector() *Vector { return v.listChild }

// StructChild exposes one typed struct-child Vector directly.
func (v *Vector) StructChild(idx int) *Vector { return v.structChildren[idx] }
