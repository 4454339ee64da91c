// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostvec

import "github.com/0xcaff/duckdb-protobuf/pkg/pbscan"

// vectorAccessor is a flat list of sibling column vectors, used both for a
// chunk's top-level columns and for one struct vector's children.
type vectorAccessor struct {
	children []*Vector
}

func (a *vectorAccessor) Child(columnIdx int) pbscan.Vector {
	return a.children[columnIdx]
}

// Chunk is one in-memory batch of output rows, built from the column list
// a bind call declared via pbscan.BuildSchema. It implements
// pbscan.VectorAccessor directly so Produce can write into it.
type Chunk struct {
	*vectorAccessor
	Capacity int
	size     int
}

// NewChunk allocates a chunk with room for capacity rows across cols.
func NewChunk(cols []pbscan.Column, capacity int) *Chunk {
	children := make([]*Vector, len(cols))
	for i, col := range cols {
		children[i] = newVector(col, capacity)
	}
	return &Chunk{vectorAccessor: &vectorAccessor{children: children}, Capacity: capacity}
}

// SetSize records how many of the chunk's rows Produce actually filled in
// this call, mirroring duckdb_data_chunk_set_size.
func (c *Chunk) SetSize(n int) {
	c.size = n
}

// Size returns the row count last set via SetSize.
func (c *Chunk) Size() int {
	return c.size
}

// Column returns the underlying Vector for columnIdx, for tests and the
// CLI demo that need typed access beyond the pbscan.Vector setter methods.
func (c *Chunk) Column(columnIdx int) *Vector {
	return c.children[columnIdx]
}
