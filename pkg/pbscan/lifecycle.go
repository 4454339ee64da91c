// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides lifecycle.go: the Bind/Init/Produce driver that
// ties the schema mapper, file source, record reader, and projector
// together into the table function's three-phase lifecycle
// (SPEC_FULL.md §4.8).
package pbscan

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// BindResult is everything Bind resolves once per query, shared read-only
// by every worker's Scanner for the query's lifetime.
type BindResult struct {
	Params Parameters

	Files       *protoregistry.Files
	RootMessage protoreflect.MessageDescriptor

	// Columns are the root message's declared output columns, in
	// desc.Fields() order (SPEC_FULL.md §4.4). SyntheticColumns are
	// appended after them, in filename/position/size order, for whichever
	// Include* flags Params set.
	Columns          []Column
	SyntheticColumns []Column
}

// Bind validates params, resolves the descriptor set and root message
// type, and declares the output column list (SPEC_FULL.md §4.8 "Bind").
// It touches the descriptor cache but not the files glob — that is Init's
// job, so a malformed glob doesn't fail a query before Bind has even
// reported a schema.
func Bind(params Parameters) (*BindResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	files, err := cachedDescriptorSet(params.DescriptorSetPath)
	if err != nil {
		return nil, err
	}

	root, err := findMessage(files, params.MessageType)
	if err != nil {
		return nil, err
	}

	cols, err := BuildSchema(root, params.TimestampAsNative)
	if err != nil {
		return nil, err
	}

	var synthetic []Column
	if params.IncludeFilename {
		synthetic = append(synthetic, Column{Name: "filename", Kind: KindVarchar})
	}
	if params.IncludePosition {
		synthetic = append(synthetic, Column{Name: "position", Kind: KindUbigint})
	}
	if params.IncludeSize {
		synthetic = append(synthetic, Column{Name: "size", Kind: KindUbigint})
	}

	return &BindResult{
		Params:           params,
		Files:            files,
		RootMessage:      root,
		Columns:          cols,
		SyntheticColumns: synthetic,
	}, nil
}

// AllColumns returns the full output column list a host should declare:
// the root message's columns followed by any synthetic columns.
func (b *BindResult) AllColumns() []Column {
	all := make([]Column, 0, len(b.Columns)+len(b.SyntheticColumns))
	all = append(all, b.Columns...)
	all = append(all, b.SyntheticColumns...)
	return all
}

// InitResult is the per-query work plan: the shared file queue every
// worker's Scanner pulls from, and a parallelism hint for the host to size
// its worker pool against (SPEC_FULL.md §4.8 "Init").
type InitResult struct {
	queue       *fileQueue
	Parallelism int
}

// Init expands the files glob into the shared queue. It is called exactly
// once per query, after Bind and before any Scanner is constructed.
func Init(bind *BindResult) (*InitResult, error) {
	paths, err := expandGlob(bind.Params.Files)
	if err != nil {
		return nil, err
	}

	parallelism := len(paths)
	if parallelism < 1 {
		parallelism = 1
	}

	return &InitResult{queue: newFileQueue(paths), Parallelism: parallelism}, nil
}

// Scanner drives Produce for one worker: it owns exactly one open
// recordReader at a time and pulls the next file path from the query's
// shared queue once the current file is exhausted. A Scanner is not safe
// for concurrent use by more than one goroutine, but many Scanners may
// share the same InitResult's queue and the same BindResult concurrently
// (SPEC_FULL.md §5).
type Scanner struct {
	bind  *BindResult
	queue *fileQueue

	current     *recordReader
	currentPath string
}

// NewScanner creates one worker's Scanner against the query's bind result
// and shared file queue.
func NewScanner(bind *BindResult, init *InitResult) *Scanner {
	return &Scanner{bind: bind, queue: init.queue}
}

// Produce fills up to chunkCapacity rows of output, starting at row 0, and
// returns how many rows it actually wrote. A return of 0 means this
// Scanner's share of the file queue is exhausted; the host should not call
// Produce on it again. ctx is checked between records, never mid-record,
// so a single very large record is never abandoned partway through
// (SPEC_FULL.md §4.8 "Produce").
//
// projectedColumns is the host's projection-pushdown request: the indices
// (into bind.Columns, i.e. the root message's declared columns, not the
// synthetic ones appended after them) of the columns it actually needs.
// A nil or empty slice means every column is wanted, the common case when
// the host hasn't pushed a projection down at all.
func (s *Scanner) Produce(ctx context.Context, output VectorAccessor, chunkCapacity int, projectedColumns []int) (int, error) {
	ldg := newLedger()
	row := 0
	selected := columnSubsetMask(len(s.bind.Columns), projectedColumns)

	for row < chunkCapacity {
		select {
		case <-ctx.Done():
			return row, ctx.Err()
		default:
		}

		if s.current == nil {
			path, ok := s.queue.pop()
			if !ok {
				return row, nil
			}
			rr, err := openRecordReader(path, s.bind.Params.Delimiter)
			if err != nil {
				return row, err
			}
			s.current = rr
			s.currentPath = path
		}

		rec, err := s.current.next()
		if err != nil {
			s.current.Close()
			s.current = nil
			return row, fmt.Errorf("[PBSCAN]> scanning %s: %w", s.currentPath, err)
		}
		if rec == nil {
			s.current.Close()
			s.current = nil
			continue
		}

		if err := projectMessage(s.bind.RootMessage, s.bind.Columns, rec.bytes, output, row, emptyColumnKey(), ldg, selected); err != nil {
			return row, fmt.Errorf("[PBSCAN]> projecting record at offset %d of file %s: %w", rec.position, rec.filename, err)
		}

		s.writeSyntheticColumns(output, row, rec)
		row++
	}

	return row, nil
}

func (s *Scanner) writeSyntheticColumns(output VectorAccessor, row int, rec *record) {
	idx := len(s.bind.Columns)
	p := s.bind.Params
	if p.IncludeFilename {
		output.Child(idx).SetString(row, rec.filename)
		idx++
	}
	if p.IncludePosition {
		output.Child(idx).SetUint64(row, uint64(rec.position))
		idx++
	}
	if p.IncludeSize {
		output.Child(idx).SetUint64(row, uint64(rec.size))
		idx++
	}
}

// columnSubsetMask turns a host's requested column-index list into a
// selected-by-position mask sized to totalCols, or nil if projected is
// empty (meaning no pushdown was requested, so every column is wanted).
func columnSubsetMask(totalCols int, projected []int) []bool {
	if len(projected) == 0 {
		return nil
	}
	mask := make([]bool, totalCols)
	for _, idx := range projected {
		if idx >= 0 && idx < totalCols {
			mask[idx] = true
		}
	}
	return mask
}

// Close releases the Scanner's currently open file, if any. Safe to call
// after the final Produce call returned 0, or to abandon a Scanner early
// on query cancellation.
func (s *Scanner) Close() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}
