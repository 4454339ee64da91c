// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command duckdb-protobuf is a standalone demonstration of pkg/pbscan's
// Bind/Init/Produce lifecycle, driven against pkg/hostvec's in-memory
// vectors in place of a real embedding host. It scans a glob of
// length-framed protobuf record files against a descriptor set and prints
// the resulting rows, one line per record, to stdout.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xcaff/duckdb-protobuf/pkg/hostvec"
	"github.com/0xcaff/duckdb-protobuf/pkg/log"
	"github.com/0xcaff/duckdb-protobuf/pkg/pbscan"
)

func main() {
	flags := cliInit()

	params, err := flags.toParameters()
	if err != nil {
		usageError("%s", err)
	}

	bind, err := pbscan.Bind(params)
	if err != nil {
		log.Fatal(err)
	}

	init, err := pbscan.Init(bind)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("scanning with parallelism hint %d", init.Parallelism)

	columns := bind.AllColumns()
	printHeader(columns)

	projected, err := resolveProjectedColumns(flags.columns, bind.Columns)
	if err != nil {
		usageError("%s", err)
	}

	ctx := context.Background()
	scanner := pbscan.NewScanner(bind, init)
	defer scanner.Close()

	total := 0
	for {
		chunk := hostvec.NewChunk(columns, flags.chunkCapacity)
		rows, err := scanner.Produce(ctx, chunk, flags.chunkCapacity, projected)
		if err != nil {
			log.Fatal(err)
		}
		chunk.SetSize(rows)
		if rows == 0 {
			break
		}

		for row := 0; row < rows; row++ {
			printRow(chunk, columns, row)
		}
		total += rows
	}

	log.Infof("scanned %d rows", total)
}

// resolveProjectedColumns turns the --columns flag's comma-separated root
// column names into the index list pbscan.Scanner.Produce expects for
// projection pushdown. An empty flag means no pushdown (nil: every
// column).
func resolveProjectedColumns(flag string, rootColumns []pbscan.Column) ([]int, error) {
	if flag == "" {
		return nil, nil
	}

	byName := make(map[string]int, len(rootColumns))
	for i, c := range rootColumns {
		byName[c.Name] = i
	}

	names := strings.Split(flag, ",")
	indices := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q in -columns", name)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func printHeader(columns []pbscan.Column) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	fmt.Println(strings.Join(names, "\t"))
}

func printRow(chunk *hostvec.Chunk, columns []pbscan.Column, row int) {
	fields := make([]string, len(columns))
	for i, col := range columns {
		fields[i] = renderColumn(chunk.Column(i), col, row)
	}
	fmt.Println(strings.Join(fields, "\t"))
}

// renderColumn formats one cell for the demo's plain-text output. It
// mirrors the projector's own column layout: a LIST column renders its
// elements inside brackets, a STRUCT column renders its children inside
// braces.
func renderColumn(vec *hostvec.Vector, col pbscan.Column, row int) string {
	if col.List {
		entry := vec.ColumnListEntry(row)
		child := vec.ListChildVector()
		elemCol := col
		elemCol.List = false

		elems := make([]string, 0, entry.Length)
		for i := uint64(0); i < entry.Length; i++ {
			elems = append(elems, renderColumn(child, elemCol, int(entry.Offset+i)))
		}
		return "[" + strings.Join(elems, ",") + "]"
	}

	if vec.Null(row) {
		return "NULL"
	}

	switch col.Kind {
	case pbscan.KindBoolean:
		return fmt.Sprintf("%v", vec.ColumnBool(row))
	case pbscan.KindInteger:
		return fmt.Sprintf("%d", vec.ColumnInt32(row))
	case pbscan.KindBigint:
		return fmt.Sprintf("%d", vec.ColumnInt64(row))
	case pbscan.KindUinteger:
		return fmt.Sprintf("%d", vec.ColumnUint32(row))
	case pbscan.KindUbigint:
		return fmt.Sprintf("%d", vec.ColumnUint64(row))
	case pbscan.KindFloat:
		return fmt.Sprintf("%v", vec.ColumnFloat32(row))
	case pbscan.KindDouble:
		return fmt.Sprintf("%v", vec.ColumnFloat64(row))
	case pbscan.KindVarchar:
		return vec.ColumnString(row)
	case pbscan.KindTimestamp:
		return fmt.Sprintf("%d", vec.ColumnTimestamp(row))
	case pbscan.KindStruct:
		fields := make([]string, len(col.Fields))
		for i, f := range col.Fields {
			fields[i] = f.Name + "=" + renderColumn(vec.StructChild(i), f, row)
		}
		return "{" + strings.Join(fields, ",") + "}"
	default:
		return "?"
	}
}
