// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan_test

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/0xcaff/duckdb-protobuf/pkg/hostvec"
	"github.com/0xcaff/duckdb-protobuf/pkg/pbscan"
)

func buildLifecycleDescriptorFile(t *testing.T) *descriptorpb.FileDescriptorProto {
	t.Helper()
	str := func(s string) *string { return &s }
	i32 := func(i int32) *int32 { return &i }
	label := func(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }
	typ := func(ty descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return &ty }

	return &descriptorpb.FileDescriptorProto{
		Name:    str("click.proto"),
		Package: str("testpkg"),
		Syntax:  str("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: str("Click"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: str("url"), Number: i32(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_STRING), JsonName: str("url")},
					{Name: str("count"), Number: i32(2), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: typ(descriptorpb.FieldDescriptorProto_TYPE_INT32), JsonName: str("count")},
				},
			},
		},
	}
}

func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func encodeClick(url string, count int32) []byte {
	var buf []byte
	buf = appendVarint(buf, 1<<3|2) // url, length-delimited
	buf = appendVarint(buf, uint64(len(url)))
	buf = append(buf, url...)
	buf = appendVarint(buf, 2<<3|0) // count, varint
	buf = appendVarint(buf, uint64(count))
	return buf
}

func writeDescriptorSet(t *testing.T, fdProto *descriptorpb.FileDescriptorProto) string {
	t.Helper()
	fdSet := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdProto}}
	raw, err := proto.Marshal(fdSet)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "descriptors.pb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFixed32Records(t *testing.T, records [][]byte) string {
	t.Helper()
	var buf []byte
	for _, r := range records {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(r)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, r...)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "clicks.bin")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLifecycleEndToEnd exercises Bind -> Init -> Produce against an
// in-memory hostvec.Chunk, covering a root-level scalar scan with
// synthetic filename/position/size columns (a minimal stand-in for
// SPEC_FULL.md §8 scenario S1).
func TestLifecycleEndToEnd(t *testing.T) {
	descriptorPath := writeDescriptorSet(t, buildLifecycleDescriptorFile(t))

	records := [][]byte{
		encodeClick("https://a.example", 1),
		encodeClick("https://b.example", 2),
		encodeClick("https://c.example", 3),
	}
	dataPath := writeFixed32Records(t, records)

	params := pbscan.Parameters{
		Files:             dataPath,
		DescriptorSetPath: descriptorPath,
		MessageType:       "testpkg.Click",
		Delimiter:         pbscan.DelimiterBigEndianFixed32,
		IncludeFilename:   true,
		IncludePosition:   true,
		IncludeSize:       true,
	}

	bind, err := pbscan.Bind(params)
	if err != nil {
		t.Fatal(err)
	}
	if len(bind.Columns) != 2 {
		t.Fatalf("expected 2 root columns, got %d", len(bind.Columns))
	}
	if len(bind.AllColumns()) != 5 {
		t.Fatalf("expected 5 total columns, got %d", len(bind.AllColumns()))
	}

	init, err := pbscan.Init(bind)
	if err != nil {
		t.Fatal(err)
	}
	if init.Parallelism != 1 {
		t.Errorf("expected parallelism 1 for a single file, got %d", init.Parallelism)
	}

	scanner := pbscan.NewScanner(bind, init)
	defer scanner.Close()

	chunk := hostvec.NewChunk(bind.AllColumns(), 16)
	rows, err := scanner.Produce(context.Background(), chunk, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows, got %d", rows)
	}
	chunk.SetSize(rows)

	if got := chunk.Column(0).ColumnString(0); got != "https://a.example" {
		t.Errorf("url[0] = %q", got)
	}
	if got := chunk.Column(1).ColumnInt32(1); got != 2 {
		t.Errorf("count[1] = %d", got)
	}
	if got := chunk.Column(2).ColumnString(2); got != dataPath {
		t.Errorf("filename[2] = %q", got)
	}
	if got := chunk.Column(3).ColumnUint64(0); got != 0 {
		t.Errorf("position[0] = %d", got)
	}

	more, err := scanner.Produce(context.Background(), chunk, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if more != 0 {
		t.Fatalf("expected no more rows after the file is exhausted, got %d", more)
	}
}

// TestLifecycleProjectionPushdownSkipsUnneededColumns exercises projection
// pushdown (SPEC_FULL.md §4.7/§4.8): requesting only the "count" column
// (index 1) must still produce correct values for it while leaving "url"
// (index 0) untouched, without desyncing the decode of later records.
func TestLifecycleProjectionPushdownSkipsUnneededColumns(t *testing.T) {
	descriptorPath := writeDescriptorSet(t, buildLifecycleDescriptorFile(t))

	records := [][]byte{
		encodeClick("https://a.example", 1),
		encodeClick("https://b.example", 2),
	}
	dataPath := writeFixed32Records(t, records)

	params := pbscan.Parameters{
		Files:             dataPath,
		DescriptorSetPath: descriptorPath,
		MessageType:       "testpkg.Click",
		Delimiter:         pbscan.DelimiterBigEndianFixed32,
	}

	bind, err := pbscan.Bind(params)
	if err != nil {
		t.Fatal(err)
	}
	init, err := pbscan.Init(bind)
	if err != nil {
		t.Fatal(err)
	}

	scanner := pbscan.NewScanner(bind, init)
	defer scanner.Close()

	chunk := hostvec.NewChunk(bind.AllColumns(), 16)
	rows, err := scanner.Produce(context.Background(), chunk, 16, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got %d", rows)
	}

	if got := chunk.Column(1).ColumnInt32(0); got != 1 {
		t.Errorf("count[0] = %d", got)
	}
	if got := chunk.Column(1).ColumnInt32(1); got != 2 {
		t.Errorf("count[1] = %d", got)
	}
	if got := chunk.Column(0).ColumnString(0); got != "" {
		t.Errorf("url[0] should be left unwritten under pushdown, got %q", got)
	}
}
