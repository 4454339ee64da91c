// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostvec

import (
	"testing"

	"github.com/0xcaff/duckdb-protobuf/pkg/pbscan"
)

func TestChunkScalarRoundTrip(t *testing.T) {
	cols := []pbscan.Column{
		{Name: "id", Kind: pbscan.KindInteger},
		{Name: "name", Kind: pbscan.KindVarchar},
	}
	chunk := NewChunk(cols, 4)

	chunk.Child(0).SetInt32(0, 7)
	chunk.Child(1).SetString(0, "alice")
	chunk.Child(0).SetNull(1)
	chunk.SetSize(2)

	if chunk.Column(0).int32s[0] != 7 {
		t.Errorf("id[0] = %d", chunk.Column(0).int32s[0])
	}
	if chunk.Column(1).strings[0] != "alice" {
		t.Errorf("name[0] = %q", chunk.Column(1).strings[0])
	}
	if !chunk.Column(0).Null(1) {
		t.Error("expected id[1] to be null")
	}
	if chunk.Size() != 2 {
		t.Errorf("size = %d", chunk.Size())
	}
}

func TestChunkListGrowsBeyondCapacity(t *testing.T) {
	cols := []pbscan.Column{
		{Name: "scores", Kind: pbscan.KindInteger, List: true},
	}
	chunk := NewChunk(cols, 2)

	vec := chunk.Child(0)
	for i := 0; i < 20; i++ {
		if err := vec.ListReserve(uint64(i + 1)); err != nil {
			t.Fatal(err)
		}
		vec.ListChild().SetInt32(i, int32(i*10))
	}
	vec.SetListEntry(0, pbscan.ListEntry{Offset: 0, Length: 20})

	child := chunk.Column(0).listChild
	if len(child.int32s) < 20 {
		t.Fatalf("expected list child grown to at least 20, got %d", len(child.int32s))
	}
	for i := 0; i < 20; i++ {
		if child.int32s[i] != int32(i*10) {
			t.Errorf("scores[%d] = %d", i, child.int32s[i])
		}
	}
}

func TestChunkStructChild(t *testing.T) {
	cols := []pbscan.Column{
		{
			Name: "nested",
			Kind: pbscan.KindStruct,
			Fields: []pbscan.Column{
				{Name: "label", Kind: pbscan.KindVarchar},
			},
		},
	}
	chunk := NewChunk(cols, 4)

	chunk.Child(0).Struct().Child(0).SetString(0, "hi")

	if chunk.Column(0).structChildren[0].strings[0] != "hi" {
		t.Errorf("nested.label[0] = %q", chunk.Column(0).structChildren[0].strings[0])
	}
}
