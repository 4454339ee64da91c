// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
)

// buildTestFileDescriptor assembles an in-memory FileDescriptorProto so
// schema mapping can be exercised without a descriptor file on disk.
func buildTestFileDescriptor(t *testing.T) *descriptorpb.FileDescriptorProto {
	t.Helper()

	str := func(s string) *string { return &s }
	i32 := func(i int32) *int32 { return &i }
	label := func(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }
	typ := func(ty descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return &ty }

	return &descriptorpb.FileDescriptorProto{
		Name:    str("test.proto"),
		Package: str("testpkg"),
		Syntax:  str("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: str("Tags"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     str("tag"),
						Number:   i32(1),
						Label:    label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED),
						Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_STRING),
						JsonName: str("tag"),
					},
				},
			},
			{
				Name: str("User"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     str("name"),
						Number:   i32(1),
						Label:    label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
						Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_STRING),
						JsonName: str("name"),
					},
					{
						Name:     str("id"),
						Number:   i32(2),
						Label:    label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
						Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_INT32),
						JsonName: str("id"),
					},
					{
						Name:     str("tags"),
						Number:   i32(3),
						Label:    label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED),
						Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE),
						TypeName: str(".testpkg.Tags"),
						JsonName: str("tags"),
					},
					{
						Name:     str("raw"),
						Number:   i32(4),
						Label:    label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL),
						Type:     typ(descriptorpb.FieldDescriptorProto_TYPE_BYTES),
						JsonName: str("raw"),
					},
				},
			},
		},
	}
}

func TestBuildSchemaScalarAndStruct(t *testing.T) {
	fdProto := buildTestFileDescriptor(t)
	// Drop the unsupported "raw" bytes field for the happy-path test.
	fdProto.MessageType[1].Field = fdProto.MessageType[1].Field[:3]

	fd, err := protodesc.NewFile(fdProto, nil)
	if err != nil {
		t.Fatal(err)
	}

	userMsg := fd.Messages().ByName("User")
	cols, err := BuildSchema(userMsg, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	if cols[0].Name != "name" || cols[0].Kind != KindVarchar || cols[0].List {
		t.Errorf("name column = %+v", cols[0])
	}
	if cols[1].Name != "id" || cols[1].Kind != KindInteger {
		t.Errorf("id column = %+v", cols[1])
	}
	if cols[2].Name != "tags" || cols[2].Kind != KindStruct || !cols[2].List {
		t.Errorf("tags column = %+v", cols[2])
	}
	if len(cols[2].Fields) != 1 || cols[2].Fields[0].Kind != KindVarchar || !cols[2].Fields[0].List {
		t.Errorf("nested tags.tag column = %+v", cols[2].Fields)
	}
}

func TestBuildSchemaUnsupportedKind(t *testing.T) {
	fdProto := buildTestFileDescriptor(t)
	fd, err := protodesc.NewFile(fdProto, nil)
	if err != nil {
		t.Fatal(err)
	}

	userMsg := fd.Messages().ByName("User")
	_, err = BuildSchema(userMsg, false)
	if err == nil {
		t.Fatal("expected error for bytes field")
	}
}

func TestLoadDescriptorSetRoundtrip(t *testing.T) {
	fdProto := buildTestFileDescriptor(t)
	fdProto.MessageType[1].Field = fdProto.MessageType[1].Field[:3]

	fdSet := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdProto}}
	raw, err := proto.Marshal(fdSet)
	if err != nil {
		t.Fatal(err)
	}

	path := writeTempFile(t, raw)
	files, err := loadDescriptorSet(path)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := findMessage(files, "testpkg.User")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Fields().Len() != 3 {
		t.Errorf("expected 3 fields, got %d", msg.Fields().Len())
	}
}
