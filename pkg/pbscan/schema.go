// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides schema.go: mapping a protobuf message
// descriptor to the host's declared output columns (SPEC_FULL.md §4.4).
//
// Grounded on the original implementation's into_logical_type/
// into_logical_type_single (see _examples/original_source/src/read.rs),
// re-expressed against protoreflect.FieldDescriptor.Kind() instead of
// prost_types::field_descriptor_proto::Type.
package pbscan

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// LogicalKind is the host's output type for one column, independent of
// any particular host engine's concrete type system.
type LogicalKind int

const (
	KindBoolean LogicalKind = iota
	KindInteger             // int32
	KindBigint              // int64
	KindUinteger            // uint32
	KindUbigint             // uint64
	KindFloat               // float32
	KindDouble              // float64
	KindVarchar             // string, and enum-by-name
	KindTimestamp           // microseconds since epoch (timestamp_as_native only)
	KindStruct              // recurse into Fields
)

// Column is one declared output column: either a scalar/enum leaf, a
// STRUCT of further columns, or either of those wrapped in LIST.
type Column struct {
	Name   string
	Tag    protoreflect.FieldNumber
	Kind   LogicalKind
	List   bool
	Fields []Column // populated when Kind == KindStruct
}

const wellKnownTimestamp protoreflect.FullName = "google.protobuf.Timestamp"

// BuildSchema declares the output column list for msg's top-level fields,
// recursing into nested messages as STRUCT columns. Returns
// ErrUnsupportedFieldKind, naming the offending field, for bytes,
// sint32/64, fixed32/64, sfixed32/64, and groups (SPEC_FULL.md §4.4).
func BuildSchema(msg protoreflect.MessageDescriptor, timestampAsNative bool) ([]Column, error) {
	fields := msg.Fields()
	cols := make([]Column, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		col, err := columnForField(fields.Get(i), timestampAsNative)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func columnForField(field protoreflect.FieldDescriptor, timestampAsNative bool) (Column, error) {
	leaf, err := leafColumnForField(field, timestampAsNative)
	if err != nil {
		return Column{}, err
	}
	leaf.List = field.Cardinality() == protoreflect.Repeated
	return leaf, nil
}

func leafColumnForField(field protoreflect.FieldDescriptor, timestampAsNative bool) (Column, error) {
	name := string(field.Name())
	tag := field.Number()

	switch field.Kind() {
	case protoreflect.BoolKind:
		return Column{Name: name, Tag: tag, Kind: KindBoolean}, nil
	case protoreflect.Int32Kind:
		return Column{Name: name, Tag: tag, Kind: KindInteger}, nil
	case protoreflect.Int64Kind:
		return Column{Name: name, Tag: tag, Kind: KindBigint}, nil
	case protoreflect.Uint32Kind:
		return Column{Name: name, Tag: tag, Kind: KindUinteger}, nil
	case protoreflect.Uint64Kind:
		return Column{Name: name, Tag: tag, Kind: KindUbigint}, nil
	case protoreflect.FloatKind:
		return Column{Name: name, Tag: tag, Kind: KindFloat}, nil
	case protoreflect.DoubleKind:
		return Column{Name: name, Tag: tag, Kind: KindDouble}, nil
	case protoreflect.StringKind:
		return Column{Name: name, Tag: tag, Kind: KindVarchar}, nil
	case protoreflect.EnumKind:
		return Column{Name: name, Tag: tag, Kind: KindVarchar}, nil
	case protoreflect.MessageKind:
		msg := field.Message()
		if timestampAsNative && msg.FullName() == wellKnownTimestamp {
			return Column{Name: name, Tag: tag, Kind: KindTimestamp}, nil
		}
		sub, err := BuildSchema(msg, timestampAsNative)
		if err != nil {
			return Column{}, err
		}
		return Column{Name: name, Tag: tag, Kind: KindStruct, Fields: sub}, nil
	default:
		return Column{}, fmt.Errorf("%w: field %q has kind %s", ErrUnsupportedFieldKind, name, field.Kind())
	}
}
