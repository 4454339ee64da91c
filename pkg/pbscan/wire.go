// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan

import (
	"errors"
	"fmt"
)

// wireType is the 3-bit encoding family carried in the low bits of a
// protobuf field tag.
type wireType uint8

const (
	wireVarint          wireType = 0
	wireFixed64         wireType = 1
	wireLengthDelimited wireType = 2
	wireStartGroup      wireType = 3
	wireEndGroup        wireType = 4
	wireFixed32         wireType = 5
)

// ErrGroupsUnsupported is returned when a start/end-group wire type is
// encountered. Groups are a deprecated protobuf encoding with no
// equivalent logical type in the schema mapper (SPEC_FULL.md §4.4); this
// is a hard error rather than a skip.
var ErrGroupsUnsupported = errors.New("[PBSCAN]> protobuf groups are not supported")

// ErrUnknownWireType is returned when a tag's low 3 bits don't name one of
// the six defined wire types.
var ErrUnknownWireType = errors.New("[PBSCAN]> unknown wire type")

// decodeTag splits a varint-decoded tag into its field number and wire
// type, per tag = (field_number << 3) | wire_type.
func decodeTag(tag uint64) (fieldNumber int32, wt wireType) {
	return int32(tag >> 3), wireType(tag & 0x7)
}

// skipField advances past one value of the given wire type without
// interpreting it, for fields whose number is absent from the message
// descriptor (SPEC_FULL.md §4.7 step 3 — unknown fields are silently
// skipped, protobuf-compatible). Returns the number of bytes consumed
// from buf.
func skipField(buf []byte, wt wireType) (n int, err error) {
	switch wt {
	case wireVarint:
		_, consumed, ok, err := decodeVarint64(buf)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errTruncated
		}
		return consumed, nil

	case wireFixed64:
		if len(buf) < 8 {
			return 0, errTruncated
		}
		return 8, nil

	case wireFixed32:
		if len(buf) < 4 {
			return 0, errTruncated
		}
		return 4, nil

	case wireLengthDelimited:
		length, consumed, ok, err := decodeVarint64(buf)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errTruncated
		}
		total := consumed + int(length)
		if total < consumed || total > len(buf) {
			return 0, errTruncated
		}
		return total, nil

	case wireStartGroup, wireEndGroup:
		return 0, ErrGroupsUnsupported

	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownWireType, wt)
	}
}

// errTruncated is wrapped with record/file context by the projector and
// record reader before it reaches a caller.
var errTruncated = errors.New("[PBSCAN]> unexpected eof decoding wire value")
