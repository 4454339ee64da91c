// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides config.go: bind-time parameters for the protobuf
// table function.
//
// # Parameter Hierarchy
//
// Parameters is built once per bind call from the table function's named
// arguments and is immutable for the lifetime of the query:
//
//	Parameters
//	├─ Files:              glob expanded by the file source (filesource.go)
//	├─ DescriptorSetPath:   loaded once via the descriptor cache
//	├─ MessageType:         fully qualified root message name
//	├─ Delimiter:           record framing mode (recordreader.go)
//	├─ IncludeFilename/Position/Size: synthetic column flags
//	└─ TimestampAsNative:   opt-in google.protobuf.Timestamp specialization
package pbscan

import "fmt"

// Delimiter names the record framing convention used by the record reader
// (SPEC_FULL.md §4.2/§6).
type Delimiter int

const (
	// DelimiterUnspecified is the zero value; Validate rejects it.
	DelimiterUnspecified Delimiter = iota
	DelimiterBigEndianFixed32
	DelimiterVarint
	DelimiterSingleMessagePerFile
)

// AssignDelimiter parses the value of the delimiter named argument,
// mirroring the closed-enum-with-explicit-error-listing idiom used
// elsewhere in this codebase for small string-keyed enums.
func AssignDelimiter(str string) (Delimiter, error) {
	switch str {
	case "BigEndianFixed":
		return DelimiterBigEndianFixed32, nil
	case "Varint":
		return DelimiterVarint, nil
	case "SingleMessagePerFile":
		return DelimiterSingleMessagePerFile, nil
	default:
		return DelimiterUnspecified, fmt.Errorf(
			"[PBSCAN]> unknown delimiter %q, must be one of: BigEndianFixed, Varint, SingleMessagePerFile", str)
	}
}

func (d Delimiter) String() string {
	switch d {
	case DelimiterBigEndianFixed32:
		return "BigEndianFixed"
	case DelimiterVarint:
		return "Varint"
	case DelimiterSingleMessagePerFile:
		return "SingleMessagePerFile"
	default:
		return "Unspecified"
	}
}

// Parameters is the fully validated, immutable set of bind-time arguments
// for one query (SPEC_FULL.md §3 "Parameters").
type Parameters struct {
	Files             string
	DescriptorSetPath string
	MessageType       string
	Delimiter         Delimiter
	IncludeFilename   bool
	IncludePosition   bool
	IncludeSize       bool
	TimestampAsNative bool
}

// Validate checks that every required field was supplied and that
// Delimiter names a known framing mode. It does not touch the filesystem
// or the descriptor set — that happens during Bind, once Parameters is
// known to be well-formed.
func (p Parameters) Validate() error {
	if p.Files == "" {
		return fmt.Errorf("%w: files", ErrMissingParameter)
	}
	if p.DescriptorSetPath == "" {
		return fmt.Errorf("%w: descriptors", ErrMissingParameter)
	}
	if p.MessageType == "" {
		return fmt.Errorf("%w: message_type", ErrMissingParameter)
	}
	if p.Delimiter == DelimiterUnspecified {
		return fmt.Errorf("%w: delimiter", ErrMissingParameter)
	}
	return nil
}
