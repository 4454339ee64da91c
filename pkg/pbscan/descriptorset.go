// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides descriptorset.go: loading a serialized
// FileDescriptorSet into a navigable descriptor tree (SPEC_FULL.md §4.4,
// §3 "Descriptor set").
//
// Unlike the original implementation's hand-rolled descriptor-proto
// traversal (matching a field's fully qualified type name against every
// message/enum in the set), this uses
// google.golang.org/protobuf/reflect/protodesc to build a
// *protoregistry.Files, which resolves cross-file and cross-message type
// references for us — a field that refers to a message has that message's
// protoreflect.MessageDescriptor available directly, with no separate
// name lookup (see DESIGN.md).
package pbscan

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// loadDescriptorSet reads and parses a serialized FileDescriptorSet from
// path, returning a registry that can resolve any message or enum it
// contains (including cross-file references).
func loadDescriptorSet(path string) (*protoregistry.Files, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[PBSCAN]> reading descriptors %s: %w", path, err)
	}

	var fdSet descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fdSet); err != nil {
		return nil, fmt.Errorf("[PBSCAN]> parsing descriptor set %s: %w", path, err)
	}

	files, err := protodesc.NewFiles(&fdSet)
	if err != nil {
		return nil, fmt.Errorf("[PBSCAN]> building descriptor registry for %s: %w", path, err)
	}

	return files, nil
}

// findMessage resolves a fully qualified message name to its descriptor
// within files.
func findMessage(files *protoregistry.Files, fqn string) (protoreflect.MessageDescriptor, error) {
	desc, err := files.FindDescriptorByName(protoreflect.FullName(fqn))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownMessageType, fqn, err)
	}
	msgDesc, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a message type", ErrUnknownMessageType, fqn)
	}
	return msgDesc, nil
}
