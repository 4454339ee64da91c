// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan

import "errors"

var (
	// ErrNoFiles means the files glob expanded to zero paths.
	ErrNoFiles = errors.New("[PBSCAN]> files glob matched no paths")

	// ErrMissingParameter means a required named argument was not supplied.
	ErrMissingParameter = errors.New("[PBSCAN]> missing required parameter")

	// ErrUnknownMessageType means message_type did not resolve to any
	// message descriptor in the loaded descriptor set.
	ErrUnknownMessageType = errors.New("[PBSCAN]> unknown message type")

	// ErrUnsupportedFieldKind means a field of the root message (or a
	// nested message reachable from it) uses a protobuf kind this mapper
	// does not project: bytes, sint32/64, fixed32/64, sfixed32/64, or
	// groups (SPEC_FULL.md §4.4).
	ErrUnsupportedFieldKind = errors.New("[PBSCAN]> unsupported field kind")
)
