// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides descriptorcache.go: memoizing parsed descriptor
// sets across repeated binds against the same descriptors file
// (SPEC_FULL.md §3 "Descriptor set").
//
// Adapted directly from pkg/lrucache.Cache: a bind against a descriptor
// file already seen in this process reuses the previously parsed
// *protoregistry.Files instead of re-reading and re-parsing it.
package pbscan

import (
	"time"

	"github.com/0xcaff/duckdb-protobuf/pkg/lrucache"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// descriptorCacheTTL bounds how long a parsed descriptor set is reused
// before a subsequent bind re-reads it from disk, so edits to a
// descriptors file on disk are eventually picked up without requiring a
// process restart.
const descriptorCacheTTL = 10 * time.Minute

// descriptorCacheMaxEntries is an approximate memory budget; lrucache.New
// takes a byte budget, and we treat each cached descriptor set as a
// nominal fixed cost rather than measuring its exact size.
const descriptorCacheMaxEntries = 64
const nominalDescriptorSetSize = 1

var descriptorSetCache = lrucache.New[*protoregistry.Files](descriptorCacheMaxEntries * nominalDescriptorSetSize)

// cachedDescriptorSet loads path's descriptor set, reusing a cached parse
// from a previous bind in this process when available.
func cachedDescriptorSet(path string) (*protoregistry.Files, error) {
	var loadErr error
	files := descriptorSetCache.Get(path, func() (*protoregistry.Files, time.Duration, int) {
		files, err := loadDescriptorSet(path)
		if err != nil {
			loadErr = err
			// Cache the failure for zero duration so a subsequent bind
			// retries immediately rather than being stuck on a stale error.
			return nil, 0, nominalDescriptorSetSize
		}
		return files, descriptorCacheTTL, nominalDescriptorSetSize
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return files, nil
}
