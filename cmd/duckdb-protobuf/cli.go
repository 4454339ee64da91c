// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/0xcaff/duckdb-protobuf/pkg/log"
	"github.com/0xcaff/duckdb-protobuf/pkg/pbscan"
)

// cliFlags holds the command-line surface of the demo binary: enough to
// exercise pkg/pbscan's Bind/Init/Produce lifecycle against a descriptor
// set and a glob of framed files without an actual DuckDB host present.
type cliFlags struct {
	files             string
	descriptorSet     string
	messageType       string
	delimiter         string
	includeFilename   bool
	includePosition   bool
	includeSize       bool
	timestampAsNative bool
	chunkCapacity     int
	logLevel          string
	columns           string
}

func cliInit() cliFlags {
	var flags cliFlags

	flag.StringVar(&flags.files, "files", "", "glob of framed record files to scan, e.g. 'data/**/*.bin'")
	flag.StringVar(&flags.descriptorSet, "descriptors", "", "path to a serialized FileDescriptorSet")
	flag.StringVar(&flags.messageType, "message-type", "", "fully qualified root message name, e.g. mypkg.MyMessage")
	flag.StringVar(&flags.delimiter, "delimiter", "BigEndianFixed", "record framing: BigEndianFixed, Varint, or SingleMessagePerFile")
	flag.BoolVar(&flags.includeFilename, "include-filename", false, "append a synthetic filename column")
	flag.BoolVar(&flags.includePosition, "include-position", false, "append a synthetic position column")
	flag.BoolVar(&flags.includeSize, "include-size", false, "append a synthetic size column")
	flag.BoolVar(&flags.timestampAsNative, "timestamp-as-native", false, "map google.protobuf.Timestamp fields to a native timestamp column")
	flag.IntVar(&flags.chunkCapacity, "chunk-capacity", 2048, "rows per Produce call")
	flag.StringVar(&flags.logLevel, "loglevel", "info", "debug, info, notice, warn, err, crit")
	flag.StringVar(&flags.columns, "columns", "", "comma-separated root column names to project (projection pushdown); empty means all")
	flag.Parse()

	log.SetLogLevel(flags.logLevel)

	return flags
}

func (f cliFlags) toParameters() (pbscan.Parameters, error) {
	delim, err := pbscan.AssignDelimiter(f.delimiter)
	if err != nil {
		return pbscan.Parameters{}, err
	}

	return pbscan.Parameters{
		Files:             f.files,
		DescriptorSetPath: f.descriptorSet,
		MessageType:       f.messageType,
		Delimiter:         delim,
		IncludeFilename:   f.includeFilename,
		IncludePosition:   f.includePosition,
		IncludeSize:       f.includeSize,
		TimestampAsNative: f.timestampAsNative,
	}, nil
}

func usageError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	flag.Usage()
	os.Exit(2)
}
