// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pbscan provides recordreader.go: length-framed record iteration
// over a single open file.
//
// A recordReader wraps a *bufio.Reader and yields successive record byte
// buffers according to one of three framing conventions (SPEC_FULL.md §6):
//
//	BigEndianFixed32      4-byte big-endian length prefix, then payload
//	Varint                base-128 varint length prefix, then payload
//	SingleMessagePerFile  the whole file is exactly one record
//
// A clean EOF at a record boundary (no bytes of the next length prefix
// read yet) ends the stream normally. Any other EOF — mid length-prefix or
// mid-payload — is reported as a truncation error naming the file and the
// byte offset at which the record started, matching the
// "record at offset N of file F" context-chain convention described in
// SPEC_FULL.md §7.
package pbscan

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xcaff/duckdb-protobuf/pkg/log"
)

// record is one framed message together with its provenance, consumed
// once by the projector and then discarded (SPEC_FULL.md §3 "Record").
type record struct {
	bytes    []byte
	filename string
	position int64 // byte offset of the length prefix (0 for SingleMessagePerFile)
	size     int64 // payload length in bytes
}

type recordReader struct {
	f        *os.File
	r        *bufio.Reader
	filename string
	delim    Delimiter
	offset   int64 // bytes consumed from f so far
	done     bool  // SingleMessagePerFile: true once the one record has been yielded
}

func openRecordReader(path string, delim Delimiter) (*recordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[PBSCAN]> opening %s: %w", path, err)
	}
	return &recordReader{
		f:        f,
		r:        bufio.NewReader(f),
		filename: path,
		delim:    delim,
	}, nil
}

func (rr *recordReader) Close() error {
	return rr.f.Close()
}

// next returns the next record, or (nil, nil) at a clean end of stream.
func (rr *recordReader) next() (*record, error) {
	switch rr.delim {
	case DelimiterBigEndianFixed32:
		return rr.nextFixed32()
	case DelimiterVarint:
		return rr.nextVarint()
	case DelimiterSingleMessagePerFile:
		return rr.nextSingleMessage()
	default:
		return nil, fmt.Errorf("[PBSCAN]> %s: unhandled delimiter %v", rr.filename, rr.delim)
	}
}

func (rr *recordReader) nextFixed32() (*record, error) {
	start := rr.offset
	var lenBuf [4]byte
	n, err := io.ReadFull(rr.r, lenBuf[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, nil
		}
		return nil, rr.truncated(start, err)
	}
	rr.offset += 4

	length := binary.BigEndian.Uint32(lenBuf[:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(rr.r, payload); err != nil {
		return nil, rr.truncated(start, err)
	}
	rr.offset += int64(length)

	return &record{bytes: payload, filename: rr.filename, position: start, size: int64(length)}, nil
}

func (rr *recordReader) nextVarint() (*record, error) {
	start := rr.offset
	length, consumed, err := rr.readVarintLength()
	if err != nil {
		if errors.Is(err, io.EOF) && consumed == 0 {
			return nil, nil
		}
		return nil, rr.truncated(start, err)
	}
	rr.offset += int64(consumed)

	payload := make([]byte, length)
	if _, err := io.ReadFull(rr.r, payload); err != nil {
		return nil, rr.truncated(start, err)
	}
	rr.offset += int64(length)

	return &record{bytes: payload, filename: rr.filename, position: start, size: int64(length)}, nil
}

// readVarintLength decodes a varint length prefix directly from the
// buffered reader, one byte at a time, since the prefix length isn't
// known up front the way the fixed-width varint.go decoders assume a
// complete slice is already in hand.
func (rr *recordReader) readVarintLength() (length uint64, consumed int, err error) {
	var shift uint
	for i := 0; i < maxVarint64Len; i++ {
		b, err := rr.r.ReadByte()
		if err != nil {
			return 0, consumed, err
		}
		consumed++
		if i == maxVarint64Len-1 && b > lastByteMax64 {
			return 0, consumed, ErrVarintOverflow
		}
		length |= uint64(b&0x7f) << shift
		shift += 7
		if b < 0x80 {
			return length, consumed, nil
		}
	}
	return 0, consumed, ErrVarintOverflow
}

func (rr *recordReader) nextSingleMessage() (*record, error) {
	if rr.done {
		return nil, nil
	}
	payload, err := io.ReadAll(rr.r)
	if err != nil {
		return nil, fmt.Errorf("[PBSCAN]> %s: %w", rr.filename, err)
	}
	rr.done = true
	return &record{bytes: payload, filename: rr.filename, position: 0, size: int64(len(payload))}, nil
}

func (rr *recordReader) truncated(recordStart int64, cause error) error {
	log.Warnf("[PBSCAN]> %s: truncated record at offset %d: %v", rr.filename, recordStart, cause)
	return fmt.Errorf("[PBSCAN]> record at offset %d of file %s: unexpected eof: %w", recordStart, rr.filename, cause)
}
