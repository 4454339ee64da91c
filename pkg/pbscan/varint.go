// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan

import "errors"

// ErrVarintOverflow means a decoded varint cannot be represented in the
// requested width (a 32-bit decode saw more than 5 bytes, or a 64-bit
// decode saw more than 10, or the final byte carries bits above the
// target width's last-byte mask).
var ErrVarintOverflow = errors.New("[PBSCAN]> varint does not fit in target width")

const (
	maxVarint64Len = 10
	maxVarint32Len = 5

	lastByteMax64 = 0x01
	lastByteMax32 = 0x0f
)

// decodeVarint64 decodes a base-128 varint of up to 64 bits from buf.
//
// Returns the decoded value and the number of bytes consumed. If buf does
// not contain a complete varint (the continuation bit is set on every
// byte present), ok is false and no error is returned — the caller is
// expected to treat this as "need more bytes" when streaming, or as a
// truncation error when the end of the buffer is also the end of the
// record. If the varint is syntactically complete but exceeds 10 bytes or
// the 10th byte carries bits outside lastByteMax64, err is
// ErrVarintOverflow.
func decodeVarint64(buf []byte) (value uint64, n int, ok bool, err error) {
	if len(buf) >= 1 && buf[0] < 0x80 {
		return uint64(buf[0]), 1, true, nil
	}
	if len(buf) >= 2 && buf[1] < 0x80 {
		return uint64(buf[0]&0x7f) | uint64(buf[1])<<7, 2, true, nil
	}
	return decodeVarintFull(buf, maxVarint64Len, lastByteMax64)
}

// decodeVarint32 decodes a base-128 varint, rejecting any value that does
// not fit in 32 bits. Per the protobuf wire format, a 32-bit varint field
// may still be encoded with up to 5 bytes; the 5th byte's value bits above
// 0x0f would require more than 32 bits and are rejected as overflow.
func decodeVarint32(buf []byte) (value uint32, n int, ok bool, err error) {
	if len(buf) >= 1 && buf[0] < 0x80 {
		return uint32(buf[0]), 1, true, nil
	}
	if len(buf) >= 2 && buf[1] < 0x80 {
		return uint32(buf[0]&0x7f) | uint32(buf[1])<<7, 2, true, nil
	}
	v, n, ok, err := decodeVarintFull(buf, maxVarint32Len, lastByteMax32)
	return uint32(v), n, ok, err
}

// decodeVarintFull is the general loop used once the one- and two-byte
// fast paths above don't apply. maxLen/lastByteMax select the 32- or
// 64-bit variant.
func decodeVarintFull(buf []byte, maxLen int, lastByteMax byte) (value uint64, n int, ok bool, err error) {
	var r uint64
	for i, b := range buf {
		if i == maxLen-1 {
			if b > lastByteMax {
				return 0, 0, false, ErrVarintOverflow
			}
			r |= uint64(b) << (uint(i) * 7)
			return r, i + 1, true, nil
		}

		r |= uint64(b&0x7f) << (uint(i) * 7)
		if b < 0x80 {
			return r, i + 1, true, nil
		}
	}
	return 0, 0, false, nil
}
