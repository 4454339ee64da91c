// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbscan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "records.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecordReaderBigEndianFixed32(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x03, 'a', 'b', 'c',
		0x00, 0x00, 0x00, 0x02, 'd', 'e',
	}
	path := writeTempFile(t, data)

	rr, err := openRecordReader(path, DelimiterBigEndianFixed32)
	if err != nil {
		t.Fatal(err)
	}
	defer rr.Close()

	rec1, err := rr.next()
	if err != nil || rec1 == nil {
		t.Fatalf("rec1: err=%v rec=%v", err, rec1)
	}
	if string(rec1.bytes) != "abc" || rec1.position != 0 || rec1.size != 3 {
		t.Errorf("rec1 = %+v", rec1)
	}

	rec2, err := rr.next()
	if err != nil || rec2 == nil {
		t.Fatalf("rec2: err=%v rec=%v", err, rec2)
	}
	if string(rec2.bytes) != "de" || rec2.position != 7 {
		t.Errorf("rec2 = %+v", rec2)
	}

	rec3, err := rr.next()
	if err != nil || rec3 != nil {
		t.Fatalf("expected clean eof, got rec=%v err=%v", rec3, err)
	}
}

func TestRecordReaderVarint(t *testing.T) {
	data := []byte{0x03, 'x', 'y', 'z', 0x00}
	path := writeTempFile(t, data)

	rr, err := openRecordReader(path, DelimiterVarint)
	if err != nil {
		t.Fatal(err)
	}
	defer rr.Close()

	rec1, err := rr.next()
	if err != nil || rec1 == nil {
		t.Fatalf("rec1: err=%v rec=%v", err, rec1)
	}
	if string(rec1.bytes) != "xyz" {
		t.Errorf("rec1 = %+v", rec1)
	}

	rec2, err := rr.next()
	if err != nil || rec2 == nil {
		t.Fatalf("rec2: err=%v rec=%v", err, rec2)
	}
	if len(rec2.bytes) != 0 {
		t.Errorf("rec2 expected empty payload, got %+v", rec2)
	}
}

func TestRecordReaderSingleMessagePerFile(t *testing.T) {
	data := []byte("the-entire-file-is-one-message")
	path := writeTempFile(t, data)

	rr, err := openRecordReader(path, DelimiterSingleMessagePerFile)
	if err != nil {
		t.Fatal(err)
	}
	defer rr.Close()

	rec1, err := rr.next()
	if err != nil || rec1 == nil {
		t.Fatalf("rec1: err=%v rec=%v", err, rec1)
	}
	if string(rec1.bytes) != string(data) || rec1.position != 0 {
		t.Errorf("rec1 = %+v", rec1)
	}

	rec2, err := rr.next()
	if err != nil || rec2 != nil {
		t.Fatalf("expected single record, got second rec=%v err=%v", rec2, err)
	}
}

func TestRecordReaderTruncatedFrame(t *testing.T) {
	// Declares a 10-byte payload but only 2 bytes follow.
	data := []byte{0x00, 0x00, 0x00, 0x0a, 'h', 'i'}
	path := writeTempFile(t, data)

	rr, err := openRecordReader(path, DelimiterBigEndianFixed32)
	if err != nil {
		t.Fatal(err)
	}
	defer rr.Close()

	_, err = rr.next()
	if err == nil {
		t.Fatal("expected truncation error")
	}
}
