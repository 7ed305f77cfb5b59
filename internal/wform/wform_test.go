// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wform

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestStream(t *testing.T) {
	recs := []Record{
		{
			Run: 42, Chan: 0, Dec: 8, Depth: 8,
			WritePtr: 6, TrigPtr: 2, PreCount: 2,
			Data: []int16{0, 1, 2, 3, -4, -5, -6, -7},
		},
		{
			Run: 42, Chan: 1, Dec: 8, Depth: 8,
			WritePtr: 6, TrigPtr: 2, PreCount: 2,
			Data: []int16{7, 6, 5, 4, 3, 2, 1, 0},
		},
	}

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			t.Fatalf("could not encode record %d: %+v", i, err)
		}
	}

	dec := NewDecoder(buf)
	for i := range recs {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("could not decode record %d: %+v", i, err)
		}
		if !reflect.DeepEqual(rec, recs[i]) {
			t.Fatalf("invalid record %d:\ngot= %#v\nwant=%#v", i, rec, recs[i])
		}
	}

	var rec Record
	if err := dec.Decode(&rec); !errors.Is(err, io.EOF) {
		t.Fatalf("expected a clean EOF, got: %+v", err)
	}
}

func TestEncodeDepthMismatch(t *testing.T) {
	enc := NewEncoder(io.Discard)
	err := enc.Encode(&Record{Depth: 8, Data: make([]int16, 4)})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte("XXXX")))
	var rec Record
	err := dec.Decode(&rec)
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestDecodeCorrupted(t *testing.T) {
	recs := []Record{{
		Run: 1, Depth: 4, Data: []int16{1, 2, 3, 4},
	}}

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	if err := enc.Encode(&recs[0]); err != nil {
		t.Fatalf("could not encode record: %+v", err)
	}

	raw := buf.Bytes()
	raw[len(raw)-3] ^= 0x40 // flip a bit in the last sample

	dec := NewDecoder(bytes.NewReader(raw))
	var rec Record
	err := dec.Decode(&rec)
	if err == nil || !strings.Contains(err.Error(), "invalid record crc") {
		t.Fatalf("corrupted record must not decode cleanly: %+v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	recs := []Record{{
		Run: 1, Depth: 4, Data: []int16{1, 2, 3, 4},
	}}

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	if err := enc.Encode(&recs[0]); err != nil {
		t.Fatalf("could not encode record: %+v", err)
	}

	raw := buf.Bytes()
	for _, n := range []int{
		len(raw) - 2, // missing crc
		len(raw) - 4, // mid-data
		4 + 10,       // mid-header
		2,            // mid-magic
	} {
		dec := NewDecoder(bytes.NewReader(raw[:n]))
		var rec Record
		err := dec.Decode(&rec)
		if err == nil || errors.Is(err, io.EOF) {
			t.Fatalf("stream cut at %d must not decode cleanly: %+v", n, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("stream cut at %d: invalid error: %+v", n, err)
		}
	}
}
