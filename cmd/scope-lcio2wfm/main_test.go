// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go-hep.org/x/hep/lcio"

	"github.com/lharnaldi/rp-scope/internal/wform"
	"github.com/lharnaldi/rp-scope/internal/xcnv"
)

func TestLCIO2WFM(t *testing.T) {
	tmp, err := os.MkdirTemp("", "rp-scope-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	const run = 63
	recs := []wform.Record{
		{
			Run: run, Chan: 0, Dec: 8, Depth: 4,
			WritePtr: 1, TrigPtr: 3, PreCount: 5,
			Data: []int16{1, -2, 3, -4},
		},
		{
			Run: run, Chan: 1, Dec: 8, Depth: 4,
			WritePtr: 1, TrigPtr: 3, PreCount: 5,
			Data: []int16{-5, 6, -7, 8},
		},
	}

	raw := new(bytes.Buffer)
	enc := wform.NewEncoder(raw)
	for i := range recs {
		err = enc.Encode(&recs[i])
		if err != nil {
			t.Fatalf("could not encode record %d: %+v", i, err)
		}
	}

	fname := filepath.Join(tmp, "scope_daq_063.wfm")
	lw, err := lcio.Create(fname + ".lcio")
	if err != nil {
		t.Fatalf("could not create LCIO file: %+v", err)
	}
	defer lw.Close()

	msg := log.New(io.Discard, "", 0)
	err = xcnv.WFM2LCIO(lw, wform.NewDecoder(raw), run, msg)
	if err != nil {
		t.Fatalf("could not convert to LCIO: %+v", err)
	}
	err = lw.Close()
	if err != nil {
		t.Fatalf("could not close LCIO file: %+v", err)
	}

	got, err := numEvents(fname + ".lcio")
	if err != nil {
		t.Fatalf("could not retrieve number of events: %+v", err)
	}
	if got, want := got, int64(len(recs)); got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}

	err = process(fname, fname+".lcio", 1)
	if err != nil {
		t.Fatalf("could not process LCIO->WFM: %+v", err)
	}

	f, err := os.Open(fname)
	if err != nil {
		t.Fatalf("could not open waveform file: %+v", err)
	}
	defer f.Close()

	dec := wform.NewDecoder(f)
	for i := range recs {
		var rec wform.Record
		err = dec.Decode(&rec)
		if err != nil {
			t.Fatalf("could not decode record %d: %+v", i, err)
		}
		if !reflect.DeepEqual(rec, recs[i]) {
			t.Fatalf("invalid record %d:\ngot= %#v\nwant=%#v", i, rec, recs[i])
		}
	}
}
