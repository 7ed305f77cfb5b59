// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-lcio2wfm converts a LCIO file back into a raw
// waveform file.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-lcio2wfm"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/lcio"

	"github.com/lharnaldi/rp-scope/internal/xcnv"
)

func main() {
	log.SetPrefix("scope-lcio2wfm: ")
	log.SetFlags(0)

	var (
		oname = flag.String("o", "out.wfm", "path to output waveform file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: scope-lcio2wfm [OPTIONS] file.lcio

ex:
 $> scope-lcio2wfm -o out.wfm ./input.lcio

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input LCIO file")
	}

	if *oname == "" {
		flag.Usage()
		log.Fatalf("invalid output waveform file name")
	}

	n, err := numEvents(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not assess number of events: %+v", err)
	}
	log.Printf("input:  %s", flag.Arg(0))
	log.Printf("events: %d", n)

	freq := int(n / 10)
	if freq == 0 {
		freq = 1
	}

	err = process(*oname, flag.Arg(0), freq)
	if err != nil {
		log.Fatalf("could not convert LCIO file: %+v", err)
	}
}

func numEvents(fname string) (int64, error) {
	r, err := lcio.Open(fname)
	if err != nil {
		return 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer r.Close()

	var n int64
	for r.Next() {
		n++
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("could not assess number of events in %q: %w", fname, err)
	}

	return n, nil
}

func process(oname, fname string, freq int) error {
	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	f, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output waveform file: %w", err)
	}
	defer f.Close()

	err = xcnv.LCIO2WFM(f, r, freq, log.Default())
	if err != nil {
		return fmt.Errorf("could not convert LCIO file: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output waveform file: %w", err)
	}
	return nil
}
