// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-wfm-split splits a waveform file into per-channel
// waveform files.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-wfm-split"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lharnaldi/rp-scope/internal/wform"
)

var (
	msg = log.New(os.Stdout, "scope-wfm-split: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("wfm", flag.ExitOnError)

		oname = fset.String("o", "out.wfm", "path to output waveform file")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: scope-wfm-split [OPTIONS] file.wfm

ex:
 $> scope-wfm-split -o out.wfm ./scope_daq_042.wfm

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		msg.Fatalf("missing input waveform file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output waveform file")
	}

	for _, arg := range fset.Args() {
		err := process(*oname, arg)
		if err != nil {
			msg.Fatalf("could not split waveform file %q: %+v", arg, err)
		}
	}
}

func process(oname, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open waveform file: %w", err)
	}
	defer f.Close()

	out := make(map[uint8]*wform.Encoder)

	dec := wform.NewDecoder(f)

loop:
	for {
		var rec wform.Record
		err := dec.Decode(&rec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode record: %w", err)
		}

		enc, ok := out[rec.Chan]
		if !ok {
			och := outFileFrom(oname, rec.Chan)
			msg.Printf("creating output file %q...", och)
			o, err := os.Create(och)
			if err != nil {
				return fmt.Errorf("could not create output file: %w", err)
			}
			defer o.Close()

			enc = wform.NewEncoder(o)
			out[rec.Chan] = enc
		}

		err = enc.Encode(&rec)
		if err != nil {
			return fmt.Errorf("could not encode record: %w", err)
		}
	}

	return nil
}

func outFileFrom(fname string, ch uint8) string {
	var (
		ext   = filepath.Ext(fname)
		oname = strings.Replace(fname, ext, fmt.Sprintf("-ch%d%s", ch, ext), 1)
	)
	return oname
}
