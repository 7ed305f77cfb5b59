// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// scope-lcio-dump displays waveform data embedded in LCIO files.
//
// Usage: scope-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> scope-lcio-dump ./scope_daq_042.lcio
//	=== run 42 chan A ===
//	dec:           8
//	write ptr:    14
//	trig ptr:     10
//	pre count:    10
//	samples:      16
//	  [0] 100
//	  [1] 210
//	[...]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/lcio"
)

const usage = `scope-lcio-dump displays waveform data embedded in LCIO files.

Usage: scope-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("scope-lcio-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("lcio", flag.ExitOnError)

		nmax = fset.Int("n", 8, "maximum number of samples to display per event")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nmax)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nmax int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	for r.Next() {
		evt := r.Event()
		for _, name := range []string{"SCOPE_CH0", "SCOPE_CH1"} {
			obj, ok := evt.Get(name).(*lcio.GenericObject)
			if !ok || len(obj.Data) == 0 {
				continue
			}
			raw := obj.Data[0].I32s
			if len(raw) < 6 {
				return fmt.Errorf("truncated payload in collection %q (%d words)",
					name, len(raw),
				)
			}
			data := raw[6:]

			fmt.Fprintf(wbuf, "=== run %d chan %s ===\n",
				evt.RunNumber, chanName(raw[0]),
			)
			fmt.Fprintf(wbuf, "dec:       % 10d\n", raw[1])
			fmt.Fprintf(wbuf, "write ptr: % 10d\n", raw[3])
			fmt.Fprintf(wbuf, "trig ptr:  % 10d\n", raw[4])
			fmt.Fprintf(wbuf, "pre count: % 10d\n", raw[5])
			fmt.Fprintf(wbuf, "samples:   % 10d\n", len(data))

			for i, v := range data {
				if i >= nmax {
					fmt.Fprintf(wbuf, "  [...]\n")
					break
				}
				fmt.Fprintf(wbuf, "  [%d] %d\n", i, v)
			}
		}
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return fmt.Errorf("could not read LCIO file: %w", err)
	}
	return nil
}

func chanName(ch int32) string {
	if ch == 0 {
		return "A"
	}
	return "B"
}
