// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// scope-dump decodes and displays scope waveform files.
//
// Usage: scope-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> scope-dump ./scope_daq_001.wfm
//  === run 001 chan A ===
//  decimation:           8
//  depth:            16384
//  write ptr:         4242
//  trig ptr:          4142
//  pre count:          100
//  [...]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lharnaldi/rp-scope/internal/wform"
)

func main() {
	log.SetPrefix("scope-dump: ")
	log.SetFlags(0)

	samples := flag.Int("n", 8, "number of samples to display per record (-1 for all)")

	flag.Usage = func() {
		fmt.Printf(`scope-dump decodes and displays scope waveform files.

Usage: scope-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> scope-dump ./scope_daq_001.wfm
 === run 001 chan A ===
 decimation:           8
 depth:            16384
 write ptr:         4242
 trig ptr:          4142
 pre count:          100
 [...]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input waveform file")
	}

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname, *samples)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, samples int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := wform.NewDecoder(f)
loop:
	for {
		var rec wform.Record
		err := dec.Decode(&rec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode waveform record: %w", err)
		}
		fmt.Fprintf(wbuf, "=== run %03d chan %c ===\n", rec.Run, 'A'+rec.Chan)
		fmt.Fprintf(wbuf, "decimation: % 10d\n", rec.Dec)
		fmt.Fprintf(wbuf, "depth:      % 10d\n", rec.Depth)
		fmt.Fprintf(wbuf, "write ptr:  % 10d\n", rec.WritePtr)
		fmt.Fprintf(wbuf, "trig ptr:   % 10d\n", rec.TrigPtr)
		fmt.Fprintf(wbuf, "pre count:  % 10d\n", rec.PreCount)

		n := samples
		if n < 0 || n > len(rec.Data) {
			n = len(rec.Data)
		}
		for i := 0; i < n; i++ {
			idx := (rec.TrigPtr + uint32(i)) % rec.Depth
			fmt.Fprintf(wbuf, "  buf[%06d] = % 6d\n", idx, rec.Data[idx])
		}
	}

	return nil
}
