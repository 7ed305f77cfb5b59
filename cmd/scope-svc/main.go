// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-svc serves a scope device over a TCP control link.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-svc"

import (
	"flag"
	"log"

	"github.com/lharnaldi/rp-scope/scope"
)

func main() {
	var (
		addr   = flag.String("addr", ":9999", "scope-svc [addr]:port")
		depth  = flag.Uint("depth", scope.DefaultDepth, "capture buffer depth (power of two)")
		amp    = flag.Int("amp", 4000, "synthetic source amplitude")
		period = flag.Uint64("period", 1000, "synthetic source period, in ticks")
	)

	log.SetPrefix("scope-svc: ")
	log.SetFlags(0)

	flag.Parse()

	src := &scope.SineSource{Amp: int32(*amp), Period: *period}
	err := scope.Serve(*addr, src, scope.WithDepth(uint32(*depth)))
	if err != nil {
		log.Fatalf("could not create scope-svc service: %+v", err)
	}
}
