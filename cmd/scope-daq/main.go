// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-daq drives one scope capture in stand-alone mode.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-daq"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/lharnaldi/rp-scope/scope"
	"github.com/lharnaldi/rp-scope/internal/regs"
)

func main() {
	var (
		runnbr = flag.Int("run", -1, "run number")
		thresh = flag.Int("thresh", 100, "trigger threshold (raw ADC counts)")
		hyst   = flag.Int("hyst", 20, "trigger hysteresis (raw ADC counts)")
		src    = flag.Int("src", int(scope.TrigChARise), "trigger source")
		dly    = flag.Uint("dly", 0, "post-trigger delay (decimated samples)")
		dec    = flag.Uint("dec", 1, "decimation ratio")
		avg    = flag.Bool("avg", true, "enable decimation averaging")
		odir   = flag.String("o", "/home/root/run", "output dir")
	)

	log.SetPrefix("scope-daq: ")
	log.SetFlags(0)

	flag.Parse()

	log.Printf("run=%d src=%v thresh=%d hyst=%d dly=%d dec=%d",
		*runnbr, scope.TrigSrc(*src), *thresh, *hyst, *dly, *dec,
	)

	if *runnbr < 0 {
		log.Fatalf("invalid run number value")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, uint32(*runnbr), int32(*thresh), uint32(*hyst),
		scope.TrigSrc(*src), uint32(*dly), uint32(*dec), *avg, *odir,
	)
	if err != nil {
		log.Fatalf("could not run scope-daq: %+v", err)
	}
}

func run(ctx context.Context, runnbr uint32, thresh int32, hyst uint32, src scope.TrigSrc, dly, dec uint32, avg bool, odir string) error {
	dev, err := scope.New(scope.WithDetachedStreams())
	if err != nil {
		return fmt.Errorf("could not initialize scope device: %w", err)
	}

	dev.BusWrite(regs.SCOPE_CHA_THRES, uint32(thresh)&0x3FFF)
	dev.BusWrite(regs.SCOPE_CHB_THRES, uint32(thresh)&0x3FFF)
	dev.BusWrite(regs.SCOPE_CHA_HYST, hyst)
	dev.BusWrite(regs.SCOPE_CHB_HYST, hyst)
	dev.BusWrite(regs.SCOPE_TRG_DLY, dly)
	dev.BusWrite(regs.SCOPE_DEC_RATE, dec)
	if avg {
		dev.BusWrite(regs.SCOPE_AVG_EN, 1)
	}
	dev.BusWrite(regs.SCOPE_TRG_SRC, uint32(src))

	srcGen := &scope.SineSource{
		Amp:     4000,
		Period:  1000,
		TrigAt:  0,
		TrigLen: 0,
	}

	daq := scope.NewDAQ(dev, srcGen, odir, runnbr)
	err = daq.Run(ctx)
	if err != nil {
		return fmt.Errorf("could not run DAQ: %w", err)
	}
	return nil
}
