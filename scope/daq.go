// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lharnaldi/rp-scope/internal/wform"
)

// Source produces one tick of raw inputs. Next reports false when the
// source is exhausted.
type Source interface {
	Next() (Input, bool)
}

// SineSource is a synthetic two-channel source: a sine on channel A, a
// square on channel B, with an external trigger pulse at a fixed tick.
type SineSource struct {
	Amp     int32
	Period  uint64
	TrigAt  uint64 // tick of the external trigger edge, 0 for none
	TrigLen uint64

	tick uint64
}

func (src *SineSource) Next() (Input, bool) {
	t := src.tick
	src.tick++

	phase := 2 * math.Pi * float64(t%src.Period) / float64(src.Period)
	var in Input
	in.A = int32(float64(src.Amp) * math.Sin(phase))
	if t%src.Period < src.Period/2 {
		in.B = src.Amp
	} else {
		in.B = -src.Amp
	}
	if src.TrigAt > 0 && t >= src.TrigAt && t < src.TrigAt+src.TrigLen {
		in.Ext = true
	}
	return in, true
}

// DAQ drives a Scope from a Source until a capture episode completes,
// then freezes the buffers into a waveform file. The two streaming
// engines run in their own tick domains, fed from the sample domain
// over channels; only tick-count coherence between the domains is
// assumed.
type DAQ struct {
	msg *log.Logger
	dev *Scope
	src Source

	dir string
	run uint32
}

// NewDAQ returns a DAQ writing run artifacts into odir.
func NewDAQ(dev *Scope, src Source, odir string, run uint32) *DAQ {
	return &DAQ{
		msg: log.New(os.Stdout, "scope-daq: ", 0),
		dev: dev,
		src: src,
		dir: odir,
		run: run,
	}
}

// Run arms the device and advances it tick by tick until the capture
// post-trigger delay completes, then writes one waveform record per
// channel. Cancel ctx to abort.
func (daq *DAQ) Run(ctx context.Context) error {
	dev := daq.dev
	dev.Arm()

	grp, ctx := errgroup.WithContext(ctx)

	var (
		chA = make(chan StreamIn, 1024)
		chB = make(chan StreamIn, 1024)
	)

	grp.Go(func() error {
		defer close(chA)
		defer close(chB)
		return daq.sampleLoop(ctx, chA, chB)
	})
	grp.Go(func() error {
		return daq.streamLoop(ChanA, chA)
	})
	grp.Go(func() error {
		return daq.streamLoop(ChanB, chB)
	})

	err := grp.Wait()
	if err != nil {
		return fmt.Errorf("scope: could not run DAQ: %w", err)
	}

	err = daq.save()
	if err != nil {
		return fmt.Errorf("scope: could not save run %d: %w", daq.run, err)
	}
	return nil
}

func (daq *DAQ) sampleLoop(ctx context.Context, chA, chB chan<- StreamIn) error {
	dev := daq.dev
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		in, ok := daq.src.Next()
		if !ok {
			return fmt.Errorf("scope: sample source exhausted before trigger")
		}
		out := dev.Tick(in)

		if dev.detached {
			sin := StreamIn{
				Valid: out.SampleValid,
				Trig:  out.Trig,
				Arm:   out.Arm,
				Reset: out.Reset,
			}
			sin.Sample, sin.Clear = out.A, out.ClearA
			chA <- sin
			sin.Sample, sin.Clear = out.B, out.ClearB
			chB <- sin
		}

		if out.Done {
			daq.msg.Printf("run %03d: trigger episode complete (wp=%d tp=%d pre=%d)",
				daq.run, dev.WritePtr(), dev.TrigPtr(), dev.PreTrigCount(),
			)
			return nil
		}
	}
}

func (daq *DAQ) streamLoop(ch Channel, in <-chan StreamIn) error {
	dev := daq.dev
	if !dev.detached {
		// engines are advanced inside Tick; drain and exit.
		for range in {
		}
		return nil
	}
	for sin := range in {
		dev.TickStream(ch, sin)
	}
	return nil
}

func (daq *DAQ) save() error {
	dev := daq.dev

	fname := filepath.Join(daq.dir, fmt.Sprintf("scope_daq_%03d.wfm", daq.run))
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer f.Close()

	enc := wform.NewEncoder(f)
	for _, ch := range []Channel{ChanA, ChanB} {
		depth := dev.Depth()
		rec := wform.Record{
			Run:      daq.run,
			Chan:     uint8(ch),
			Dec:      dev.Config().Dec,
			Depth:    depth,
			WritePtr: dev.WritePtr(),
			TrigPtr:  dev.TrigPtr(),
			PreCount: dev.PreTrigCount(),
			Data:     make([]int16, depth),
		}
		for i := uint32(0); i < depth; i++ {
			rec.Data[i] = int16(dev.Sample(ch, i))
		}
		err = enc.Encode(&rec)
		if err != nil {
			return fmt.Errorf("could not encode channel %v record: %w", ch, err)
		}
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}
	daq.msg.Printf("run %03d: wrote %s", daq.run, fname)
	return nil
}
