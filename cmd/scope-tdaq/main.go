// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-tdaq starts a TDAQ server exposing a scope device as a
// waveform data source.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-tdaq"

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/lharnaldi/rp-scope/internal/wform"
	"github.com/lharnaldi/rp-scope/scope"
	"github.com/lharnaldi/rp-scope/internal/regs"
)

func main() {
	cmd := flags.New()

	dev := scopeDev{
		name: cmd.Args[0],
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/adc", dev.adc)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type scopeDev struct {
	name string

	dev *scope.Scope
	src *scope.SineSource

	n    int
	data chan []byte
}

func (dev *scopeDev) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (dev *scopeDev) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	return dev.init()
}

func (dev *scopeDev) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	return dev.init()
}

func (dev *scopeDev) init() error {
	sc, err := scope.New()
	if err != nil {
		return fmt.Errorf("could not create scope device: %w", err)
	}
	sc.BusWrite(regs.SCOPE_CHA_THRES, 100)
	sc.BusWrite(regs.SCOPE_CHA_HYST, 20)
	sc.BusWrite(regs.SCOPE_TRG_SRC, uint32(scope.TrigChARise))

	dev.dev = sc
	dev.src = &scope.SineSource{Amp: 4000, Period: 1000}
	dev.data = make(chan []byte, 8)
	dev.n = 0
	return nil
}

func (dev *scopeDev) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	dev.dev.Arm()
	return nil
}

func (dev *scopeDev) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := dev.n
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (dev *scopeDev) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *scopeDev) adc(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *scopeDev) run(ctx tdaq.Context) error {
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
		}

		in, _ := dev.src.Next()
		out := dev.dev.Tick(in)
		if !out.Done {
			continue
		}

		raw, err := dev.freeze()
		if err != nil {
			ctx.Msg.Errorf("could not freeze capture: %+v", err)
			return err
		}

		select {
		case dev.data <- raw:
			dev.n++
		default:
		}

		dev.dev.Arm()
	}
}

// freeze encodes both channels' frozen buffers as waveform records.
func (dev *scopeDev) freeze() ([]byte, error) {
	var (
		sc  = dev.dev
		buf = new(bytes.Buffer)
		enc = wform.NewEncoder(buf)
	)
	for _, ch := range []scope.Channel{scope.ChanA, scope.ChanB} {
		depth := sc.Depth()
		rec := wform.Record{
			Run:      uint32(dev.n),
			Chan:     uint8(ch),
			Dec:      sc.Config().Dec,
			Depth:    depth,
			WritePtr: sc.WritePtr(),
			TrigPtr:  sc.TrigPtr(),
			PreCount: sc.PreTrigCount(),
			Data:     make([]int16, depth),
		}
		for i := uint32(0); i < depth; i++ {
			rec.Data[i] = int16(sc.Sample(ch, i))
		}
		err := enc.Encode(&rec)
		if err != nil {
			return nil, fmt.Errorf("could not encode channel %v record: %w", ch, err)
		}
	}
	return buf.Bytes(), nil
}
