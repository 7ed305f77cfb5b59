// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"testing"

	"github.com/lharnaldi/rp-scope/internal/regs"
)

func TestBusRegisters(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	for _, tc := range []struct {
		name string
		addr uint32
		w    uint32
		want uint32
	}{
		{name: "trg-dly", addr: regs.SCOPE_TRG_DLY, w: 4096, want: 4096},
		{name: "dec-rate", addr: regs.SCOPE_DEC_RATE, w: 8, want: 8},
		{name: "dec-rate-masked", addr: regs.SCOPE_DEC_RATE, w: 0xFFFFFFFF, want: 0x1FFFF},
		{name: "cha-hyst", addr: regs.SCOPE_CHA_HYST, w: 20, want: 20},
		{name: "avg-en", addr: regs.SCOPE_AVG_EN, w: 1, want: 1},
		{name: "deb-len", addr: regs.SCOPE_DEB_LEN, w: 1250, want: 1250},
		{name: "filt-aa-masked", addr: regs.SCOPE_CHA_FILT_AA, w: 0xFFFFFFFF, want: 1<<18 - 1},
		{name: "filt-bb-masked", addr: regs.SCOPE_CHB_FILT_BB, w: 0xFFFFFFFF, want: 1<<25 - 1},
		{name: "axi-a-start-aligned", addr: regs.AXI_A_START, w: 0x1007, want: 0x1000},
		{name: "axi-b-stop-aligned", addr: regs.AXI_B_STOP, w: 0x2004, want: 0x2000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dev.BusWrite(tc.addr, tc.w)
			if got := dev.BusRead(tc.addr); got != tc.want {
				t.Fatalf("invalid read-back: got=0x%x, want=0x%x", got, tc.want)
			}
		})
	}
}

func TestBusSignedThreshold(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	thresh := int32(-100)
	dev.BusWrite(regs.SCOPE_CHA_THRES, uint32(thresh)&0x3FFF)
	if got, want := dev.Config().ThreshA, thresh; got != want {
		t.Fatalf("invalid threshold: got=%d, want=%d", got, want)
	}
	if got, want := dev.BusRead(regs.SCOPE_CHA_THRES), uint32(thresh)&0x3FFF; got != want {
		t.Fatalf("invalid threshold read-back: got=0x%x, want=0x%x", got, want)
	}
}

func TestBusUnknownFields(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	// unknown writes are accepted and ignored.
	cfg := dev.Config()
	dev.BusWrite(0x0FF0, 0xDEADBEEF)
	if dev.Config() != cfg {
		t.Fatalf("unknown write changed the configuration")
	}

	// unknown reads return zero.
	if got := dev.BusRead(0x0FF0); got != 0 {
		t.Fatalf("unknown read returned 0x%x", got)
	}
}

func TestBusTrigSrc(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	dev.BusWrite(regs.SCOPE_TRG_SRC, uint32(TrigChBFall))
	if got, want := dev.Config().TrigSrc, TrigChBFall; got != want {
		t.Fatalf("invalid trigger source: got=%v, want=%v", got, want)
	}

	// out-of-range selects fall back to none.
	dev.BusWrite(regs.SCOPE_TRG_SRC, 0xF)
	if got, want := dev.Config().TrigSrc, TrigNone; got != want {
		t.Fatalf("invalid trigger source: got=%v, want=%v", got, want)
	}

	// writing the manual source also fires the manual trigger.
	dev.BusWrite(regs.SCOPE_TRG_SRC, uint32(TrigManual))
	if !dev.swPend {
		t.Fatalf("manual trigger not requested")
	}
}

func TestBusBufferReadLatency(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}
	dev.buf[ChanA][3] = 0x123
	dev.buf[ChanB][3] = -1

	dev.BusReadPost(regs.CHA_BUF_BASE + 3*4)
	for i := 0; i < readLatency-1; i++ {
		if _, ok := dev.BusReadTick(); ok {
			t.Fatalf("data valid after %d ticks", i+1)
		}
	}
	v, ok := dev.BusReadTick()
	if !ok {
		t.Fatalf("data not valid after %d ticks", readLatency)
	}
	if got, want := v, uint32(0x123); got != want {
		t.Fatalf("invalid buffer data: got=0x%x, want=0x%x", got, want)
	}

	// channel B window, negative sample is masked to the data width.
	if got, want := dev.BusRead(regs.CHB_BUF_BASE+3*4), uint32(0x3FFF); got != want {
		t.Fatalf("invalid buffer data: got=0x%x, want=0x%x", got, want)
	}

	// idle pipeline reports no data.
	if _, ok := dev.BusReadTick(); ok {
		t.Fatalf("idle pipeline reported valid data")
	}
}

func TestBusCtrlStatus(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	dev.BusWrite(regs.SCOPE_CTRL, regs.CTRL_KEEP)
	if got := dev.BusRead(regs.SCOPE_CTRL); got&regs.CTRL_KEEP == 0 {
		t.Fatalf("keep-running bit not set: got=0x%x", got)
	}

	dev.BusWrite(regs.SCOPE_CTRL, regs.CTRL_ARM)
	if !dev.armPend {
		t.Fatalf("arm not requested")
	}
	dev.Tick(Input{})
	if !dev.WriteInProgress() {
		t.Fatalf("write not in progress after arm")
	}

	// trigger status tracks the episode.
	dev.Tick(Input{})
	dev.SoftTrigger()
	dev.cfg.TrigSrc = TrigManual
	dev.cfg.Dly = 4
	dev.Tick(Input{})
	if got := dev.BusRead(regs.SCOPE_CTRL); got&regs.CTRL_TRG == 0 {
		t.Fatalf("trigger status not set: got=0x%x", got)
	}

	dev.BusWrite(regs.SCOPE_CTRL, regs.CTRL_RST)
	dev.Tick(Input{})
	if dev.WriteInProgress() || dev.Triggered() {
		t.Fatalf("reset did not stop the capture")
	}
}

func TestBusStreamClearRequest(t *testing.T) {
	dev, err := New(WithDepth(16))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	dev.BusWrite(regs.AXI_A_EN, 0x3)
	if !dev.Config().StreamA.Enable {
		t.Fatalf("stream A not enabled")
	}
	if !dev.clrPend[ChanA] {
		t.Fatalf("stream A clear not requested")
	}

	dev.BusWrite(regs.AXI_B_EN, 0x2)
	if dev.Config().StreamB.Enable {
		t.Fatalf("stream B unexpectedly enabled")
	}
	if !dev.clrPend[ChanB] {
		t.Fatalf("stream B clear not requested")
	}
}
