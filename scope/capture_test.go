// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import "testing"

func TestCaptureEpisode(t *testing.T) {
	const (
		depth = 16
		dly   = 4
	)

	var (
		c   capCtl
		out capOut
	)

	c, _ = c.next(capIn{arm: true}, dly, false, depth)
	if !c.we || c.st != capWriting {
		t.Fatalf("arm did not enable writing: %+v", c)
	}

	// ten pre-trigger samples.
	for i := 0; i < 10; i++ {
		c, out = c.next(capIn{dv: true}, dly, false, depth)
		if !out.write {
			t.Fatalf("sample %d not written", i)
		}
		if got, want := out.widx, uint32(i); got != want {
			t.Fatalf("invalid write index: got=%d, want=%d", got, want)
		}
	}
	if got, want := c.preCnt, uint32(10); got != want {
		t.Fatalf("invalid pre-trigger count: got=%d, want=%d", got, want)
	}

	// trigger coincident with a sample.
	c, out = c.next(capIn{dv: true, trig: true}, dly, false, depth)
	if !out.write {
		t.Fatalf("trigger-tick sample not written")
	}
	if got, want := c.tp, uint32(10); got != want {
		t.Fatalf("invalid trigger pointer: got=%d, want=%d", got, want)
	}
	if got, want := c.preCnt, uint32(10); got != want {
		t.Fatalf("pre-trigger count moved on the trigger tick: got=%d, want=%d", got, want)
	}
	if c.st != capDelay {
		t.Fatalf("invalid state after trigger: %v", c.st)
	}

	// post-trigger countdown.
	var done bool
	for i := 0; i < 8 && !done; i++ {
		c, out = c.next(capIn{dv: true}, dly, false, depth)
		done = out.done
	}
	if !done {
		t.Fatalf("capture never completed")
	}
	if c.we {
		t.Fatalf("write enable still set after completion")
	}

	if got, want := c.wp, uint32(14); got != want {
		t.Fatalf("invalid final write pointer: got=%d, want=%d", got, want)
	}
	if got, want := c.tp, uint32(10); got != want {
		t.Fatalf("invalid final trigger pointer: got=%d, want=%d", got, want)
	}
	if got, want := c.preCnt, uint32(10); got != want {
		t.Fatalf("invalid final pre-trigger count: got=%d, want=%d", got, want)
	}
}

func TestCaptureTriggerBetweenSamples(t *testing.T) {
	const (
		depth = 16
		dly   = 4
	)

	var (
		c   capCtl
		out capOut
	)
	c, _ = c.next(capIn{arm: true}, dly, false, depth)
	for i := 0; i < 10; i++ {
		c, _ = c.next(capIn{dv: true}, dly, false, depth)
	}

	// trigger on a tick without a decimated sample.
	c, out = c.next(capIn{trig: true}, dly, false, depth)
	if out.write {
		t.Fatalf("unexpected write on a non-sample tick")
	}
	if got, want := c.tp, uint32(10); got != want {
		t.Fatalf("invalid trigger pointer: got=%d, want=%d", got, want)
	}

	var done bool
	for i := 0; i < 8 && !done; i++ {
		c, out = c.next(capIn{dv: true}, dly, false, depth)
		done = out.done
	}
	if !done {
		t.Fatalf("capture never completed")
	}
	if got, want := c.wp, uint32(14); got != want {
		t.Fatalf("invalid final write pointer: got=%d, want=%d", got, want)
	}
	if got, want := c.preCnt, uint32(10); got != want {
		t.Fatalf("invalid final pre-trigger count: got=%d, want=%d", got, want)
	}
}

func TestCaptureKeepRunning(t *testing.T) {
	const (
		depth = 16
		dly   = 2
	)

	var (
		c   capCtl
		out capOut
	)
	c, _ = c.next(capIn{arm: true}, dly, true, depth)
	for i := 0; i < 4; i++ {
		c, _ = c.next(capIn{dv: true}, dly, true, depth)
	}
	c, _ = c.next(capIn{dv: true, trig: true}, dly, true, depth)

	var done bool
	for i := 0; i < 8 && !done; i++ {
		c, out = c.next(capIn{dv: true}, dly, true, depth)
		done = out.done
	}
	if !done {
		t.Fatalf("delay never expired")
	}
	if c.st != capRunning {
		t.Fatalf("invalid state after keep-running expiry: %v", c.st)
	}
	if !c.we {
		t.Fatalf("write enable dropped in keep-running mode")
	}

	// writes keep going, trigger pointer held.
	tp := c.tp
	for i := 0; i < 2*depth; i++ {
		c, out = c.next(capIn{dv: true}, dly, true, depth)
		if !out.write {
			t.Fatalf("keep-running stopped writing at %d", i)
		}
		if out.done {
			t.Fatalf("spurious done pulse at %d", i)
		}
	}
	if c.tp != tp {
		t.Fatalf("trigger pointer moved in keep-running mode")
	}

	// reset overrides keep-running.
	c, _ = c.next(capIn{rst: true}, dly, true, depth)
	if c != (capCtl{}) {
		t.Fatalf("reset did not restore defaults: %+v", c)
	}
}

func TestCaptureZeroDelay(t *testing.T) {
	const depth = 16

	var (
		c   capCtl
		out capOut
	)
	c, _ = c.next(capIn{arm: true}, 0, false, depth)
	for i := 0; i < 4; i++ {
		c, _ = c.next(capIn{dv: true}, 0, false, depth)
	}

	// trigger between samples with zero delay completes at once.
	c, out = c.next(capIn{trig: true}, 0, false, depth)
	if !out.done {
		t.Fatalf("zero-delay trigger did not complete immediately")
	}
	if c.we {
		t.Fatalf("write enable still set")
	}
	if got, want := c.wp, uint32(4); got != want {
		t.Fatalf("invalid write pointer: got=%d, want=%d", got, want)
	}
}

func TestCaptureResetAnywhere(t *testing.T) {
	const depth = 16

	arm := func() capCtl {
		c, _ := capCtl{}.next(capIn{arm: true}, 4, false, depth)
		return c
	}

	for _, tc := range []struct {
		name string
		c    capCtl
	}{
		{name: "idle", c: capCtl{}},
		{name: "writing", c: arm()},
		{name: "delay", c: capCtl{st: capDelay, we: true, wp: 7, tp: 3, dlyCnt: 2}},
		{name: "running", c: capCtl{st: capRunning, we: true, wp: 7, tp: 3}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, out := tc.c.next(capIn{rst: true, dv: true, trig: true}, 4, true, depth)
			if c != (capCtl{}) {
				t.Fatalf("reset did not restore defaults: %+v", c)
			}
			if out.write || out.done {
				t.Fatalf("reset produced outputs: %+v", out)
			}
		})
	}
}

func TestCaptureWrap(t *testing.T) {
	const depth = 8

	c, _ := capCtl{}.next(capIn{arm: true}, 0, false, depth)
	for i := 0; i < 3*depth; i++ {
		var out capOut
		c, out = c.next(capIn{dv: true}, 0, false, depth)
		if got, want := out.widx, uint32(i%depth); got != want {
			t.Fatalf("invalid wrapped index at %d: got=%d, want=%d", i, got, want)
		}
	}
	if got, want := c.wp, uint32(0); got != want {
		t.Fatalf("invalid wrapped write pointer: got=%d, want=%d", got, want)
	}
	if got, want := c.preCnt, uint32(3*depth); got != want {
		t.Fatalf("invalid pre-trigger count: got=%d, want=%d", got, want)
	}
}

func TestSatIncr(t *testing.T) {
	if got, want := satIncr(0), uint32(1); got != want {
		t.Fatalf("got=%d, want=%d", got, want)
	}
	max := ^uint32(0)
	if got := satIncr(max); got != max {
		t.Fatalf("saturating counter overflowed: got=%d", got)
	}
}
