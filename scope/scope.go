// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scope implements a clock-synchronous triggered-capture
// engine for two analog input channels.
//
// All components advance in lock-step on one logical tick: every
// next-state is computed from an immutable snapshot of the committed
// state and the tick's inputs, then committed at the tick boundary.
// Apparent waiting (debounce, post-trigger delay) is modeled as
// counters decremented once per tick; nothing blocks.
//
// A Scope is not safe for concurrent use: callers own the tick loop
// and serialize register access against it. The register read-back of
// a capture buffer while write-enable is set returns whatever the
// buffer currently holds, possibly mid-capture.
package scope // import "github.com/lharnaldi/rp-scope/scope"

import (
	"fmt"
	"log"
	"os"
)

const (
	// DataBits is the sample width of the upstream converter.
	DataBits = 14
	dataMask = 1<<DataBits - 1

	// DefaultDepth is the per-channel capture buffer depth.
	DefaultDepth = 1 << 14

	// DefaultDebounce is the default digital-input debounce length,
	// in ticks (~0.5 ms at a 125 MHz tick rate).
	DefaultDebounce = 62500
)

// Channel selects one of the two analog input channels.
type Channel int

const (
	ChanA Channel = iota
	ChanB
)

func (ch Channel) String() string {
	switch ch {
	case ChanA:
		return "A"
	case ChanB:
		return "B"
	}
	return fmt.Sprintf("Channel(%d)", int(ch))
}

// Config is the host-visible configuration. The engine reads one
// immutable copy per tick; the register interface is the only mutator.
type Config struct {
	TrigSrc          TrigSrc
	ThreshA, ThreshB int32 // Schmitt base thresholds
	HystA, HystB     int32 // hysteresis magnitudes
	Dec              uint32
	AvgEn            bool
	Dly              uint32 // post-trigger sample count
	Keep             bool   // keep writing after the delay expires
	DebLen           uint32
	FiltA, FiltB     FilterCoeffs
	StreamA, StreamB StreamConfig
}

// Input carries one tick of raw inputs.
type Input struct {
	A, B int32 // raw samples, 14-bit signed
	Ext  bool  // external trigger line
	Aux  bool  // auxiliary generator trigger line
}

// Output reports what the engine produced on one tick.
type Output struct {
	SampleValid bool  // a decimated sample was emitted this tick
	A, B        int32 // decimated samples, valid when SampleValid
	Trig        bool  // gated trigger pulse
	Done        bool  // capture post-trigger delay completed this tick

	// Control pulses consumed this tick. With detached streams the
	// engines do not observe them through Tick; the caller forwards
	// them in the StreamIn of each stream domain.
	Arm, Reset     bool
	ClearA, ClearB bool // register-requested streaming engine clears

	FlushA, FlushB   bool   // streaming engines flushed a record
	RecordA, RecordB uint64 // flushed records
}

// Scope is the capture engine: decimation, trigger arbitration, the
// circular capture buffers and two streaming engines, all advanced by
// Tick.
type Scope struct {
	msg   *log.Logger
	cfg   Config
	depth uint32

	filt [2]Filter
	sink [2]Sink

	deb [2]debounce // external, auxiliary
	sch [2]schmitt
	dec [2]decimator
	ctl capCtl
	str [2]stream
	buf [2][]int32

	armPend bool
	rstPend bool
	swPend  bool
	clrPend [2]bool

	detached bool // streaming engines are ticked by the caller

	rd busRead
}

// Option configures a Scope.
type Option func(*Scope) error

// WithLogger sets the logger used by the engine.
func WithLogger(msg *log.Logger) Option {
	return func(s *Scope) error {
		s.msg = msg
		return nil
	}
}

// WithDepth sets the per-channel capture buffer depth. The depth must
// be a power of two.
func WithDepth(depth uint32) Option {
	return func(s *Scope) error {
		if depth == 0 || depth&(depth-1) != 0 {
			return fmt.Errorf("scope: invalid buffer depth %d (must be a power of two)", depth)
		}
		s.depth = depth
		return nil
	}
}

// WithFilter installs the input filter collaborator for one channel.
func WithFilter(ch Channel, f Filter) Option {
	return func(s *Scope) error {
		s.filt[ch] = f
		return nil
	}
}

// WithSink installs the streaming sink collaborator for one channel.
func WithSink(ch Channel, snk Sink) Option {
	return func(s *Scope) error {
		s.sink[ch] = snk
		return nil
	}
}

// WithDetachedStreams leaves the two streaming engines to the caller:
// Tick no longer advances them and each one is driven through
// TickStream, possibly on its own tick source.
func WithDetachedStreams() Option {
	return func(s *Scope) error {
		s.detached = true
		return nil
	}
}

// New returns a Scope with default geometry and pass-through filter
// collaborators.
func New(opts ...Option) (*Scope, error) {
	s := &Scope{
		msg:   log.New(os.Stdout, "scope: ", 0),
		depth: DefaultDepth,
		cfg: Config{
			Dec:    1,
			DebLen: DefaultDebounce,
		},
		filt: [2]Filter{nopFilter{}, nopFilter{}},
		sink: [2]Sink{NewMemSink(0, 0x1000), NewMemSink(0, 0x1000)},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.buf[ChanA] = make([]int32, s.depth)
	s.buf[ChanB] = make([]int32, s.depth)
	return s, nil
}

// Config returns a copy of the committed configuration.
func (s *Scope) Config() Config { return s.cfg }

// Depth returns the per-channel capture buffer depth.
func (s *Scope) Depth() uint32 { return s.depth }

// Arm requests an arm on the next tick.
func (s *Scope) Arm() { s.armPend = true }

// Reset requests a reset on the next tick. Reset has priority over
// every in-progress episode, including keep-running captures.
func (s *Scope) Reset() { s.rstPend = true }

// SoftTrigger requests a manual trigger pulse on the next tick.
func (s *Scope) SoftTrigger() { s.swPend = true }

// WriteInProgress reports whether the capture buffers are being
// written; buffer read-back during this condition may be torn.
func (s *Scope) WriteInProgress() bool { return s.ctl.we }

// Triggered reports whether a trigger episode is in progress.
func (s *Scope) Triggered() bool {
	return s.ctl.st == capDelay || s.ctl.st == capRunning
}

// WritePtr returns the current write pointer.
func (s *Scope) WritePtr() uint32 { return s.ctl.wp }

// TrigPtr returns the latched trigger pointer.
func (s *Scope) TrigPtr() uint32 { return s.ctl.tp }

// PreTrigCount returns the saturating pre-trigger sample count.
func (s *Scope) PreTrigCount() uint32 { return s.ctl.preCnt }

// Sample returns the committed capture buffer content of ch at index
// i, modulo the buffer depth.
func (s *Scope) Sample(ch Channel, i uint32) int32 {
	return s.buf[ch][i%s.depth]
}

// StreamTrigAddr returns the trigger-time address bookmark of the
// channel's streaming engine.
func (s *Scope) StreamTrigAddr(ch Channel) uint32 { return s.str[ch].trigAddr }

// StreamCurAddr returns the address last committed by the channel's
// streaming sink.
func (s *Scope) StreamCurAddr(ch Channel) uint32 { return s.str[ch].curAddr }

// Tick advances the whole engine by one tick. Every component's next
// state is computed from the pre-tick snapshot, then committed.
func (s *Scope) Tick(in Input) Output {
	var (
		cfg = s.cfg
		arm = s.armPend
		rst = s.rstPend
		man = s.swPend
		clr = s.clrPend
		out Output
	)
	s.armPend, s.rstPend, s.swPend = false, false, false
	s.clrPend = [2]bool{}

	fa := s.filt[ChanA].Apply(clip(in.A))
	fb := s.filt[ChanB].Apply(clip(in.B))

	decA, da, dv := s.dec[ChanA].next(fa, cfg.Dec, cfg.AvgEn, arm || rst)
	decB, db, _ := s.dec[ChanB].next(fb, cfg.Dec, cfg.AvgEn, arm || rst)

	debExt, pExt := s.deb[0].next(in.Ext, cfg.DebLen)
	debAux, pAux := s.deb[1].next(in.Aux, cfg.DebLen)

	schA, pA := s.sch[ChanA].next(da, dv, cfg.ThreshA, cfg.HystA)
	schB, pB := s.sch[ChanB].next(db, dv, cfg.ThreshB, cfg.HystB)

	armed := s.ctl.we
	trig := selectTrig(cfg.TrigSrc, trigPulses{
		manual: man,
		chA:    pA,
		chB:    pB,
		ext:    pExt,
		aux:    pAux,
	}, armed)

	ctl, cout := s.ctl.next(capIn{arm: arm, rst: rst, trig: trig, dv: dv}, cfg.Dly, cfg.Keep, s.depth)

	var (
		strs [2]stream
		outs [2]StreamOut
	)
	if !s.detached {
		for ch := ChanA; ch <= ChanB; ch++ {
			sample := da
			if ch == ChanB {
				sample = db
			}
			strs[ch], outs[ch] = s.str[ch].next(StreamIn{
				Sample: sample,
				Valid:  dv,
				Trig:   trig,
				Arm:    arm,
				Reset:  rst,
				Clear:  clr[ch],
			}, s.streamCfg(ch))
		}
	}

	// commit
	s.dec[ChanA], s.dec[ChanB] = decA, decB
	s.deb[0], s.deb[1] = debExt, debAux
	s.sch[ChanA], s.sch[ChanB] = schA, schB
	s.ctl = ctl
	if cout.write {
		s.buf[ChanA][cout.widx] = da
		s.buf[ChanB][cout.widx] = db
	}
	if rst || cout.done {
		// prevent re-triggering until the host re-arms and
		// re-selects a source.
		s.cfg.TrigSrc = TrigNone
	}
	if !s.detached {
		for ch := ChanA; ch <= ChanB; ch++ {
			s.commitStream(ch, strs[ch], outs[ch], rst || clr[ch])
		}
	}
	out = Output{
		SampleValid: dv,
		A:           da,
		B:           db,
		Trig:        trig,
		Done:        cout.done,
		Arm:         arm,
		Reset:       rst,
		ClearA:      clr[ChanA],
		ClearB:      clr[ChanB],
		FlushA:      outs[ChanA].Flush,
		FlushB:      outs[ChanB].Flush,
		RecordA:     outs[ChanA].Record,
		RecordB:     outs[ChanB].Record,
	}
	return out
}

// TickStream advances one detached streaming engine by one tick of
// its own clock domain. The caller forwards decimated samples and the
// gated trigger pulse from the sample domain; only tick-count
// coherence between the domains is assumed.
func (s *Scope) TickStream(ch Channel, in StreamIn) StreamOut {
	st, out := s.str[ch].next(in, s.streamCfg(ch))
	s.str[ch] = st
	s.commitStream(ch, st, out, in.Reset || in.Clear)
	return out
}

func (s *Scope) commitStream(ch Channel, st stream, out StreamOut, clear bool) {
	s.str[ch] = st
	if clear {
		s.sink[ch].Clear()
		s.str[ch].curAddr = s.streamCfg(ch).Start
		return
	}
	if out.Flush {
		s.sink[ch].Write(out.Record)
		s.str[ch].curAddr = s.sink[ch].CurAddr()
	}
}

func (s *Scope) streamCfg(ch Channel) StreamConfig {
	if ch == ChanB {
		return s.cfg.StreamB
	}
	return s.cfg.StreamA
}

// clip reduces v to the converter's signed sample range.
func clip(v int32) int32 {
	return signExtend(uint32(v) & dataMask)
}

// signExtend interprets the low DataBits bits of v as a signed sample.
func signExtend(v uint32) int32 {
	v &= dataMask
	if v&(1<<(DataBits-1)) != 0 {
		v |= ^uint32(dataMask)
	}
	return int32(v)
}
