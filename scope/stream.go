// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// StreamConfig configures one streaming engine and its sink range.
type StreamConfig struct {
	Start  uint32 // range start address
	Stop   uint32 // range stop address
	Dly    uint32 // post-trigger sample count
	Enable bool
}

// stream drives a long-form wrapping capture into an external memory
// range, packing four 16-bit samples per 64-bit record. Each channel
// owns one engine; the two engines are independent and may be advanced
// on distinct tick sources.
type stream struct {
	we       bool
	sel      uint8  // pack lane selector, 0..3
	pack     uint64 // pack register
	dlyOn    bool
	dlyCnt   uint32
	trigAddr uint32 // trigger-time address bookmark
	curAddr  uint32 // address last committed by the sink
}

// StreamIn carries one tick of inputs into a streaming engine.
type StreamIn struct {
	Sample int32
	Valid  bool
	Trig   bool
	Arm    bool
	Reset  bool
	Clear  bool
}

// StreamOut reports a flush-valid pack register for the sink to
// consume, one tick wide.
type StreamOut struct {
	Flush  bool
	Record uint64
}

func (e stream) next(in StreamIn, cfg StreamConfig) (stream, StreamOut) {
	var out StreamOut

	if in.Reset || in.Clear {
		return stream{curAddr: cfg.Start}, out
	}
	if in.Arm {
		n := stream{we: cfg.Enable, curAddr: e.curAddr}
		return n, out
	}

	n := e

	write := e.we && in.Valid
	if in.Trig && !e.dlyOn && e.we {
		n.dlyOn = true
		n.dlyCnt = cfg.Dly
		n.trigAddr = e.curAddr&^0x7 | uint32(e.sel)<<1
		if write && n.dlyCnt > 0 {
			n.dlyCnt--
		}
	}

	if write {
		if e.dlyOn && e.dlyCnt == 0 {
			n.we = false
			n.dlyOn = false
			return n, out
		}
		n.pack = e.pack&^(0xFFFF<<(16*uint(e.sel))) |
			uint64(uint16(in.Sample))<<(16*uint(e.sel))
		n.sel = (e.sel + 1) & 3
		if e.sel == 3 {
			out.Flush = true
			out.Record = n.pack
		}
		if e.dlyOn && n.dlyOn {
			n.dlyCnt--
		}
	}

	return n, out
}
