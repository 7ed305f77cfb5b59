// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"github.com/lharnaldi/rp-scope/internal/regs"
)

// readLatency is the number of host ticks between posting a buffer
// read request and the data becoming valid. The value is fixed and
// deterministic; it models the registered read pipeline of the
// hardware buffers.
const readLatency = 4

// busRead is the host-driven buffer read pipeline.
type busRead struct {
	pending bool
	addr    uint32
	stage   int
}

// BusWrite performs one register write. Writes outside defined fields
// are accepted and ignored; no error is ever signaled.
func (s *Scope) BusWrite(addr, v uint32) {
	switch addr & regs.ADDR_MASK {
	case regs.SCOPE_CTRL:
		if v&regs.CTRL_ARM != 0 {
			s.armPend = true
		}
		if v&regs.CTRL_RST != 0 {
			s.rstPend = true
		}
		s.cfg.Keep = v&regs.CTRL_KEEP != 0

	case regs.SCOPE_TRG_SRC:
		src := TrigSrc(v & 0xF)
		if src > TrigAuxFall {
			src = TrigNone
		}
		s.cfg.TrigSrc = src
		if src == TrigManual {
			s.swPend = true
		}

	case regs.SCOPE_CHA_THRES:
		s.cfg.ThreshA = signExtend(v)
	case regs.SCOPE_CHB_THRES:
		s.cfg.ThreshB = signExtend(v)
	case regs.SCOPE_TRG_DLY:
		s.cfg.Dly = v
	case regs.SCOPE_DEC_RATE:
		s.cfg.Dec = v & 0x1FFFF
	case regs.SCOPE_CHA_HYST:
		s.cfg.HystA = int32(v & dataMask)
	case regs.SCOPE_CHB_HYST:
		s.cfg.HystB = int32(v & dataMask)
	case regs.SCOPE_AVG_EN:
		s.cfg.AvgEn = v&1 != 0
	case regs.SCOPE_DEB_LEN:
		s.cfg.DebLen = v & 0xFFFFF

	case regs.SCOPE_CHA_FILT_AA:
		s.cfg.FiltA.AA = v & filtAAMask
		s.filt[ChanA].SetCoeffs(s.cfg.FiltA.masked())
	case regs.SCOPE_CHA_FILT_BB:
		s.cfg.FiltA.BB = v & filtMask
		s.filt[ChanA].SetCoeffs(s.cfg.FiltA.masked())
	case regs.SCOPE_CHA_FILT_KK:
		s.cfg.FiltA.KK = v & filtMask
		s.filt[ChanA].SetCoeffs(s.cfg.FiltA.masked())
	case regs.SCOPE_CHA_FILT_PP:
		s.cfg.FiltA.PP = v & filtMask
		s.filt[ChanA].SetCoeffs(s.cfg.FiltA.masked())
	case regs.SCOPE_CHB_FILT_AA:
		s.cfg.FiltB.AA = v & filtAAMask
		s.filt[ChanB].SetCoeffs(s.cfg.FiltB.masked())
	case regs.SCOPE_CHB_FILT_BB:
		s.cfg.FiltB.BB = v & filtMask
		s.filt[ChanB].SetCoeffs(s.cfg.FiltB.masked())
	case regs.SCOPE_CHB_FILT_KK:
		s.cfg.FiltB.KK = v & filtMask
		s.filt[ChanB].SetCoeffs(s.cfg.FiltB.masked())
	case regs.SCOPE_CHB_FILT_PP:
		s.cfg.FiltB.PP = v & filtMask
		s.filt[ChanB].SetCoeffs(s.cfg.FiltB.masked())

	case regs.AXI_A_START:
		s.cfg.StreamA.Start = v &^ 0x7
		s.sink[ChanA].Configure(s.cfg.StreamA.Start, s.cfg.StreamA.Stop)
	case regs.AXI_A_STOP:
		s.cfg.StreamA.Stop = v &^ 0x7
		s.sink[ChanA].Configure(s.cfg.StreamA.Start, s.cfg.StreamA.Stop)
	case regs.AXI_A_DLY:
		s.cfg.StreamA.Dly = v
	case regs.AXI_A_EN:
		s.cfg.StreamA.Enable = v&1 != 0
		if v&2 != 0 {
			s.clrPend[ChanA] = true
		}

	case regs.AXI_B_START:
		s.cfg.StreamB.Start = v &^ 0x7
		s.sink[ChanB].Configure(s.cfg.StreamB.Start, s.cfg.StreamB.Stop)
	case regs.AXI_B_STOP:
		s.cfg.StreamB.Stop = v &^ 0x7
		s.sink[ChanB].Configure(s.cfg.StreamB.Start, s.cfg.StreamB.Stop)
	case regs.AXI_B_DLY:
		s.cfg.StreamB.Dly = v
	case regs.AXI_B_EN:
		s.cfg.StreamB.Enable = v&1 != 0
		if v&2 != 0 {
			s.clrPend[ChanB] = true
		}
	}
}

// BusRead performs one register read and returns the data. Buffer
// window reads go through the fixed-latency read pipeline; plain
// fields acknowledge immediately. Reads outside defined fields return
// zero.
func (s *Scope) BusRead(addr uint32) uint32 {
	addr &= regs.ADDR_MASK
	if addr >= regs.CHA_BUF_BASE {
		s.BusReadPost(addr)
		for {
			if v, ok := s.BusReadTick(); ok {
				return v
			}
		}
	}
	return s.readReg(addr)
}

// BusReadPost posts a buffer read request into the read pipeline.
func (s *Scope) BusReadPost(addr uint32) {
	s.rd = busRead{pending: true, addr: addr & regs.ADDR_MASK}
}

// BusReadTick advances the read pipeline by one host tick. The data
// becomes valid exactly readLatency ticks after the request was
// posted.
func (s *Scope) BusReadTick() (uint32, bool) {
	if !s.rd.pending {
		return 0, false
	}
	s.rd.stage++
	if s.rd.stage < readLatency {
		return 0, false
	}
	v := s.readBuf(s.rd.addr)
	s.rd = busRead{}
	return v, true
}

func (s *Scope) readBuf(addr uint32) uint32 {
	var ch Channel
	switch {
	case addr >= regs.CHB_BUF_BASE:
		ch = ChanB
	case addr >= regs.CHA_BUF_BASE:
		ch = ChanA
	default:
		return 0
	}
	idx := ((addr >> 2) & regs.BUF_MASK) % s.depth
	return uint32(s.buf[ch][idx]) & dataMask
}

func (s *Scope) readReg(addr uint32) uint32 {
	switch addr {
	case regs.SCOPE_CTRL:
		var v uint32
		if s.Triggered() {
			v |= regs.CTRL_TRG
		}
		if s.cfg.Keep {
			v |= regs.CTRL_KEEP
		}
		return v
	case regs.SCOPE_TRG_SRC:
		return uint32(s.cfg.TrigSrc)
	case regs.SCOPE_CHA_THRES:
		return uint32(s.cfg.ThreshA) & dataMask
	case regs.SCOPE_CHB_THRES:
		return uint32(s.cfg.ThreshB) & dataMask
	case regs.SCOPE_TRG_DLY:
		return s.cfg.Dly
	case regs.SCOPE_DEC_RATE:
		return s.cfg.Dec
	case regs.SCOPE_CUR_WP:
		return s.ctl.wp
	case regs.SCOPE_TRG_WP:
		return s.ctl.tp
	case regs.SCOPE_CHA_HYST:
		return uint32(s.cfg.HystA)
	case regs.SCOPE_CHB_HYST:
		return uint32(s.cfg.HystB)
	case regs.SCOPE_AVG_EN:
		return b2u(s.cfg.AvgEn)
	case regs.SCOPE_PRE_CNT:
		return s.ctl.preCnt
	case regs.SCOPE_DEB_LEN:
		return s.cfg.DebLen

	case regs.SCOPE_CHA_FILT_AA:
		return s.cfg.FiltA.AA
	case regs.SCOPE_CHA_FILT_BB:
		return s.cfg.FiltA.BB
	case regs.SCOPE_CHA_FILT_KK:
		return s.cfg.FiltA.KK
	case regs.SCOPE_CHA_FILT_PP:
		return s.cfg.FiltA.PP
	case regs.SCOPE_CHB_FILT_AA:
		return s.cfg.FiltB.AA
	case regs.SCOPE_CHB_FILT_BB:
		return s.cfg.FiltB.BB
	case regs.SCOPE_CHB_FILT_KK:
		return s.cfg.FiltB.KK
	case regs.SCOPE_CHB_FILT_PP:
		return s.cfg.FiltB.PP

	case regs.AXI_A_START:
		return s.cfg.StreamA.Start
	case regs.AXI_A_STOP:
		return s.cfg.StreamA.Stop
	case regs.AXI_A_DLY:
		return s.cfg.StreamA.Dly
	case regs.AXI_A_EN:
		return b2u(s.cfg.StreamA.Enable)
	case regs.AXI_A_TRGA:
		return s.str[ChanA].trigAddr
	case regs.AXI_A_CURA:
		return s.str[ChanA].curAddr

	case regs.AXI_B_START:
		return s.cfg.StreamB.Start
	case regs.AXI_B_STOP:
		return s.cfg.StreamB.Stop
	case regs.AXI_B_DLY:
		return s.cfg.StreamB.Dly
	case regs.AXI_B_EN:
		return b2u(s.cfg.StreamB.Enable)
	case regs.AXI_B_TRGA:
		return s.str[ChanB].trigAddr
	case regs.AXI_B_CURA:
		return s.str[ChanB].curAddr
	}
	return 0
}

func b2u(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
