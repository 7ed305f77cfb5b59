// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb // import "github.com/lharnaldi/rp-scope/conddb"

import (
	"github.com/lharnaldi/rp-scope/internal/regs"
)

// Settings holds one channel's acquisition settings as stored in the
// database.
type Settings struct {
	PrimaryID int32  `json:"identifier"`
	DeviceID  uint32 `json:"device_id"`
	Chan      uint8  `json:"chan"`

	TrigSrc uint32 `json:"trig_src"`
	Thresh  int32  `json:"thresh"`
	Hyst    uint32 `json:"hyst"`
	TrigDly uint32 `json:"trig_dly"`
	DecRate uint32 `json:"dec_rate"`
	AvgEn   uint8  `json:"avg_en"`
	DebLen  uint32 `json:"deb_len"`
	Keep    uint8  `json:"keep"`

	FiltAA uint32 `json:"filt_aa"`
	FiltBB uint32 `json:"filt_bb"`
	FiltKK uint32 `json:"filt_kk"`
	FiltPP uint32 `json:"filt_pp"`

	StreamStart uint32 `json:"stream_start"`
	StreamStop  uint32 `json:"stream_stop"`
	StreamDly   uint32 `json:"stream_dly"`
	StreamEn    uint8  `json:"stream_en"`
}

// RegOps expands the settings into the register writes that apply
// them to a device, in the order a host would issue them.
func (set Settings) RegOps() []RegOp {
	var (
		thres = uint32(regs.SCOPE_CHA_THRES)
		hyst  = uint32(regs.SCOPE_CHA_HYST)
		faa   = uint32(regs.SCOPE_CHA_FILT_AA)
		fbb   = uint32(regs.SCOPE_CHA_FILT_BB)
		fkk   = uint32(regs.SCOPE_CHA_FILT_KK)
		fpp   = uint32(regs.SCOPE_CHA_FILT_PP)
		beg   = uint32(regs.AXI_A_START)
		end   = uint32(regs.AXI_A_STOP)
		dly   = uint32(regs.AXI_A_DLY)
		en    = uint32(regs.AXI_A_EN)
	)
	if set.Chan == 1 {
		thres = regs.SCOPE_CHB_THRES
		hyst = regs.SCOPE_CHB_HYST
		faa = regs.SCOPE_CHB_FILT_AA
		fbb = regs.SCOPE_CHB_FILT_BB
		fkk = regs.SCOPE_CHB_FILT_KK
		fpp = regs.SCOPE_CHB_FILT_PP
		beg = regs.AXI_B_START
		end = regs.AXI_B_STOP
		dly = regs.AXI_B_DLY
		en = regs.AXI_B_EN
	}

	var keep uint32
	if set.Keep != 0 {
		keep = regs.CTRL_KEEP
	}

	return []RegOp{
		{Addr: regs.SCOPE_CTRL, Value: keep},
		{Addr: thres, Value: uint32(set.Thresh) & 0x3FFF},
		{Addr: hyst, Value: set.Hyst},
		{Addr: regs.SCOPE_TRG_DLY, Value: set.TrigDly},
		{Addr: regs.SCOPE_DEC_RATE, Value: set.DecRate},
		{Addr: regs.SCOPE_AVG_EN, Value: uint32(set.AvgEn)},
		{Addr: regs.SCOPE_DEB_LEN, Value: set.DebLen},
		{Addr: faa, Value: set.FiltAA},
		{Addr: fbb, Value: set.FiltBB},
		{Addr: fkk, Value: set.FiltKK},
		{Addr: fpp, Value: set.FiltPP},
		{Addr: beg, Value: set.StreamStart},
		{Addr: end, Value: set.StreamStop},
		{Addr: dly, Value: set.StreamDly},
		{Addr: en, Value: uint32(set.StreamEn)},
		{Addr: regs.SCOPE_TRG_SRC, Value: set.TrigSrc},
	}
}

// RegOp is one register write derived from stored settings.
type RegOp struct {
	Addr  uint32 `json:"addr"`
	Value uint32 `json:"value"`
}

// DAQState names a registered acquisition state.
type DAQState struct {
	ID          uint64
	Setup       int32
	RunType     uint16
	TriggerMode uint16
}
