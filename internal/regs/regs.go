// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regs holds the register offsets of the scope address map.
//
// The map is a flat 20-bit address space of 32-bit words. Offsets below
// 0x10000 address configuration and status fields; the two buffer windows
// at CHA_BUF_BASE and CHB_BUF_BASE expose the capture buffers for
// read-back.
package regs // import "github.com/lharnaldi/rp-scope/internal/regs"

const (
	SCOPE_CTRL      = 0x00 // w: bit0 arm, bit1 reset, bit3 keep-running / r: bit2 trigger-status, bit3 keep-running
	SCOPE_TRG_SRC   = 0x04 // trigger source select; writing 1 also fires the manual trigger
	SCOPE_CHA_THRES = 0x08 // channel A Schmitt base threshold (signed, 14 bits)
	SCOPE_CHB_THRES = 0x0C // channel B Schmitt base threshold (signed, 14 bits)
	SCOPE_TRG_DLY   = 0x10 // post-trigger sample count
	SCOPE_DEC_RATE  = 0x14 // decimation ratio
	SCOPE_CUR_WP    = 0x18 // r/o: current write pointer
	SCOPE_TRG_WP    = 0x1C // r/o: trigger write pointer
	SCOPE_CHA_HYST  = 0x20 // channel A hysteresis magnitude
	SCOPE_CHB_HYST  = 0x24 // channel B hysteresis magnitude
	SCOPE_AVG_EN    = 0x28 // bit0: averaging enable
	SCOPE_PRE_CNT   = 0x2C // r/o: pre-trigger sample count (saturating)

	SCOPE_CHA_FILT_AA = 0x30 // channel A filter coefficient AA (18 bits)
	SCOPE_CHA_FILT_BB = 0x34 // channel A filter coefficient BB (25 bits)
	SCOPE_CHA_FILT_KK = 0x38 // channel A filter coefficient KK (25 bits)
	SCOPE_CHA_FILT_PP = 0x3C // channel A filter coefficient PP (25 bits)
	SCOPE_CHB_FILT_AA = 0x40
	SCOPE_CHB_FILT_BB = 0x44
	SCOPE_CHB_FILT_KK = 0x48
	SCOPE_CHB_FILT_PP = 0x4C

	AXI_A_START = 0x50 // streaming engine A range start address
	AXI_A_STOP  = 0x54 // streaming engine A range stop address
	AXI_A_DLY   = 0x58 // streaming engine A post-trigger sample count
	AXI_A_EN    = 0x5C // bit0: streaming engine A enable; writing bit1 clears the engine
	AXI_A_TRGA  = 0x60 // r/o: streaming engine A trigger bookmark address
	AXI_A_CURA  = 0x64 // r/o: streaming engine A current address

	AXI_B_START = 0x70
	AXI_B_STOP  = 0x74
	AXI_B_DLY   = 0x78
	AXI_B_EN    = 0x7C
	AXI_B_TRGA  = 0x80
	AXI_B_CURA  = 0x84

	SCOPE_DEB_LEN = 0x90 // debounce length, in ticks

	CHA_BUF_BASE = 0x10000 // channel A capture buffer read-back window
	CHB_BUF_BASE = 0x20000 // channel B capture buffer read-back window

	ADDR_MASK = 0xFFFFF // 20-bit address space
	BUF_MASK  = 0xFFFF  // word offset within a buffer window
)

// Control register bits.
const (
	CTRL_ARM  = 1 << 0
	CTRL_RST  = 1 << 1
	CTRL_TRG  = 1 << 2 // read-only: trigger seen, post-delay in progress
	CTRL_KEEP = 1 << 3
)
