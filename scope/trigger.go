// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import "fmt"

// TrigSrc enumerates the trigger sources the selector can arbitrate.
type TrigSrc uint32

const (
	TrigNone    TrigSrc = iota // never trigger
	TrigManual                 // software trigger request
	TrigChARise                // channel A crosses threshold, rising
	TrigChAFall                // channel A crosses threshold, falling
	TrigChBRise                // channel B crosses threshold, rising
	TrigChBFall                // channel B crosses threshold, falling
	TrigExtRise                // external line, debounced rising edge
	TrigExtFall                // external line, debounced falling edge
	TrigAuxRise                // auxiliary generator line, debounced rising edge
	TrigAuxFall                // auxiliary generator line, debounced falling edge
)

func (src TrigSrc) String() string {
	switch src {
	case TrigNone:
		return "none"
	case TrigManual:
		return "manual"
	case TrigChARise:
		return "cha-rise"
	case TrigChAFall:
		return "cha-fall"
	case TrigChBRise:
		return "chb-rise"
	case TrigChBFall:
		return "chb-fall"
	case TrigExtRise:
		return "ext-rise"
	case TrigExtFall:
		return "ext-fall"
	case TrigAuxRise:
		return "aux-rise"
	case TrigAuxFall:
		return "aux-fall"
	}
	return fmt.Sprintf("TrigSrc(%d)", uint32(src))
}

// trigPulses collects the candidate single-tick pulses feeding the
// selector on one tick.
type trigPulses struct {
	manual   bool
	chA, chB edgePulse
	ext, aux edgePulse
}

// selectTrig arbitrates one gated trigger pulse from the configured
// source. The pulse is forced low outside the armed state.
func selectTrig(src TrigSrc, p trigPulses, armed bool) bool {
	if !armed {
		return false
	}
	switch src {
	case TrigManual:
		return p.manual
	case TrigChARise:
		return p.chA.rise
	case TrigChAFall:
		return p.chA.fall
	case TrigChBRise:
		return p.chB.rise
	case TrigChBFall:
		return p.chB.fall
	case TrigExtRise:
		return p.ext.rise
	case TrigExtFall:
		return p.ext.fall
	case TrigAuxRise:
		return p.aux.rise
	case TrigAuxFall:
		return p.aux.fall
	}
	return false
}
