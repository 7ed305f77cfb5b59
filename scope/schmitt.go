// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// schmitt converts one channel's decimated sample stream into rising
// and falling trigger pulses with hysteresis. For each polarity a
// 2-bit history is kept: bit 0 is the level comparator output, bit 1
// is the previous tick's bit 0. The emitted pulse is bit0 && !bit1,
// one tick wide, on the tick the comparator arms. Re-arming requires
// the signal to retreat past the opposite threshold first.
type schmitt struct {
	rise [2]bool
	fall [2]bool
}

func (h schmitt) next(sample int32, valid bool, base, hyst int32) (schmitt, edgePulse) {
	var (
		pos = base + hyst
		neg = base - hyst
	)

	n := schmitt{
		rise: [2]bool{h.rise[0], h.rise[0]},
		fall: [2]bool{h.fall[0], h.fall[0]},
	}

	if valid {
		switch {
		case sample >= base:
			n.rise[0] = true
		case sample < neg:
			n.rise[0] = false
		}
		switch {
		case sample <= base:
			n.fall[0] = true
		case sample > pos:
			n.fall[0] = false
		}
	}

	return n, edgePulse{
		rise: n.rise[0] && !n.rise[1],
		fall: n.fall[0] && !n.fall[1],
	}
}
