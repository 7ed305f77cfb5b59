// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// debounce synchronizes and debounces one raw digital line into clean
// rising/falling pulses. A candidate edge loads the debounce counter;
// when the counter expires, the debounced level register is updated
// with the synchronized level. A glitch shorter than the debounce
// length leaves the level unchanged and produces no pulse.
type debounce struct {
	sync [3]bool // synchronizer shift register
	cnt  uint32  // debounce countdown
	lvl  bool    // debounced level
	prev bool    // debounced level, previous tick
}

type edgePulse struct {
	rise bool
	fall bool
}

func (d debounce) next(raw bool, debLen uint32) (debounce, edgePulse) {
	n := debounce{
		sync: [3]bool{raw, d.sync[0], d.sync[1]},
		cnt:  d.cnt,
		lvl:  d.lvl,
		prev: d.lvl,
	}

	switch {
	case d.cnt > 0:
		// counting down: further edges are ignored.
		n.cnt = d.cnt - 1
		if n.cnt == 0 {
			n.lvl = d.sync[1]
		}
	case d.sync[1] != d.sync[2]:
		n.cnt = debLen
		if debLen == 0 {
			n.lvl = d.sync[1]
		}
	}

	return n, edgePulse{
		rise: n.lvl && !n.prev,
		fall: !n.lvl && n.prev,
	}
}
