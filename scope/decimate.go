// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// Supported decimation ratios and their average shifts.
// Other ratios fall back to the unshifted accumulator value.
var decShifts = map[uint32]uint{
	1:     0,
	8:     3,
	64:    6,
	1024:  10,
	8192:  13,
	65536: 16,
}

// decimator accumulates raw samples and emits one output sample
// every ratio ticks. The accumulator restarts from the current
// sample, not from zero, so each window starts clean.
type decimator struct {
	sum int64
	cnt uint32
}

// next advances the decimator by one tick with the current filtered
// sample. It returns the new state, the emitted sample and whether a
// sample is emitted this tick. restart forces a fresh window (arm).
func (d decimator) next(sample int32, ratio uint32, avg, restart bool) (decimator, int32, bool) {
	if ratio == 0 {
		ratio = 1
	}

	if restart {
		return decimator{sum: int64(sample), cnt: 1}, 0, false
	}

	done := d.cnt >= ratio
	if !done {
		return decimator{sum: d.sum + int64(sample), cnt: d.cnt + 1}, 0, false
	}

	out := sample // averaging disabled: pass the raw sample through
	if avg {
		shift, ok := decShifts[ratio]
		if !ok {
			shift = 0
		}
		out = int32(d.sum >> shift)
	}
	return decimator{sum: int64(sample), cnt: 1}, out, true
}
