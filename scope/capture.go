// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// capState is the capture buffer controller state.
type capState uint8

const (
	capIdle    capState = iota // write disabled, pointers held
	capWriting                 // armed, accumulating pre-trigger samples
	capDelay                   // triggered, counting down post-trigger samples
	capRunning                 // delay expired with keep-running set
)

// capCtl owns the write-side bookkeeping of the circular capture
// buffers. Both channels share one controller: a single write pointer
// addresses both rings.
type capCtl struct {
	st     capState
	we     bool
	wp     uint32 // write pointer, modulo buffer depth
	tp     uint32 // trigger pointer, latched once per episode
	preCnt uint32 // pre-trigger sample count, saturating
	dlyCnt uint32 // post-trigger countdown
}

type capIn struct {
	arm  bool
	rst  bool
	trig bool
	dv   bool
}

type capOut struct {
	write bool   // commit the current samples at index widx
	widx  uint32 // buffer index to write this tick
	done  bool   // post-trigger delay completed this tick
}

// next computes the controller's next state from its committed state
// and this tick's inputs. The trigger pointer latches the pre-tick
// write pointer; a reset overrides everything, including keep-running.
func (c capCtl) next(in capIn, dly uint32, keep bool, depth uint32) (capCtl, capOut) {
	var out capOut

	if in.rst {
		return capCtl{}, out
	}
	if in.arm {
		return capCtl{st: capWriting, we: true}, out
	}

	n := c

	write := c.we && in.dv
	switch c.st {
	case capWriting:
		if write {
			out.write = true
			out.widx = c.wp
			n.wp = (c.wp + 1) % depth
			if !in.trig {
				n.preCnt = satIncr(c.preCnt)
			}
		}
		if in.trig {
			n.st = capDelay
			n.tp = c.wp
			n.dlyCnt = dly
			// a coincident sample counts against the delay
			if write && n.dlyCnt > 0 {
				n.dlyCnt--
			}
			if dly == 0 && !write {
				n = n.expire(keep, &out)
			}
		}

	case capDelay:
		if write {
			if c.dlyCnt == 0 {
				out.write = false
				n = n.expire(keep, &out)
				if n.we {
					out.write = true
					out.widx = c.wp
					n.wp = (c.wp + 1) % depth
				}
			} else {
				out.write = true
				out.widx = c.wp
				n.wp = (c.wp + 1) % depth
				n.dlyCnt = c.dlyCnt - 1
			}
		}

	case capRunning:
		if write {
			out.write = true
			out.widx = c.wp
			n.wp = (c.wp + 1) % depth
		}
	}

	return n, out
}

// expire resolves the end of the post-trigger delay: stop, or keep
// writing indefinitely when keep-running is set.
func (c capCtl) expire(keep bool, out *capOut) capCtl {
	out.done = true
	if keep {
		c.st = capRunning
		return c
	}
	c.st = capIdle
	c.we = false
	return c
}

func satIncr(v uint32) uint32 {
	if v == ^uint32(0) {
		return v
	}
	return v + 1
}
