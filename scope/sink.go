// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import "encoding/binary"

// Sink is the burst-write transport collaborator of one streaming
// engine: it accepts packed 64-bit records and writes them to an
// external linear memory range, wrapping back to the range start upon
// reaching the range stop. Overflow is advisory only; the engine never
// stalls on it.
type Sink interface {
	// Configure sets the target address range.
	Configure(start, stop uint32)
	// Clear resets the sink's write position to the range start.
	Clear()
	// Write commits one 64-bit record at the current position.
	Write(rec uint64)
	// CurAddr reports the address just past the last committed record.
	CurAddr() uint32
	// Overflow reports whether the range has wrapped since the last clear.
	Overflow() bool
}

// MemSink is a RAM-backed Sink used by tests and the standalone DAQ.
type MemSink struct {
	start uint32
	stop  uint32
	cur   uint32
	ovf   bool
	mem   map[uint32]uint64
}

// NewMemSink returns a MemSink over [start, stop).
func NewMemSink(start, stop uint32) *MemSink {
	s := &MemSink{mem: make(map[uint32]uint64)}
	s.Configure(start, stop)
	return s
}

func (s *MemSink) Configure(start, stop uint32) {
	s.start = start
	s.stop = stop
	if s.cur < start || s.cur >= stop {
		s.cur = start
	}
}

func (s *MemSink) Clear() {
	s.cur = s.start
	s.ovf = false
}

func (s *MemSink) Write(rec uint64) {
	s.mem[s.cur] = rec
	s.cur += 8
	if s.cur >= s.stop {
		s.cur = s.start
		s.ovf = true
	}
}

func (s *MemSink) CurAddr() uint32 { return s.cur }

func (s *MemSink) Overflow() bool { return s.ovf }

// At returns the record committed at addr, or zero.
func (s *MemSink) At(addr uint32) uint64 { return s.mem[addr] }

// Bytes returns the record at addr in little-endian wire order.
func (s *MemSink) Bytes(addr uint32) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.mem[addr])
	return buf[:]
}
