// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fpga gives host access to the oscilloscope register block of
// a Red Pitaya board through /dev/mem.
//
// The register map mirrors the one exposed by internal/regs: the
// whole 20-bit address window is mapped in one go, so plain register
// fields and the two capture-buffer windows are all reachable through
// the same port.
package fpga // import "github.com/lharnaldi/rp-scope/fpga"

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/lharnaldi/rp-scope/internal/mmap"
	"github.com/lharnaldi/rp-scope/internal/regs"
)

const (
	// BaseAddr is the physical base of the oscilloscope register block.
	BaseAddr = 0x40100000
	// Span covers the whole register window, buffers included.
	Span = regs.ADDR_MASK + 1
)

// Port is a memory-mapped oscilloscope register port.
type Port struct {
	fd  *os.File
	mem *mmap.Handle
	err error // first sticky access error
}

// Open maps the oscilloscope register block from the named memory
// device, usually /dev/mem.
func Open(devmem string) (*Port, error) {
	fd, err := os.OpenFile(devmem, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("fpga: could not open %q: %w", devmem, err)
	}

	data, err := unix.Mmap(
		int(fd.Fd()),
		BaseAddr, Span,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		_ = fd.Close()
		return nil, fmt.Errorf("fpga: could not mmap scope registers: %w", err)
	}
	if data == nil || len(data) != Span {
		_ = fd.Close()
		return nil, fmt.Errorf("fpga: invalid mmap'd data: %d", len(data))
	}

	return &Port{fd: fd, mem: mmap.HandleFrom(data)}, nil
}

// Err returns the first access error since the port was opened or Err
// was last cleared.
func (p *Port) Err() error {
	err := p.err
	p.err = nil
	return err
}

// Write stores v into the register at addr.
func (p *Port) Write(addr, v uint32) {
	off := int(addr & regs.ADDR_MASK)
	if off+4 > p.mem.Len() {
		p.setErr(fmt.Errorf("fpga: write offset 0x%x out of range", off))
		return
	}
	p.mem.SetU32(off, v)
}

// Read returns the value of the register at addr.
func (p *Port) Read(addr uint32) uint32 {
	off := int(addr & regs.ADDR_MASK)
	if off+4 > p.mem.Len() {
		p.setErr(fmt.Errorf("fpga: read offset 0x%x out of range", off))
		return 0
	}
	return p.mem.U32(off)
}

// ReadBuf copies n samples of channel ch's capture buffer starting at
// index beg, in buffer order.
func (p *Port) ReadBuf(ch int, beg, n uint32) ([]int32, error) {
	base := uint32(regs.CHA_BUF_BASE)
	if ch == 1 {
		base = regs.CHB_BUF_BASE
	}

	out := make([]int32, n)
	for i := uint32(0); i < n; i++ {
		idx := (beg + i) & regs.BUF_MASK
		raw := p.Read(base + idx*4)
		out[i] = signExtend14(raw)
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("fpga: could not read channel %d buffer: %w", ch, err)
	}
	return out, nil
}

// Close unmaps the register block and closes the memory device.
func (p *Port) Close() error {
	err := p.mem.Close()
	if err != nil {
		_ = p.fd.Close()
		return fmt.Errorf("fpga: could not unmap scope registers: %w", err)
	}
	err = p.fd.Close()
	if err != nil {
		return fmt.Errorf("fpga: could not close memory device: %w", err)
	}
	return nil
}

func (p *Port) setErr(err error) {
	if p.err != nil {
		return
	}
	p.err = err
}

func signExtend14(v uint32) int32 {
	v &= 0x3FFF
	if v&0x2000 != 0 {
		v |= ^uint32(0x3FFF)
	}
	return int32(v)
}
