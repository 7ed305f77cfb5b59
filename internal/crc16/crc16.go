// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the 16-bit cyclic redundancy check used to
// protect waveform records, as defined by CRC-16/CCITT-FALSE.
package crc16 // import "github.com/lharnaldi/rp-scope/internal/crc16"

import "hash"

const (
	// Size of a CRC-16 checksum in bytes.
	Size = 2

	poly   = 0x1021
	init16 = 0xFFFF
)

// Table is a 256-word table representing the polynomial for efficient
// processing.
type Table [256]uint16

// MakeTable returns a Table constructed from the specified polynomial.
func MakeTable(poly uint16) *Table {
	var tab Table
	for i := range tab {
		crc := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		tab[i] = crc
	}
	return &tab
}

var ccitt = MakeTable(poly)

// Hash16 is the common interface implemented by all 16-bit hash
// functions.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	crc uint16
	tab *Table
}

// New creates a new Hash16 computing the CRC-16 checksum using the
// polynomial represented by tab. A nil tab selects the CCITT
// polynomial.
func New(tab *Table) Hash16 {
	if tab == nil {
		tab = ccitt
	}
	return &digest{crc: init16, tab: tab}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.crc = init16 }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, v := range p {
		crc = crc<<8 ^ d.tab[byte(crc>>8)^v]
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}
