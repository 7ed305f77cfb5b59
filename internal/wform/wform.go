// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wform describes and handles captured waveform records.
//
// A waveform file is a sequence of records, one per captured channel,
// each carrying the capture bookkeeping (write pointer, trigger
// pointer, pre-trigger count) followed by the raw buffer content as
// little-endian int16 samples and a CRC-16 trailer over header and
// samples.
package wform // import "github.com/lharnaldi/rp-scope/internal/wform"

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lharnaldi/rp-scope/internal/crc16"
)

var magic = [4]byte{'W', 'F', 'M', 1}

// Record is one channel's frozen capture buffer.
type Record struct {
	Run      uint32
	Chan     uint8
	Dec      uint32 // decimation ratio in effect
	Depth    uint32 // buffer depth, power of two
	WritePtr uint32
	TrigPtr  uint32
	PreCount uint32
	Data     []int16
}

// Encoder writes waveform records to an output stream.
type Encoder struct {
	w   io.Writer
	crc crc16.Hash16
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, crc: crc16.New(nil), buf: make([]byte, 8)}
}

func (enc *Encoder) Encode(rec *Record) error {
	if uint32(len(rec.Data)) != rec.Depth {
		return fmt.Errorf("wform: record depth=%d does not match %d samples",
			rec.Depth, len(rec.Data),
		)
	}

	_, err := enc.w.Write(magic[:])
	if err != nil {
		return fmt.Errorf("wform: could not write magic: %w", err)
	}

	enc.crc.Reset()
	for _, v := range []uint32{
		rec.Run, uint32(rec.Chan), rec.Dec, rec.Depth,
		rec.WritePtr, rec.TrigPtr, rec.PreCount,
	} {
		err = enc.writeU32(v)
		if err != nil {
			return fmt.Errorf("wform: could not write record header: %w", err)
		}
	}

	for _, v := range rec.Data {
		binary.LittleEndian.PutUint16(enc.buf[:2], uint16(v))
		err = enc.write(enc.buf[:2])
		if err != nil {
			return fmt.Errorf("wform: could not write record data: %w", err)
		}
	}

	binary.BigEndian.PutUint16(enc.buf[:2], enc.crc.Sum16())
	_, err = enc.w.Write(enc.buf[:2])
	if err != nil {
		return fmt.Errorf("wform: could not write record crc: %w", err)
	}
	return nil
}

func (enc *Encoder) writeU32(v uint32) error {
	binary.LittleEndian.PutUint32(enc.buf[:4], v)
	return enc.write(enc.buf[:4])
}

func (enc *Encoder) write(p []byte) error {
	_, _ = enc.crc.Write(p)
	_, err := enc.w.Write(p)
	return err
}

// Decoder reads waveform records from an input stream.
type Decoder struct {
	r   io.Reader
	crc crc16.Hash16
	buf []byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, crc: crc16.New(nil), buf: make([]byte, 8)}
}

// Decode reads the next record. It returns io.EOF at a clean end of
// stream.
func (dec *Decoder) Decode(rec *Record) error {
	_, err := io.ReadFull(dec.r, dec.buf[:4])
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("wform: could not read magic: %w", err)
	}
	if [4]byte{dec.buf[0], dec.buf[1], dec.buf[2], dec.buf[3]} != magic {
		return fmt.Errorf("wform: invalid magic %q", dec.buf[:4])
	}

	dec.crc.Reset()
	hdr := make([]uint32, 7)
	for i := range hdr {
		hdr[i], err = dec.readU32()
		if err != nil {
			return fmt.Errorf("wform: could not read record header: %w", err)
		}
	}

	rec.Run = hdr[0]
	rec.Chan = uint8(hdr[1])
	rec.Dec = hdr[2]
	rec.Depth = hdr[3]
	rec.WritePtr = hdr[4]
	rec.TrigPtr = hdr[5]
	rec.PreCount = hdr[6]

	const maxDepth = 1 << 24
	if rec.Depth > maxDepth {
		return fmt.Errorf("wform: invalid record depth %d", rec.Depth)
	}

	rec.Data = make([]int16, rec.Depth)
	for i := range rec.Data {
		err = dec.read(dec.buf[:2])
		if err != nil {
			return fmt.Errorf("wform: could not read record data: %w", err)
		}
		rec.Data[i] = int16(binary.LittleEndian.Uint16(dec.buf[:2]))
	}

	sum := dec.crc.Sum16()
	_, err = io.ReadFull(dec.r, dec.buf[:2])
	if err != nil {
		return fmt.Errorf("wform: could not read record crc: %w", noEOF(err))
	}
	if got := binary.BigEndian.Uint16(dec.buf[:2]); got != sum {
		return fmt.Errorf("wform: invalid record crc: got=0x%04x, want=0x%04x", got, sum)
	}
	return nil
}

func (dec *Decoder) readU32() (uint32, error) {
	err := dec.read(dec.buf[:4])
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(dec.buf[:4]), nil
}

func (dec *Decoder) read(p []byte) error {
	_, err := io.ReadFull(dec.r, p)
	if err != nil {
		return noEOF(err)
	}
	_, _ = dec.crc.Write(p)
	return nil
}

// noEOF maps a bare EOF to ErrUnexpectedEOF: once a record's magic has
// been read, running out of bytes is a truncation, not a clean end of
// stream.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
