// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert captured waveform data to
// and from LCIO.
package xcnv // import "github.com/lharnaldi/rp-scope/internal/xcnv"

import (
	"errors"
	"fmt"
	"io"
	"log"

	"go-hep.org/x/hep/lcio"

	"github.com/lharnaldi/rp-scope/internal/wform"
)

// WFM2LCIO converts the waveform records read from dec into LCIO
// events written to w, one event per record, samples stored as a
// generic-object int32 payload in time order (oldest ring sample
// first).
func WFM2LCIO(w *lcio.Writer, dec *wform.Decoder, run int32, msg *log.Logger) error {
	raw := &lcio.GenericObject{
		Data: []lcio.GenericObjectData{
			{I32s: nil},
		},
	}

loop:
	for i := 0; ; i++ {
		if i%100 == 0 {
			msg.Printf("processing record %d...", i)
		}
		var rec wform.Record
		err := dec.Decode(&rec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode waveform record: %w", err)
		}

		if i == 0 {
			err = w.WriteRunHeader(&lcio.RunHeader{
				RunNumber: run,
				Detector:  "RP-SCOPE",
				Descr:     "",
				Params: lcio.Params{
					Ints: map[string][]int32{
						"Decimation": {int32(rec.Dec)},
						"Depth":      {int32(rec.Depth)},
					},
				},
			})
			if err != nil {
				return fmt.Errorf("could not write run header: %w", err)
			}
		}

		evt := lcio.Event{
			RunNumber:   run,
			EventNumber: int32(i),
			TimeStamp:   0,
			Detector:    "RP-SCOPE",
		}
		raw.Data[0].I32s = i32sFrom(&rec)
		evt.Add(fmt.Sprintf("SCOPE_CH%d", rec.Chan), raw)

		err = w.WriteEvent(&evt)
		if err != nil {
			return fmt.Errorf("could not write waveform event: %w", err)
		}
	}

	return nil
}

// i32sFrom lays the record out in time order: 6 bookkeeping words,
// then the ring content starting at the oldest sample.
func i32sFrom(rec *wform.Record) []int32 {
	var (
		depth = rec.Depth
		out   = make([]int32, 0, nhdr+depth)
		first = rec.WritePtr % depth
	)
	out = append(out,
		int32(rec.Chan),
		int32(rec.Dec),
		int32(rec.Depth),
		int32(rec.WritePtr),
		int32(rec.TrigPtr),
		int32(rec.PreCount),
	)
	for i := uint32(0); i < depth; i++ {
		out = append(out, int32(rec.Data[(first+i)%depth]))
	}
	return out
}

// nhdr is the number of bookkeeping words heading an event payload.
const nhdr = 6

// LCIO2WFM converts the waveform events read from r back into
// waveform records written to w, undoing the time-order rotation
// applied by WFM2LCIO.
func LCIO2WFM(w io.Writer, r *lcio.Reader, freq int, msg *log.Logger) error {
	var (
		enc = wform.NewEncoder(w)
		i   = 0
	)

	for r.Next() {
		if i%freq == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := r.Event()
		for ch := 0; ch < 2; ch++ {
			name := fmt.Sprintf("SCOPE_CH%d", ch)
			obj, ok := evt.Get(name).(*lcio.GenericObject)
			if !ok || len(obj.Data) == 0 {
				continue
			}
			rec, err := recFrom(obj.Data[0].I32s)
			if err != nil {
				return fmt.Errorf("could not rebuild record from evt %d: %w",
					evt.EventNumber, err,
				)
			}
			rec.Run = uint32(evt.RunNumber)

			err = enc.Encode(rec)
			if err != nil {
				return fmt.Errorf("could not encode record from evt %d: %w",
					evt.EventNumber, err,
				)
			}
		}
		i++
	}

	err := r.Err()
	if err != nil && err != io.EOF {
		return fmt.Errorf("could not read LCIO events: %w", err)
	}
	return nil
}

// recFrom is the inverse of i32sFrom, up to the run number which is
// carried by the event itself.
func recFrom(raw []int32) (*wform.Record, error) {
	if len(raw) < nhdr {
		return nil, fmt.Errorf("truncated payload (%d words)", len(raw))
	}
	rec := &wform.Record{
		Chan:     uint8(raw[0]),
		Dec:      uint32(raw[1]),
		Depth:    uint32(raw[2]),
		WritePtr: uint32(raw[3]),
		TrigPtr:  uint32(raw[4]),
		PreCount: uint32(raw[5]),
	}

	data := raw[nhdr:]
	if rec.Depth == 0 || uint32(len(data)) != rec.Depth {
		return nil, fmt.Errorf("payload depth=%d does not match %d samples",
			rec.Depth, len(data),
		)
	}

	rec.Data = make([]int16, rec.Depth)
	first := rec.WritePtr % rec.Depth
	for i, v := range data {
		rec.Data[(first+uint32(i))%rec.Depth] = int16(v)
	}
	return rec, nil
}
