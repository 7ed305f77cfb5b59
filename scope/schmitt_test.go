// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import "testing"

func runSchmitt(h schmitt, samples []int32, base, hyst int32) (schmitt, int, int) {
	var rises, falls int
	for _, v := range samples {
		var p edgePulse
		h, p = h.next(v, true, base, hyst)
		if p.rise {
			rises++
		}
		if p.fall {
			falls++
		}
	}
	return h, rises, falls
}

func TestSchmittRise(t *testing.T) {
	const (
		base = 100
		hyst = 10
	)

	// cross up, dither inside the hysteresis band, retreat below
	// base-hyst, cross up again: exactly two rise pulses.
	samples := []int32{
		0, 50, 120, // first crossing
		105, 95, 105, 95, // dither around base, inside the band
		80, 85, // below base-hyst: re-arm
		120, // second crossing
	}

	_, rises, _ := runSchmitt(schmitt{}, samples, base, hyst)
	if got, want := rises, 2; got != want {
		t.Fatalf("invalid rise count: got=%d, want=%d", got, want)
	}
}

func TestSchmittNoRetriggerInBand(t *testing.T) {
	const (
		base = 0
		hyst = 10
	)

	// oscillation of +/-5 around the threshold stays within the band
	// and must produce a single pulse.
	samples := make([]int32, 0, 64)
	samples = append(samples, -20, 20)
	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			samples = append(samples, -5)
		} else {
			samples = append(samples, 5)
		}
	}

	_, rises, _ := runSchmitt(schmitt{}, samples, base, hyst)
	if got, want := rises, 1; got != want {
		t.Fatalf("invalid rise count: got=%d, want=%d", got, want)
	}
}

func TestSchmittFall(t *testing.T) {
	const (
		base = 100
		hyst = 10
	)

	h, _, _ := runSchmitt(schmitt{}, []int32{200, 200}, base, hyst)

	samples := []int32{
		90, // first fall crossing
		105, 95, // dither inside the band
		120, // above base+hyst: re-arm
		80,  // second fall crossing
	}
	_, _, falls := runSchmitt(h, samples, base, hyst)
	if got, want := falls, 2; got != want {
		t.Fatalf("invalid fall count: got=%d, want=%d", got, want)
	}
}

func TestSchmittIgnoresInvalidSamples(t *testing.T) {
	var (
		h schmitt
		p edgePulse
	)
	for i := 0; i < 4; i++ {
		h, p = h.next(1000, false, 0, 10)
		if p.rise || p.fall {
			t.Fatalf("pulse emitted without a valid sample")
		}
	}
	h, p = h.next(1000, true, 0, 10)
	if !p.rise {
		t.Fatalf("expected a rise pulse on the first valid sample")
	}
	_ = h
}
