// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

// FilterCoeffs holds the four coefficients of the per-channel input
// filter. Widths follow the hardware: AA is 18 bits, BB, KK and PP are
// 25 bits.
type FilterCoeffs struct {
	AA uint32
	BB uint32
	KK uint32
	PP uint32
}

const (
	filtAAMask = 1<<18 - 1
	filtMask   = 1<<25 - 1
)

func (c FilterCoeffs) masked() FilterCoeffs {
	return FilterCoeffs{
		AA: c.AA & filtAAMask,
		BB: c.BB & filtMask,
		KK: c.KK & filtMask,
		PP: c.PP & filtMask,
	}
}

// Filter is the per-channel anti-alias/compensation collaborator: a
// pure sample-in/sample-out transform configured by four coefficients.
// The analog-domain transfer function itself is outside this core.
type Filter interface {
	SetCoeffs(FilterCoeffs)
	Apply(v int32) int32
}

// nopFilter passes samples through unchanged. It is the default
// collaborator wired by New; a hardware deployment substitutes the
// real compensation filter through WithFilter.
type nopFilter struct{}

func (nopFilter) SetCoeffs(FilterCoeffs) {}
func (nopFilter) Apply(v int32) int32    { return v }

// delayFilter mimics the one-sample latency of the hardware filter
// chain while leaving values untouched. Useful in tests that need the
// collaborator's timing without its arithmetic.
type delayFilter struct {
	prev int32
}

func (f *delayFilter) SetCoeffs(FilterCoeffs) {}

func (f *delayFilter) Apply(v int32) int32 {
	out := f.prev
	f.prev = v
	return out
}
