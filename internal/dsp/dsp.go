// SPDX-License-Identifier: MIT

// Package dsp implements the measurements taken over analysis windows:
// RMS loudness, decibel conversion, the forward-FFT spectral chain, and a
// general LTI filter step.
package dsp

import (
	"math"
	"strconv"

	"spectro/internal/stream"
)

// RMS returns the root mean square of the window's samples, in linear
// full-scale units (1.0 = full scale).
func RMS(cp stream.ChannelPeriod) float64 {
	var sumSq float64
	for s := range cp.Samples() {
		sumSq += float64(s) * float64(s)
	}
	return math.Sqrt(sumSq / float64(cp.Len()))
}

// Decibels is a power ratio relative to full scale.
type Decibels float64

// DecibelsFromFullScale converts a linear full-scale ratio to decibels.
func DecibelsFromFullScale(fs float64) Decibels {
	return Decibels(10 * math.Log10(fs))
}

// FullScale converts back to a linear full-scale ratio.
func (d Decibels) FullScale() float64 {
	return math.Pow(10, float64(d)/10)
}

func (d Decibels) String() string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64) + "dB"
}
