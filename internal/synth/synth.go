// SPDX-License-Identifier: MIT

// Package synth produces test and demo signals: an infinite sinusoid, a
// decibel-controlled gain step, and an Input adapter that packs sample
// iterators into Frames.
package synth

import (
	"math"

	"spectro/internal/dsp"
	"spectro/internal/stream"
)

// A SampleClock yields the sample times (seconds) for a given sample
// rate, a useful base for synthesizing signals.
type SampleClock struct {
	i          float64
	sampleRate float64
}

func NewSampleClock(rate stream.SampleRate) *SampleClock {
	return &SampleClock{sampleRate: rate.Float()}
}

func (c *SampleClock) Next() float64 {
	t := c.i / c.sampleRate
	c.i++
	return t
}

// A SinIterator produces an infinite sinusoid, sample by sample.
type SinIterator struct {
	frequency float64
	phase     float64
	clock     *SampleClock
}

// NewSinIterator takes frequency in Hz and phase in radians.
func NewSinIterator(rate stream.SampleRate, frequency, phase float64) *SinIterator {
	return &SinIterator{
		frequency: frequency,
		phase:     phase,
		clock:     NewSampleClock(rate),
	}
}

func (s *SinIterator) SetFrequency(frequency float64) {
	s.frequency = frequency
}

// Next never exhausts.
func (s *SinIterator) Next() (float32, bool) {
	t := s.clock.Next()
	return float32(math.Sin(2*math.Pi*s.frequency*t + s.phase)), true
}

// Gain scales samples by a fixed decibel amount.
type Gain struct {
	gain float32
}

func NewGain(gain dsp.Decibels) *Gain {
	g := &Gain{}
	g.SetGain(gain)
	return g
}

func (g *Gain) SetGain(gain dsp.Decibels) {
	// sqrt converts from a power ratio to an amplitude ratio
	g.gain = float32(math.Sqrt(gain.FullScale()))
}

// Process implements Step[float32, float32].
func (g *Gain) Process(v float32) []float32 {
	return []float32{v * g.gain}
}
