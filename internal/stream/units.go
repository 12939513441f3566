// SPDX-License-Identifier: MIT
package stream

import "time"

// ChannelCount is the number of interleaved channels in a stream.
// Carried as a distinct type so a channel count can never be confused
// with a sample rate or a buffer length.
type ChannelCount int

func NewChannelCount(c int) ChannelCount {
	if c <= 0 {
		panic("stream: channel count must be positive")
	}
	return ChannelCount(c)
}

func (c ChannelCount) Int() int { return int(c) }

// SampleRate is a stream sample rate in Hz.
type SampleRate int

func NewSampleRate(s int) SampleRate {
	if s <= 0 {
		panic("stream: sample rate must be positive")
	}
	return SampleRate(s)
}

func (s SampleRate) Int() int         { return int(s) }
func (s SampleRate) Float() float64   { return float64(s) }
func (s SampleRate) Nyquist() float64 { return float64(s) / 2 }

// Instant is a point in time within a signal, in seconds from the start
// of the stream. time.Time is unusable here: signal time is derived from
// a sample index, not a wall clock.
type Instant float64

// InstantOfSample converts a sample index into signal time.
func InstantOfSample(sample int, rate SampleRate) Instant {
	return Instant(float64(sample) / rate.Float())
}

func (i Instant) Seconds() float64 { return float64(i) }

func (i Instant) Add(d time.Duration) Instant {
	return i + Instant(d.Seconds())
}

func (i Instant) Sub(o Instant) time.Duration {
	return time.Duration(float64(i-o) * float64(time.Second))
}
