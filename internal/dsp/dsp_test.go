// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"spectro/internal/stream"
	"spectro/pkg/testsig"
)

// window wraps raw mono samples into a ChannelPeriod via the real
// buffering path.
func window(t *testing.T, samples []float32, rate int) stream.ChannelPeriod {
	t.Helper()
	b := stream.NewSampleBuffer(stream.NewChannelCount(1), stream.NewSampleRate(rate), len(samples))
	pb := stream.NewPeriodBuffer(b, len(samples), len(samples))
	pb.Push(&stream.Frame{
		Channels:   stream.NewChannelCount(1),
		SampleRate: stream.NewSampleRate(rate),
		Samples:    samples,
	})
	p, ok := pb.Next()
	if !ok {
		t.Fatalf("period not available for %d samples", len(samples))
	}
	return p.Channel(0)
}

func TestRMSConstant(t *testing.T) {
	cp := window(t, []float32{0.5, 0.5, 0.5, 0.5}, 44100)
	if got := RMS(cp); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMS of constant 0.5 = %v", got)
	}
}

func TestRMSSine(t *testing.T) {
	// Full-scale sine over whole cycles has RMS 1/sqrt(2). 4410 samples
	// at 440Hz is exactly 44 cycles.
	cp := window(t, testsig.Sine(4410, 44100, 440, 1.0), 44100)
	want := 1 / math.Sqrt2
	if got := RMS(cp); math.Abs(got-want) > 1e-4 {
		t.Errorf("RMS of full-scale sine = %v, want %v", got, want)
	}
}

func TestRMSSilence(t *testing.T) {
	cp := window(t, make([]float32, 64), 44100)
	if got := RMS(cp); got != 0 {
		t.Errorf("RMS of silence = %v", got)
	}
}

func TestDecibels(t *testing.T) {
	cases := []struct {
		fs   float64
		want Decibels
	}{
		{1.0, 0},
		{0.1, -10},
		{0.01, -20},
		{10, 10},
	}
	for _, c := range cases {
		if got := DecibelsFromFullScale(c.fs); math.Abs(float64(got-c.want)) > 1e-9 {
			t.Errorf("DecibelsFromFullScale(%v) = %v, want %v", c.fs, got, c.want)
		}
	}
}

func TestDecibelsRoundTrip(t *testing.T) {
	for _, fs := range []float64{1e-5, 0.1, 0.5, 1, 2} {
		got := DecibelsFromFullScale(fs).FullScale()
		if math.Abs(got-fs)/fs > 1e-9 {
			t.Errorf("round trip of %v = %v", fs, got)
		}
	}
}

func TestDecibelsString(t *testing.T) {
	if got := Decibels(-10).String(); got != "-10dB" {
		t.Errorf("String() = %q, want \"-10dB\"", got)
	}
}
