// SPDX-License-Identifier: MIT
package stream

import (
	"math"
	"testing"
)

const testRate = 4 // tiny rate keeps the sample times readable

func monoFrame(samples ...float32) *Frame {
	return &Frame{
		Channels:   NewChannelCount(1),
		SampleRate: NewSampleRate(testRate),
		Samples:    samples,
	}
}

func stereoFrame(samples ...float32) *Frame {
	return &Frame{
		Channels:   NewChannelCount(2),
		SampleRate: NewSampleRate(testRate),
		Samples:    samples,
	}
}

func collect(cp ChannelPeriod) []float32 {
	var out []float32
	for s := range cp.Samples() {
		out = append(out, s)
	}
	return out
}

func equalSamples(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSampleBufferDeinterleaves(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(2), NewSampleRate(testRate), 4)
	b.Push(stereoFrame(1, 2, 3, 4))

	p := Period{buffer: b, startSampleNum: 0, len: 2}
	if got := collect(p.Channel(0)); !equalSamples(got, []float32{1, 3}) {
		t.Errorf("channel 0 = %v, want [1 3]", got)
	}
	if got := collect(p.Channel(1)); !equalSamples(got, []float32{2, 4}) {
		t.Errorf("channel 1 = %v, want [2 4]", got)
	}
}

func TestSampleBufferLen(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 4)
	if b.Len() != 0 {
		t.Fatalf("empty buffer Len = %d", b.Len())
	}
	b.Push(monoFrame(1, 2))
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
	b.Push(monoFrame(3, 4, 5, 6))
	if b.Len() != 4 {
		t.Errorf("Len after overflow = %d, want 4 (capacity)", b.Len())
	}
	if got := b.oldestSampleIndex(); got != 2 {
		t.Errorf("oldestSampleIndex = %d, want 2", got)
	}
}

// Pushing past capacity wraps the ring; a window spanning the physical
// wrap point must come back as two segments in temporal order.
func TestPeriodSplitAcrossWrap(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 4)
	b.Push(monoFrame(1, 2, 3, 4))
	b.Push(monoFrame(5, 6)) // evicts 1, 2; physical layout now wraps

	p := Period{buffer: b, startSampleNum: 2, len: 4}
	cp := p.Channel(0)
	if !equalSamples(cp.First, []float32{3, 4}) || !equalSamples(cp.Second, []float32{5, 6}) {
		t.Errorf("segments = %v / %v, want [3 4] / [5 6]", cp.First, cp.Second)
	}
	if got := collect(cp); !equalSamples(got, []float32{3, 4, 5, 6}) {
		t.Errorf("samples = %v, want [3 4 5 6]", got)
	}
}

func TestPeriodWithinSecondSegment(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 4)
	b.Push(monoFrame(1, 2, 3, 4))
	b.Push(monoFrame(5, 6))

	cp := Period{buffer: b, startSampleNum: 4, len: 2}.Channel(0)
	if !equalSamples(cp.First, []float32{5, 6}) || cp.Second != nil {
		t.Errorf("segments = %v / %v, want [5 6] / nil", cp.First, cp.Second)
	}
}

func TestPeriodAgedOutPanics(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 4)
	b.Push(monoFrame(1, 2, 3, 4))
	b.Push(monoFrame(5, 6))

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic resolving an evicted window")
		}
	}()
	Period{buffer: b, startSampleNum: 0, len: 2}.Channel(0)
}

func TestPushMismatchPanics(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(2), NewSampleRate(testRate), 4)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic pushing a mono frame into a stereo buffer")
		}
	}()
	b.Push(monoFrame(1, 2))
}

func TestPeriodTimes(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 8)
	b.Push(monoFrame(0, 0, 0, 0, 0, 0))

	p := Period{buffer: b, startSampleNum: 2, len: 4}
	if got := p.StartTime().Seconds(); got != 0.5 {
		t.Errorf("StartTime = %v, want 0.5", got)
	}
	if got := p.EndTime().Seconds(); got != 1.5 {
		t.Errorf("EndTime = %v, want 1.5", got)
	}
}

func TestPushHotPathZeroAllocs(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(2), NewSampleRate(testRate), 1024)
	f := stereoFrame(make([]float32, 256)...)

	b.Push(f) // warm-up
	allocs := testing.AllocsPerRun(100, func() {
		b.Push(f)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Push, got %.1f", allocs)
	}
}

func BenchmarkSampleBufferPush(b *testing.B) {
	buf := NewSampleBuffer(NewChannelCount(2), NewSampleRate(testRate), 8192)
	f := stereoFrame(make([]float32, 512)...)

	b.ReportAllocs()
	for b.Loop() {
		buf.Push(f)
	}
}

func TestTimeseries(t *testing.T) {
	b := NewSampleBuffer(NewChannelCount(1), NewSampleRate(testRate), 8)
	b.Push(monoFrame(10, 11, 12, 13))

	var times []float64
	var samples []float32
	for at, s := range (Period{buffer: b, startSampleNum: 1, len: 3}).Channel(0).Timeseries() {
		times = append(times, at.Seconds())
		samples = append(samples, s)
	}
	wantTimes := []float64{0.25, 0.5, 0.75}
	for i := range wantTimes {
		if math.Abs(times[i]-wantTimes[i]) > 1e-12 {
			t.Errorf("times = %v, want %v", times, wantTimes)
			break
		}
	}
	if !equalSamples(samples, []float32{11, 12, 13}) {
		t.Errorf("samples = %v, want [11 12 13]", samples)
	}
}
