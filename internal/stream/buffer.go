// SPDX-License-Identifier: MIT
package stream

import (
	"fmt"
	"iter"
)

// ring is a fixed-capacity FIFO of samples. When full, appending evicts the
// oldest sample. The backing array never reallocates, so the live contents
// are always expressible as at most two contiguous segments.
type ring struct {
	buf   []float32
	start int // physical index of the oldest sample
	n     int // number of live samples
}

func newRing(capacity int) ring {
	return ring{buf: make([]float32, capacity)}
}

func (r *ring) push(s float32) {
	if r.n == len(r.buf) {
		r.start++
		if r.start == len(r.buf) {
			r.start = 0
		}
		r.n--
	}
	i := r.start + r.n
	if i >= len(r.buf) {
		i -= len(r.buf)
	}
	r.buf[i] = s
	r.n++
}

// segments returns the live contents in temporal order as one or two
// contiguous slices. The second slice is nil unless the ring has wrapped.
func (r *ring) segments() ([]float32, []float32) {
	if r.start+r.n <= len(r.buf) {
		return r.buf[r.start : r.start+r.n], nil
	}
	return r.buf[r.start:], r.buf[:r.start+r.n-len(r.buf)]
}

// A SampleBuffer is a set of per-channel rings. It accomplishes two things:
//   - de-interleaves the samples received from the device, because nearly
//     everything downstream wants contiguous data for a single channel
//   - adapts from whatever batch size the device uses to whatever window
//     length processing wants (e.g. for FFTs)
//
// It is owned by exactly one goroutine and mutated only by Push.
type SampleBuffer struct {
	maxLen     int
	channels   ChannelCount
	sampleRate SampleRate
	rings      []ring

	// sampleCount is the total per-channel samples ever pushed. It is not
	// bounded by maxLen; it is the time coordinate of the newest sample.
	sampleCount int
}

func NewSampleBuffer(channels ChannelCount, sampleRate SampleRate, maxLen int) *SampleBuffer {
	rings := make([]ring, channels.Int())
	for i := range rings {
		rings[i] = newRing(maxLen)
	}
	return &SampleBuffer{
		maxLen:     maxLen,
		channels:   channels,
		sampleRate: sampleRate,
		rings:      rings,
	}
}

// Push de-interleaves a frame into the per-channel rings, evicting the
// oldest samples as needed. A channel-count or sample-rate mismatch means
// the pipeline was wired wrong and panics rather than returning an error.
func (b *SampleBuffer) Push(f *Frame) {
	if f.Channels != b.channels {
		panic(fmt.Sprintf("stream: frame has %d channels, buffer expects %d", f.Channels, b.channels))
	}
	if f.SampleRate != b.sampleRate {
		panic(fmt.Sprintf("stream: frame rate %d Hz, buffer expects %d Hz", f.SampleRate, b.sampleRate))
	}
	if len(f.Samples)%b.channels.Int() != 0 {
		panic(fmt.Sprintf("stream: %d samples do not interleave over %d channels", len(f.Samples), b.channels))
	}

	b.sampleCount += len(f.Samples) / b.channels.Int()
	for i, s := range f.Samples {
		b.rings[i%b.channels.Int()].push(s)
	}
}

// Len returns the number of samples per channel currently retained.
func (b *SampleBuffer) Len() int {
	return min(b.sampleCount, b.maxLen)
}

// oldestSampleIndex is the logical index of the oldest retained sample.
func (b *SampleBuffer) oldestSampleIndex() int {
	return b.sampleCount - b.Len()
}

func (b *SampleBuffer) Channels() ChannelCount { return b.channels }
func (b *SampleBuffer) SampleRate() SampleRate { return b.sampleRate }

// A Period is a read-only view of a contiguous window of samples inside a
// SampleBuffer. It is only valid until the next Push; callers must not
// retain one across a push, because the window may be evicted.
type Period struct {
	buffer         *SampleBuffer
	startSampleNum int
	len            int
}

// Channel resolves the window onto the physical ring segments of one
// channel. The window is either entirely inside one segment or split
// across the two; either way the returned ChannelPeriod iterates the
// samples in temporal order.
func (p Period) Channel(channel int) ChannelPeriod {
	first, second := p.buffer.rings[channel].segments()

	// Locate the window relative to the ring's oldest retained sample.
	lenToBufferEnd := p.buffer.sampleCount - p.startSampleNum
	start := p.buffer.Len() - lenToBufferEnd
	if start < 0 {
		panic(fmt.Sprintf("stream: period starting at sample %d has aged out of the ring", p.startSampleNum))
	}
	end := start + p.len

	cp := ChannelPeriod{
		sampleRate:     p.buffer.sampleRate,
		startSampleNum: p.startSampleNum,
		len:            p.len,
	}
	switch {
	case end <= len(first):
		// Entirely in the first segment.
		cp.First = first[start:end]
	case start < len(first):
		// Split between the two segments.
		cp.First = first[start:]
		cp.Second = second[:end-len(first)]
	default:
		// Entirely in the second segment.
		cp.First = second[start-len(first) : end-len(first)]
	}
	return cp
}

// Channels resolves the window for every channel.
func (p Period) Channels() []ChannelPeriod {
	cps := make([]ChannelPeriod, p.buffer.channels.Int())
	for i := range cps {
		cps[i] = p.Channel(i)
	}
	return cps
}

func (p Period) Len() int                   { return p.len }
func (p Period) ChannelCount() ChannelCount { return p.buffer.channels }
func (p Period) SampleRate() SampleRate     { return p.buffer.sampleRate }

func (p Period) StartTime() Instant {
	return InstantOfSample(p.startSampleNum, p.buffer.sampleRate)
}

func (p Period) EndTime() Instant {
	return InstantOfSample(p.startSampleNum+p.len, p.buffer.sampleRate)
}

// A ChannelPeriod is the window of one channel: one or two contiguous
// ring segments. Walking First then Second reproduces the temporal order
// regardless of where the ring physically wrapped.
type ChannelPeriod struct {
	First, Second  []float32
	sampleRate     SampleRate
	startSampleNum int
	len            int
}

func (cp ChannelPeriod) Len() int               { return cp.len }
func (cp ChannelPeriod) SampleRate() SampleRate { return cp.sampleRate }

// Samples iterates the window's samples in temporal order.
func (cp ChannelPeriod) Samples() iter.Seq[float32] {
	return func(yield func(float32) bool) {
		for _, s := range cp.First {
			if !yield(s) {
				return
			}
		}
		for _, s := range cp.Second {
			if !yield(s) {
				return
			}
		}
	}
}

// Timeseries iterates (time, sample) pairs in temporal order.
func (cp ChannelPeriod) Timeseries() iter.Seq2[Instant, float32] {
	return func(yield func(Instant, float32) bool) {
		i := cp.startSampleNum
		for s := range cp.Samples() {
			if !yield(InstantOfSample(i, cp.sampleRate), s) {
				return
			}
			i++
		}
	}
}
