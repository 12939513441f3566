// SPDX-License-Identifier: MIT
package stream

import "fmt"

// A PeriodBuffer turns a push-stream of Frames into a pull-stream of
// fixed-length Periods. Each period is periodLen samples long and starts
// periodStride samples after the previous one; a stride smaller than the
// length yields overlapping periods (denser spectrograms, smoother level
// meters), a stride equal to the length tiles the signal exactly.
type PeriodBuffer struct {
	buffer        *SampleBuffer
	periodLen     int
	periodStride  int
	nextPeriodEnd int
}

func NewPeriodBuffer(buffer *SampleBuffer, periodLen, periodStride int) *PeriodBuffer {
	if buffer.sampleCount > buffer.maxLen {
		panic("stream: period buffer requires the first sample to still be retained")
	}
	if periodLen > buffer.maxLen {
		panic(fmt.Sprintf("stream: period length %d exceeds ring capacity %d", periodLen, buffer.maxLen))
	}
	return &PeriodBuffer{
		buffer:        buffer,
		periodLen:     periodLen,
		periodStride:  periodStride,
		nextPeriodEnd: periodLen,
	}
}

// Push appends a frame to the underlying SampleBuffer. If the start of the
// next pending period has been evicted from the retention window, the
// consumer is not draining periods fast enough for the configured ring
// size; that is a sizing bug, so fail fast rather than silently skipping.
func (p *PeriodBuffer) Push(f *Frame) {
	p.buffer.Push(f)
	nextPeriodStart := p.nextPeriodEnd - p.periodLen
	if nextPeriodStart < p.buffer.oldestSampleIndex() {
		panic(fmt.Sprintf("stream: period starting at sample %d already evicted (oldest retained is %d)",
			nextPeriodStart, p.buffer.oldestSampleIndex()))
	}
}

// HasNext reports whether a full period is available.
func (p *PeriodBuffer) HasNext() bool {
	return p.nextPeriodEnd <= p.buffer.sampleCount
}

// Next returns the next available period and advances by the stride.
// It returns false when insufficient samples have arrived; the returned
// Period is only valid until the next Push.
func (p *PeriodBuffer) Next() (Period, bool) {
	if !p.HasNext() {
		return Period{}, false
	}
	period := Period{
		buffer:         p.buffer,
		startSampleNum: p.nextPeriodEnd - p.periodLen,
		len:            p.periodLen,
	}
	p.nextPeriodEnd += p.periodStride
	return period, true
}

// A FrameAccumulator is a Step that collects individual interleaved
// samples into Frames. It emits nothing until a frame's worth of samples
// has arrived, then emits exactly one Frame.
type FrameAccumulator struct {
	channels   ChannelCount
	sampleRate SampleRate
	frameLen   int
	samples    []float32
}

// DefaultFrameLen is smallish so tests can use small buffers; for real
// inputs the frame length rarely matters.
const DefaultFrameLen = 16

func NewFrameAccumulator(channels ChannelCount, sampleRate SampleRate, frameLen int) *FrameAccumulator {
	if frameLen%channels.Int() != 0 {
		panic(fmt.Sprintf("stream: frame length %d does not interleave over %d channels", frameLen, channels))
	}
	return &FrameAccumulator{
		channels:   channels,
		sampleRate: sampleRate,
		frameLen:   frameLen,
		samples:    make([]float32, 0, frameLen),
	}
}

// Process implements Step[float32, *Frame].
func (a *FrameAccumulator) Process(s float32) []*Frame {
	a.samples = append(a.samples, s)
	if len(a.samples) < a.frameLen {
		return nil
	}
	f := &Frame{
		Channels:   a.channels,
		SampleRate: a.sampleRate,
		Samples:    a.samples,
	}
	a.samples = make([]float32, 0, a.frameLen)
	return []*Frame{f}
}
