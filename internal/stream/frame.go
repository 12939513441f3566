// SPDX-License-Identifier: MIT

/*
Package stream implements the real-time half of the analyzer: typed units,
interleaved sample frames, the per-channel ring buffer that re-cuts device
sized batches into fixed analysis windows, and the generic step/pipeline
plumbing that connects inputs to outputs.

Thread model: a SampleBuffer (and the PeriodBuffer wrapping it) has exactly
one owner goroutine. All cross-goroutine handoff happens by passing Frames
and messages over bounded channels, never by sharing buffers.
*/
package stream

import "errors"

// A Frame is one batch of interleaved multi-channel samples, as delivered
// by a capture callback or submitted to a playback device.
type Frame struct {
	Channels   ChannelCount
	SampleRate SampleRate
	Samples    []float32
}

// FrameLen returns the number of samples per channel in the frame.
func (f *Frame) FrameLen() int {
	return len(f.Samples) / f.Channels.Int()
}

// Sentinel errors for the input/output boundary.
var (
	// ErrDeviceClosed reports that the device driver terminated the
	// stream. Fatal to the owning executor; never retried.
	ErrDeviceClosed = errors.New("stream: device closed")

	// ErrStreamEnded reports that a finite input source is exhausted.
	// This is a normal termination, not a failure.
	ErrStreamEnded = errors.New("stream: input ended")
)

// Input is a source of Frames. Next blocks until a frame is available;
// TryNext returns (nil, nil) when none is queued.
type Input interface {
	Next() (*Frame, error)
	TryNext() (*Frame, error)
}

// Output is a sink of Frames. Push may block for backpressure; it is only
// ever driven by a processing goroutine, never by a device callback.
type Output interface {
	Push(*Frame) error
}
