// SPDX-License-Identifier: MIT
package engine

import (
	"spectro/internal/dsp"
	"spectro/internal/stream"
)

// Message is a result published to the consumer. Messages are immutable
// snapshots; they never alias ring-buffer memory.
type Message interface {
	isMessage()
}

// RMSLevels is a per-channel loudness measurement over one period.
type RMSLevels struct {
	// Time is the start of the measurement period.
	Time stream.Instant `json:"time"`
	// Values holds linear full-scale RMS per channel.
	Values []float64 `json:"values"`
}

// FFTResult is a folded spectrum per channel over one period.
type FFTResult struct {
	EndTime    stream.Instant    `json:"end_time"`
	Width      int               `json:"width"`
	SampleRate stream.SampleRate `json:"sample_rate"`
	FFTs       []dsp.FoldedFFT   `json:"ffts"`
}

// StreamClosed is the terminal message: the input device closed or the
// synthetic source was exhausted. Nothing follows it.
type StreamClosed struct{}

func (RMSLevels) isMessage()    {}
func (FFTResult) isMessage()    {}
func (StreamClosed) isMessage() {}
