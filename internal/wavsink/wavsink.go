// SPDX-License-Identifier: MIT

// Package wavsink appends every frame an executor sees to a float32 PCM
// WAV file, for ad-hoc listening and debugging of capture sessions.
package wavsink

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"spectro/internal/stream"
)

// ieeeFloat is the WAV audio format tag for 32-bit float samples.
const ieeeFloat = 3

// A Writer encodes interleaved float32 frames into a WAV file. The file
// is synced periodically so the sample data survives a crash; the header
// sizes are finalized by Close.
type Writer struct {
	channels   stream.ChannelCount
	sampleRate stream.SampleRate
	file       *os.File
	enc        *wav.Encoder

	unflushed  int
	flushEvery int // samples between syncs
}

// Create opens path for writing. flushEvery is the number of interleaved
// samples written between syncs; one second's worth is a sensible value.
func Create(path string, channels stream.ChannelCount, sampleRate stream.SampleRate, flushEvery int) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavsink: %w", err)
	}
	return &Writer{
		channels:   channels,
		sampleRate: sampleRate,
		file:       file,
		enc:        wav.NewEncoder(file, sampleRate.Int(), 32, channels.Int(), ieeeFloat),
		flushEvery: flushEvery,
	}, nil
}

// Push appends a frame's samples. A channel or rate mismatch is a wiring
// error and panics, like pushing into a mismatched SampleBuffer.
func (w *Writer) Push(f *stream.Frame) error {
	if f.Channels != w.channels || f.SampleRate != w.sampleRate {
		panic(fmt.Sprintf("wavsink: frame is %dch@%dHz, file is %dch@%dHz",
			f.Channels, f.SampleRate, w.channels, w.sampleRate))
	}

	for _, s := range f.Samples {
		if err := w.enc.WriteFrame(s); err != nil {
			return fmt.Errorf("wavsink: %w", err)
		}
	}

	w.unflushed += len(f.Samples)
	if w.unflushed > w.flushEvery {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("wavsink: %w", err)
		}
		w.unflushed = 0
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("wavsink: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	return nil
}
