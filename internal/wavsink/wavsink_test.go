// SPDX-License-Identifier: MIT
package wavsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"spectro/internal/stream"
)

func testFrame(samples ...float32) *stream.Frame {
	return &stream.Frame{
		Channels:   stream.NewChannelCount(2),
		SampleRate: stream.NewSampleRate(8000),
		Samples:    samples,
	}
}

func TestWriterProducesValidWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	w, err := Create(path, stream.NewChannelCount(2), stream.NewSampleRate(8000), 8000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := w.Push(testFrame(0.1, -0.1, 0.2, -0.2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := w.Push(testFrame(0.3, -0.3)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatalf("written file is not a valid WAV")
	}
	d.ReadInfo()
	if d.NumChans != 2 {
		t.Errorf("NumChans = %d, want 2", d.NumChans)
	}
	if d.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", d.SampleRate)
	}
	if d.WavAudioFormat != ieeeFloat {
		t.Errorf("WavAudioFormat = %d, want %d (IEEE float)", d.WavAudioFormat, ieeeFloat)
	}
	if d.BitDepth != 32 {
		t.Errorf("BitDepth = %d, want 32", d.BitDepth)
	}
}

func TestWriterSyncsPeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	// flushEvery of 2 samples: the second push crosses the threshold.
	w, err := Create(path, stream.NewChannelCount(2), stream.NewSampleRate(8000), 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	if err := w.Push(testFrame(0.1, 0.2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := w.Push(testFrame(0.3, 0.4)); err != nil {
		t.Fatalf("Push after sync threshold: %v", err)
	}

	// The synced file already holds sample data, header finalization
	// notwithstanding.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("file empty after sync threshold crossed")
	}
}

func TestWriterMismatchPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	w, err := Create(path, stream.NewChannelCount(1), stream.NewSampleRate(8000), 8000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic pushing a stereo frame into a mono file")
		}
	}()
	w.Push(testFrame(0.1, 0.2))
}
