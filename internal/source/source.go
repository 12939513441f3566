// SPDX-License-Identifier: MIT

// Package source turns audio files into frame streams, so recorded
// material can be fed through the same pipelines as live capture. WAV,
// AIFF, MP3 and Ogg Vorbis are supported.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spectro/internal/stream"
)

// A Decoder yields interleaved float32 samples from some encoded form.
type Decoder interface {
	Channels() stream.ChannelCount
	SampleRate() stream.SampleRate
	// Read fills dst with up to len(dst) interleaved samples and returns
	// the count. io.EOF reports a fully drained file.
	Read(dst []float32) (int, error)
}

// A FileInput reads a file through a format decoder and hands out frames.
// Like any finite source, exhaustion is ErrStreamEnded, not a failure.
type FileInput struct {
	dec      Decoder
	closer   io.Closer
	frameLen int
}

// Open picks a decoder from the file extension. frameLen is the number
// of interleaved samples per emitted frame.
func Open(path string, frameLen int) (*FileInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	var dec Decoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		dec, err = newWavDecoder(f)
	case ".aif", ".aiff":
		dec, err = newAiffDecoder(f)
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".ogg", ".oga":
		dec, err = newVorbisDecoder(f)
	default:
		err = fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}

	return &FileInput{dec: dec, closer: f, frameLen: frameLen}, nil
}

func (in *FileInput) Channels() stream.ChannelCount { return in.dec.Channels() }
func (in *FileInput) SampleRate() stream.SampleRate { return in.dec.SampleRate() }

// Next implements stream.Input. A trailing partial frame is emitted
// as-is; the read after it reports the end.
func (in *FileInput) Next() (*stream.Frame, error) {
	samples := make([]float32, in.frameLen)
	n, err := in.dec.Read(samples)
	if n == 0 {
		if err == nil || err == io.EOF {
			return nil, stream.ErrStreamEnded
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	return &stream.Frame{
		Channels:   in.dec.Channels(),
		SampleRate: in.dec.SampleRate(),
		Samples:    samples[:n],
	}, nil
}

// TryNext implements stream.Input. File reads are always "available".
func (in *FileInput) TryNext() (*stream.Frame, error) {
	f, err := in.Next()
	if err == stream.ErrStreamEnded {
		return nil, nil
	}
	return f, err
}

var _ stream.Input = (*FileInput)(nil)

func (in *FileInput) Close() error {
	return in.closer.Close()
}
