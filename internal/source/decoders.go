// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"spectro/internal/stream"
)

// pcmDecoder is the shared shape of the go-audio WAV and AIFF decoders:
// integer PCM read buffer by buffer, scaled to full-scale float here.
type pcmDecoder struct {
	channels   stream.ChannelCount
	sampleRate stream.SampleRate
	scale      float32
	buf        *audio.IntBuffer
	read       func(*audio.IntBuffer) (int, error)
}

func (d *pcmDecoder) Channels() stream.ChannelCount { return d.channels }
func (d *pcmDecoder) SampleRate() stream.SampleRate { return d.sampleRate }

func (d *pcmDecoder) Read(dst []float32) (int, error) {
	if cap(d.buf.Data) < len(dst) {
		d.buf.Data = make([]int, len(dst))
	}
	d.buf.Data = d.buf.Data[:len(dst)]

	n, err := d.read(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i, v := range d.buf.Data[:n] {
		dst[i] = float32(v) * d.scale
	}
	return n, nil
}

func newWavDecoder(r io.ReadSeeker) (Decoder, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a decodable WAV file")
	}
	d.ReadInfo()
	format := d.Format()
	if format == nil {
		return nil, fmt.Errorf("unsupported WAV layout")
	}
	return &pcmDecoder{
		channels:   stream.NewChannelCount(format.NumChannels),
		sampleRate: stream.NewSampleRate(format.SampleRate),
		scale:      1 / float32(int64(1)<<(d.BitDepth-1)),
		buf:        &audio.IntBuffer{Format: format},
		read:       d.PCMBuffer,
	}, nil
}

func newAiffDecoder(r io.ReadSeeker) (Decoder, error) {
	d := aiff.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a decodable AIFF file")
	}
	d.ReadInfo()
	format := d.Format()
	if format == nil {
		return nil, fmt.Errorf("unsupported AIFF layout")
	}
	return &pcmDecoder{
		channels:   stream.NewChannelCount(format.NumChannels),
		sampleRate: stream.NewSampleRate(format.SampleRate),
		scale:      1 / float32(int64(1)<<(d.BitDepth-1)),
		buf:        &audio.IntBuffer{Format: format},
		read:       d.PCMBuffer,
	}, nil
}

// mp3Decoder adapts go-mp3, which always produces 16-bit little-endian
// stereo PCM bytes.
type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(r io.Reader) (Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Channels() stream.ChannelCount { return stream.NewChannelCount(2) }
func (d *mp3Decoder) SampleRate() stream.SampleRate { return stream.NewSampleRate(d.dec.SampleRate()) }

func (d *mp3Decoder) Read(dst []float32) (int, error) {
	raw := make([]byte, len(dst)*2)
	n, err := io.ReadFull(d.dec, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, err
	}
	n -= n % 2 // a torn trailing byte cannot form a sample
	for i := 0; i < n; i += 2 {
		dst[i/2] = float32(int16(uint16(raw[i])|uint16(raw[i+1])<<8)) / 32768
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n / 2, nil
}

// vorbisDecoder adapts oggvorbis, which conveniently yields interleaved
// float32 directly.
type vorbisDecoder struct {
	r *oggvorbis.Reader
}

func newVorbisDecoder(r io.Reader) (Decoder, error) {
	or, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &vorbisDecoder{r: or}, nil
}

func (d *vorbisDecoder) Channels() stream.ChannelCount { return stream.NewChannelCount(d.r.Channels()) }
func (d *vorbisDecoder) SampleRate() stream.SampleRate { return stream.NewSampleRate(d.r.SampleRate()) }

func (d *vorbisDecoder) Read(dst []float32) (int, error) {
	return d.r.Read(dst)
}
