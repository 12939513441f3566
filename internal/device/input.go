// SPDX-License-Identifier: MIT
package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"spectro/internal/log"
	"spectro/internal/stream"
)

// InputConfig describes how to open a capture stream.
type InputConfig struct {
	DeviceID        int
	Channels        stream.ChannelCount
	SampleRate      stream.SampleRate
	FramesPerBuffer int
	LowLatency      bool

	// QueueCap bounds the frame queue between the capture callback and
	// the consumer. Short queues only add latency; they must never
	// silently buffer an unbounded backlog.
	QueueCap int
}

// An InputDevice opens a capture stream and receives sample batches on a
// thread owned by PortAudio, forwarding them to consuming goroutines over
// a bounded channel.
type InputDevice struct {
	channels   stream.ChannelCount
	sampleRate stream.SampleRate
	frames     chan *stream.Frame
	stream     *portaudio.Stream
}

// OpenInput opens and starts a capture stream. Device unavailability and
// channel-count negotiation failures are unrecoverable open-time errors.
func OpenInput(cfg InputConfig) (*InputDevice, error) {
	info, err := inputInfo(cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	if info.MaxInputChannels < cfg.Channels.Int() {
		return nil, fmt.Errorf("device %q supports %d input channels, need %d",
			info.Name, info.MaxInputChannels, cfg.Channels.Int())
	}

	latency := info.DefaultHighInputLatency
	if cfg.LowLatency {
		latency = info.DefaultLowInputLatency
	}

	d := &InputDevice{
		channels:   cfg.Channels,
		sampleRate: cfg.SampleRate,
		frames:     make(chan *stream.Frame, cfg.QueueCap),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: cfg.Channels.Int(),
			Latency:  latency,
		},
		SampleRate:      cfg.SampleRate.Float(),
		FramesPerBuffer: cfg.FramesPerBuffer,
	}
	s, err := portaudio.OpenStream(params, d.capture)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	d.stream = s
	if err := s.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	return d, nil
}

// capture runs on PortAudio's callback thread and must never block. The
// channel is only closed by Close after the stream has been stopped, so
// the callback can never race a closed channel.
func (d *InputDevice) capture(in []float32) {
	samples := make([]float32, len(in))
	copy(samples, in)
	enqueueFrame(d.frames, &stream.Frame{
		Channels:   d.channels,
		SampleRate: d.sampleRate,
		Samples:    samples,
	})
}

// enqueueFrame performs the non-blocking handoff from the capture
// callback. On a full queue the frame is dropped: losing data here is
// acceptable, blocking the hardware thread is not.
func enqueueFrame(frames chan<- *stream.Frame, f *stream.Frame) bool {
	select {
	case frames <- f:
		return true
	default:
		log.Warnf("device: input queue full, dropped %d samples", len(f.Samples))
		return false
	}
}

// Next implements stream.Input, blocking until a frame arrives.
func (d *InputDevice) Next() (*stream.Frame, error) {
	f, ok := <-d.frames
	if !ok {
		return nil, stream.ErrDeviceClosed
	}
	return f, nil
}

// TryNext implements stream.Input without blocking.
func (d *InputDevice) TryNext() (*stream.Frame, error) {
	select {
	case f, ok := <-d.frames:
		if !ok {
			return nil, stream.ErrDeviceClosed
		}
		return f, nil
	default:
		return nil, nil
	}
}

var _ stream.Input = (*InputDevice)(nil)

// Close stops the capture stream, then closes the frame queue. Consumers
// blocked in Next observe ErrDeviceClosed.
func (d *InputDevice) Close() error {
	var firstErr error
	if d.stream != nil {
		if err := d.stream.Stop(); err != nil {
			firstErr = err
		}
		if err := d.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.stream = nil
		close(d.frames)
	}
	return firstErr
}
