// SPDX-License-Identifier: MIT
package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"spectro/internal/log"
	"spectro/internal/stream"
)

// ErrEndOfStream reports that the frame queue was closed: no more data
// will ever arrive. It is distinct from an underfull read, which just
// means no frame was queued right now.
var ErrEndOfStream = errors.New("device: end of stream")

// OutputConfig describes how to open a playback stream.
type OutputConfig struct {
	DeviceID        int
	Channels        stream.ChannelCount
	SampleRate      stream.SampleRate
	FramesPerBuffer int
	LowLatency      bool

	// QueueCap bounds the frames waiting to be played. Producers usually
	// run faster than the hardware; this limit is what applies
	// backpressure, and raising it only adds memory use and latency.
	QueueCap int
}

// An OutputDevice accepts Frames from a processing goroutine via a
// blocking bounded send and feeds them to PortAudio's pull-style playback
// callback.
type OutputDevice struct {
	frames chan *stream.Frame
	recv   *FrameReceiver
	stream *portaudio.Stream

	closeOnce sync.Once
	done      chan struct{}
}

// OpenOutput opens and starts a playback stream.
func OpenOutput(cfg OutputConfig) (*OutputDevice, error) {
	info, err := outputInfo(cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	if info.MaxOutputChannels < cfg.Channels.Int() {
		return nil, fmt.Errorf("device %q supports %d output channels, need %d",
			info.Name, info.MaxOutputChannels, cfg.Channels.Int())
	}

	latency := info.DefaultHighOutputLatency
	if cfg.LowLatency {
		latency = info.DefaultLowOutputLatency
	}

	frames := make(chan *stream.Frame, cfg.QueueCap)
	done := make(chan struct{})
	d := &OutputDevice{
		frames: frames,
		recv:   NewFrameReceiver(cfg.Channels, cfg.SampleRate, frames, done),
		done:   done,
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: cfg.Channels.Int(),
			Latency:  latency,
		},
		SampleRate:      cfg.SampleRate.Float(),
		FramesPerBuffer: cfg.FramesPerBuffer,
	}
	s, err := portaudio.OpenStream(params, d.playback)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	d.stream = s
	if err := s.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}
	return d, nil
}

// playback runs on PortAudio's callback thread. It only copies
// already-queued data; a shortfall is filled with silence and logged, the
// stream keeps running.
func (d *OutputDevice) playback(out []float32) {
	n, err := d.recv.FillBuffer(out)
	if err != nil {
		clear(out)
		log.Debugf("device: playback at end of stream")
		return
	}
	if n < len(out) {
		clear(out[n:])
		if n == 0 {
			log.Warnf("device: playback starved, emitted %d samples of silence", len(out))
		} else {
			log.Warnf("device: playback underfull, %d < %d samples", n, len(out))
		}
	}
}

// Push implements stream.Output with a blocking bounded send.
// Backpressure is fine here: Push is driven by the processing goroutine,
// never by a hardware callback. The frame queue is never closed, so a
// Push racing Close cannot hit a closed channel; it observes done and
// reports the device closed.
func (d *OutputDevice) Push(f *stream.Frame) error {
	select {
	case <-d.done:
		return stream.ErrDeviceClosed
	default:
	}
	select {
	case d.frames <- f:
		return nil
	case <-d.done:
		return stream.ErrDeviceClosed
	}
}

var _ stream.Output = (*OutputDevice)(nil)

// Close stops the playback stream and signals end-of-stream via done.
// The frame queue itself stays open: producers may still be blocked in
// Push, and closing under them would turn teardown into a send-on-closed
// panic. Queued frames are simply abandoned.
func (d *OutputDevice) Close() error {
	var firstErr error
	d.closeOnce.Do(func() {
		close(d.done)
		if d.stream != nil {
			if err := d.stream.Stop(); err != nil {
				firstErr = err
			}
			if err := d.stream.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			d.stream = nil
		}
	})
	return firstErr
}

// A FrameReceiver copies sample data out of queued Frames into the raw
// buffers the output device asks to have filled. It holds at most one
// partially consumed frame between calls.
type FrameReceiver struct {
	channels   stream.ChannelCount
	sampleRate stream.SampleRate
	frames     <-chan *stream.Frame
	done       <-chan struct{}
	cur        *stream.Frame
	curSample  int // meaningful only while cur != nil
}

// NewFrameReceiver builds a receiver over a frame queue. done signals
// end-of-stream without closing the queue; it may be nil when the queue
// itself is closed to end the stream.
func NewFrameReceiver(channels stream.ChannelCount, sampleRate stream.SampleRate, frames <-chan *stream.Frame, done <-chan struct{}) *FrameReceiver {
	return &FrameReceiver{
		channels:   channels,
		sampleRate: sampleRate,
		frames:     frames,
		done:       done,
	}
}

// FillBuffer fills dst with queued samples and returns the count actually
// written. It stops early, without error, when no further frame is
// immediately available; a closed queue is reported as ErrEndOfStream.
func (r *FrameReceiver) FillBuffer(dst []float32) (int, error) {
	satisfied := 0
	for satisfied < len(dst) {
		slice, err := r.nextSlice(len(dst) - satisfied)
		if err != nil {
			return satisfied, err
		}
		if slice == nil {
			return satisfied, nil
		}
		copy(dst[satisfied:], slice)
		satisfied += len(slice)
	}
	return satisfied, nil
}

// nextSlice returns the next contiguous run of samples, bounded by maxLen
// and the end of the current frame. It returns (nil, nil) when the next
// frame is not currently queued. Queued frames drain before the done
// signal is honored, so nothing already accepted is cut off.
func (r *FrameReceiver) nextSlice(maxLen int) ([]float32, error) {
	if r.cur != nil {
		return r.nextSliceFromCurrent(maxLen), nil
	}
	select {
	case next, ok := <-r.frames:
		if !ok {
			return nil, ErrEndOfStream
		}
		if next.Channels != r.channels || next.SampleRate != r.sampleRate {
			panic(fmt.Sprintf("device: queued frame is %dch@%dHz, receiver expects %dch@%dHz",
				next.Channels, next.SampleRate, r.channels, r.sampleRate))
		}
		r.cur = next
		r.curSample = 0
		return r.nextSliceFromCurrent(maxLen), nil
	default:
	}
	select {
	case <-r.done:
		return nil, ErrEndOfStream
	default:
		return nil, nil
	}
}

func (r *FrameReceiver) nextSliceFromCurrent(maxLen int) []float32 {
	start := r.curSample
	end := min(start+maxLen, len(r.cur.Samples))
	slice := r.cur.Samples[start:end]

	if end < len(r.cur.Samples) {
		r.curSample = end
	} else {
		r.cur = nil
	}
	return slice
}
