// SPDX-License-Identifier: MIT

/*
Package engine runs the per-stream processing loop: wait for frames from
the input, re-buffer them into analysis windows, measure each window, and
publish the results to the consumer.

One Executor owns its SampleBuffer/PeriodBuffer exclusively, so the hot
path needs no locks: the only shared state with other goroutines is the
bounded frame and message channels.
*/
package engine

import (
	"context"
	"errors"

	"spectro/internal/dsp"
	"spectro/internal/log"
	"spectro/internal/stream"
)

// DefaultQueueCap bounds the channels passing audio data between
// goroutines. This shouldn't be large: if a consumer isn't keeping up,
// long queues just add latency to the situation.
const DefaultQueueCap = 16

// FrameSink receives a copy of every raw frame, e.g. a WAV debug writer.
type FrameSink interface {
	Push(*stream.Frame) error
}

// Config sizes an Executor. All tunables are explicit; there are no
// process-wide knobs.
type Config struct {
	Channels   stream.ChannelCount
	SampleRate stream.SampleRate

	// WindowLen/WindowStride size the analysis periods, in samples. A
	// stride smaller than the length yields overlapping windows.
	WindowLen    int
	WindowStride int

	// RetentionLen is the ring capacity per channel, in samples. It must
	// comfortably exceed WindowLen or the retention check in the period
	// buffer will fire under bursty input.
	RetentionLen int
}

// An Executor drives one audio stream: it owns the sample/period buffers
// and the FFT plan, mirrors raw frames into an optional sink, and sends
// result messages to the consumer channel.
type Executor struct {
	periods *stream.PeriodBuffer
	fft     *dsp.FFT
	sink    FrameSink // may be nil
	out     chan<- Message
}

// New creates an executor publishing to out. The channel should be
// bounded (DefaultQueueCap is a sensible capacity); the executor closes
// it when the stream terminates. sink may be nil to disable the frame
// mirror.
func New(out chan<- Message, cfg Config, sink FrameSink) *Executor {
	return &Executor{
		periods: stream.NewPeriodBuffer(
			stream.NewSampleBuffer(cfg.Channels, cfg.SampleRate, cfg.RetentionLen),
			cfg.WindowLen,
			cfg.WindowStride,
		),
		fft:  dsp.NewFFT(cfg.WindowLen),
		sink: sink,
		out:  out,
	}
}

// process handles a single frame: mirror it, buffer it, and measure every
// newly completed period. Periods are drained before the next frame
// arrives, so the retention invariant holds as long as RetentionLen
// exceeds WindowLen plus the largest frame.
func (e *Executor) process(f *stream.Frame) []Message {
	var msgs []Message
	if e.sink != nil {
		if err := e.sink.Push(f); err != nil {
			log.Errorf("engine: frame sink write failed: %v", err)
		}
	}
	e.periods.Push(f)
	for {
		p, ok := e.periods.Next()
		if !ok {
			return msgs
		}
		values := make([]float64, 0, p.ChannelCount().Int())
		for _, cp := range p.Channels() {
			values = append(values, dsp.RMS(cp))
		}
		msgs = append(msgs,
			RMSLevels{Time: p.StartTime(), Values: values},
			FFTResult{
				EndTime:    p.EndTime(),
				Width:      p.Len(),
				SampleRate: p.SampleRate(),
				FFTs:       e.fft.Transform(p),
			},
		)
	}
}

// Run is the stream's main loop. It blocks reading frames and blocks
// sending messages; ctx cancellation stands in for "the consumer has gone
// away", after which no further work is useful. On input termination a
// final StreamClosed is sent. The consumer channel is closed on exit.
// Once Run returns the executor is terminal; resuming a stream means
// building a new one.
func (e *Executor) Run(ctx context.Context, input stream.Input) {
	defer close(e.out)
	for {
		f, err := input.Next()
		if err != nil {
			if errors.Is(err, stream.ErrStreamEnded) {
				log.Infof("engine: executor exit: input exhausted")
			} else {
				log.Infof("engine: executor exit: %v", err)
			}
			e.send(ctx, StreamClosed{})
			return
		}
		for _, m := range e.process(f) {
			if !e.send(ctx, m) {
				log.Infof("engine: executor exit: consumer closed")
				return
			}
		}
	}
}

// Start runs the executor on its own goroutine and returns a channel
// closed when it terminates.
func (e *Executor) Start(ctx context.Context, input stream.Input) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx, input)
	}()
	return done
}

func (e *Executor) send(ctx context.Context, m Message) bool {
	select {
	case e.out <- m:
		return true
	case <-ctx.Done():
		return false
	}
}
