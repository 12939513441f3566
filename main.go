// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectro/cmd"
	"spectro/internal/config"
	"spectro/internal/device"
	"spectro/internal/dsp"
	"spectro/internal/engine"
	"spectro/internal/log"
	"spectro/internal/source"
	"spectro/internal/stream"
	"spectro/internal/synth"
	"spectro/internal/transport"
	"spectro/internal/wavsink"
)

func main() {
	if err := run(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := cmd.ParseArgs()
	if err != nil {
		return err
	}
	if opts.Config == nil {
		return nil // help or completion output
	}
	if level, ok := log.ParseLevel(opts.Config.LogLevel); ok {
		log.SetLevel(level)
	}

	if err := device.Initialize(); err != nil {
		return err
	}
	defer device.Terminate()

	switch opts.Command {
	case "list":
		return device.ListDevices()
	case "play":
		return runPlay(opts)
	default:
		return runAnalyzer(opts.Config)
	}
}

// runAnalyzer captures from an input device and streams loudness and
// spectrum measurements to consumers until interrupted.
func runAnalyzer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink engine.FrameSink
	if cfg.Capture.Enabled {
		w, err := wavsink.Create(
			cfg.Capture.File,
			stream.NewChannelCount(cfg.Audio.Channels),
			stream.NewSampleRate(cfg.Audio.SampleRate),
			cfg.FlushEvery(),
		)
		if err != nil {
			return err
		}
		defer w.Close()
		sink = w
	}

	input, err := device.OpenInput(device.InputConfig{
		DeviceID:        cfg.Audio.DeviceID,
		Channels:        stream.NewChannelCount(cfg.Audio.Channels),
		SampleRate:      stream.NewSampleRate(cfg.Audio.SampleRate),
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
		QueueCap:        cfg.Audio.QueueCap,
	})
	if err != nil {
		return err
	}

	msgs := make(chan engine.Message, cfg.Analysis.QueueCap)
	done := engine.New(msgs, cfg.Engine(), sink).Start(ctx, input)

	consumerDone := make(chan struct{})
	if cfg.Transport.WebSocketEnabled {
		t := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr, cfg.Transport.QueueCap)
		defer t.Close()
		go func() {
			defer close(consumerDone)
			transport.Publish(t, msgs)
		}()
	} else {
		go func() {
			defer close(consumerDone)
			logMessages(msgs)
		}()
	}

	log.Infof("analyzing %d channel(s) at %d Hz, ctrl-c to stop",
		cfg.Audio.Channels, cfg.Audio.SampleRate)

	select {
	case <-ctx.Done():
		log.Infof("shutdown requested")
		input.Close()
		<-done
	case <-done:
		input.Close()
	}
	<-consumerDone
	return nil
}

// logMessages is the fallback consumer when no transport is configured.
func logMessages(msgs <-chan engine.Message) {
	for m := range msgs {
		switch v := m.(type) {
		case engine.RMSLevels:
			log.Debugf("t=%.3fs rms=%v", v.Time.Seconds(), v.Values)
		case engine.FFTResult:
			log.Debugf("t=%.3fs fft width=%d", v.EndTime.Seconds(), v.Width)
		case engine.StreamClosed:
			log.Infof("stream closed")
		}
	}
}

// runPlay feeds an audio file, or a synthesized tone, through a gain
// stage to an output device.
func runPlay(opts *cmd.Options) error {
	cfg := opts.Config

	var (
		input    stream.Input
		channels stream.ChannelCount
		rate     stream.SampleRate
	)
	if opts.PlayFile != "" {
		frameLen := cfg.Audio.FramesPerBuffer * cfg.Audio.Channels
		in, err := source.Open(opts.PlayFile, frameLen)
		if err != nil {
			return err
		}
		defer in.Close()
		input, channels, rate = in, in.Channels(), in.SampleRate()
	} else {
		channels = stream.NewChannelCount(1)
		rate = stream.NewSampleRate(cfg.Audio.SampleRate)
		tone := synth.NewSinIterator(rate, opts.SynthFreq, 0)
		n := int(opts.SynthSecs * rate.Float())
		input = synth.NewIteratorInput(&synth.Take{Iter: tone, N: n}, rate, cfg.Audio.FramesPerBuffer)
		log.Infof("playing %.0f Hz tone for %.1fs", opts.SynthFreq, opts.SynthSecs)
	}

	out, err := device.OpenOutput(device.OutputConfig{
		DeviceID:        cfg.Audio.DeviceID,
		Channels:        channels,
		SampleRate:      rate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
		QueueCap:        cfg.Audio.QueueCap,
	})
	if err != nil {
		return err
	}
	defer out.Close()

	var step stream.Step[*stream.Frame, *stream.Frame] = stream.Identity[*stream.Frame]{}
	if opts.GainDB != 0 {
		step = stream.SampleStep{Inner: synth.NewGain(dsp.Decibels(opts.GainDB))}
	}

	err = stream.NewPipeline(input, step, out).Run()
	var src *stream.SourceError
	if errors.As(err, &src) && errors.Is(src.Err, stream.ErrStreamEnded) {
		// Queued frames are still draining to the hardware; worst case
		// the queue is full.
		queued := time.Duration(float64(cfg.Audio.QueueCap*cfg.Audio.FramesPerBuffer)/rate.Float()*float64(time.Second)) +
			500*time.Millisecond
		time.Sleep(queued)
		return nil
	}
	if err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}
