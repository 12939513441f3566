// SPDX-License-Identifier: MIT
package synth

import "spectro/internal/stream"

// A SampleIterator yields mono samples until exhausted.
type SampleIterator interface {
	Next() (float32, bool)
}

// IteratorInput adapts a SampleIterator into a stream.Input by
// accumulating samples into fixed-length mono Frames. Once the iterator
// is exhausted it stays exhausted; a trailing partial frame is discarded.
type IteratorInput struct {
	iter       SampleIterator
	sampleRate stream.SampleRate
	frameLen   int
}

func NewIteratorInput(iter SampleIterator, sampleRate stream.SampleRate, frameLen int) *IteratorInput {
	return &IteratorInput{
		iter:       iter,
		sampleRate: sampleRate,
		frameLen:   frameLen,
	}
}

// TryNext implements stream.Input. A synthetic source is never "empty but
// alive", so this either produces a frame or reports the end.
func (in *IteratorInput) TryNext() (*stream.Frame, error) {
	f := &stream.Frame{
		Channels:   stream.NewChannelCount(1),
		SampleRate: in.sampleRate,
		Samples:    make([]float32, 0, in.frameLen),
	}
	for range in.frameLen {
		s, ok := in.iter.Next()
		if !ok {
			return nil, nil
		}
		f.Samples = append(f.Samples, s)
	}
	return f, nil
}

// Next implements stream.Input.
func (in *IteratorInput) Next() (*stream.Frame, error) {
	f, err := in.TryNext()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, stream.ErrStreamEnded
	}
	return f, nil
}

var _ stream.Input = (*IteratorInput)(nil)

// Take caps a SampleIterator at n samples, turning an infinite generator
// into a finite input.
type Take struct {
	Iter SampleIterator
	N    int
}

func (t *Take) Next() (float32, bool) {
	if t.N <= 0 {
		return 0, false
	}
	t.N--
	return t.Iter.Next()
}

// Slice yields a fixed set of samples, mostly for tests.
type Slice struct {
	Samples []float32
	i       int
}

func (s *Slice) Next() (float32, bool) {
	if s.i >= len(s.Samples) {
		return 0, false
	}
	v := s.Samples[s.i]
	s.i++
	return v, true
}
