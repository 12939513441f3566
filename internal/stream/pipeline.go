// SPDX-License-Identifier: MIT
package stream

// A Step transforms one input into an ordered, finite sequence of zero or
// more outputs. A frame accumulator, for example, returns nothing on most
// calls and one completed Frame once enough samples have arrived.
type Step[In, Out any] interface {
	Process(In) []Out
}

// Identity is a Step that outputs its input. Which is "useful" if you want
// a Pipeline that just copies its input to its output.
type Identity[T any] struct{}

func (Identity[T]) Process(v T) []T { return []T{v} }

// Chain composes two steps: each intermediate value produced by First is
// fed through Second, and the chain yields the concatenation of Second's
// outputs in order.
type Chain[In, Mid, Out any] struct {
	First  Step[In, Mid]
	Second Step[Mid, Out]
}

func NewChain[In, Mid, Out any](first Step[In, Mid], second Step[Mid, Out]) Chain[In, Mid, Out] {
	return Chain[In, Mid, Out]{First: first, Second: second}
}

func (c Chain[In, Mid, Out]) Process(v In) []Out {
	var outs []Out
	for _, mid := range c.First.Process(v) {
		outs = append(outs, c.Second.Process(mid)...)
	}
	return outs
}

// SourceError and SinkError tag a pipeline failure with the side it came
// from, so a caller can tell an exhausted input apart from a dead output.
type SourceError struct{ Err error }

func (e *SourceError) Error() string { return "pipeline source: " + e.Err.Error() }
func (e *SourceError) Unwrap() error { return e.Err }

type SinkError struct{ Err error }

func (e *SinkError) Error() string { return "pipeline sink: " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

// A Pipeline wires an input source, a processing step, and an output sink.
// The step is typically a Chain.
type Pipeline struct {
	input  Input
	step   Step[*Frame, *Frame]
	output Output
}

func NewPipeline(input Input, step Step[*Frame, *Frame], output Output) *Pipeline {
	return &Pipeline{input: input, step: step, output: output}
}

// ProcessOnce reads exactly one frame from the source, runs it through the
// step, and pushes every yielded output to the sink in order. Outputs
// already pushed before a sink failure stay pushed; delivery is at most
// once per output, not transactional.
func (p *Pipeline) ProcessOnce() error {
	frame, err := p.input.Next()
	if err != nil {
		return &SourceError{Err: err}
	}
	for _, out := range p.step.Process(frame) {
		if err := p.output.Push(out); err != nil {
			return &SinkError{Err: err}
		}
	}
	return nil
}

// Run calls ProcessOnce until the source or sink fails, returning the
// tagged error that stopped it.
func (p *Pipeline) Run() error {
	for {
		if err := p.ProcessOnce(); err != nil {
			return err
		}
	}
}

// SampleStep lifts a per-sample step to frame level, applying it to every
// interleaved sample. The inner step must yield exactly one output per
// input (gain, filters); anything else would desync the channels.
type SampleStep struct {
	Inner Step[float32, float32]
}

func (s SampleStep) Process(f *Frame) []*Frame {
	out := &Frame{
		Channels:   f.Channels,
		SampleRate: f.SampleRate,
		Samples:    make([]float32, len(f.Samples)),
	}
	for i, v := range f.Samples {
		vs := s.Inner.Process(v)
		if len(vs) != 1 {
			panic("stream: sample step must produce exactly one output per sample")
		}
		out.Samples[i] = vs[0]
	}
	return []*Frame{out}
}
