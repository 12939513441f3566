// SPDX-License-Identifier: MIT
package dsp

// LTI implements a linear constant-coefficient difference equation, which
// can represent any linear, time-invariant discrete system. It is a
// per-sample Step producing exactly one output per input.
type LTI struct {
	feedback    []float32 // often denoted a[n]; a[0] must be 1.0
	feedforward []float32 // often denoted b[n]
	inputs      []float32 // index 0 is most recent
	outputs     []float32 // index 0 is most recent
}

func NewLTI(feedback, feedforward []float32) *LTI {
	if len(feedback) == 0 || feedback[0] != 1.0 {
		panic("dsp: LTI feedback coefficient a[0] must be 1.0")
	}
	if len(feedforward) == 0 {
		panic("dsp: LTI requires at least one feedforward coefficient")
	}
	return &LTI{
		feedback:    feedback,
		feedforward: feedforward,
		inputs:      make([]float32, len(feedforward)),
		outputs:     make([]float32, len(feedback)),
	}
}

// Reset clears the filter's state without touching its coefficients.
func (l *LTI) Reset() {
	clear(l.inputs)
	clear(l.outputs)
}

// Process implements Step[float32, float32].
func (l *LTI) Process(in float32) []float32 {
	// Shift the input history and multiply with the feedforward
	// coefficients.
	copy(l.inputs[1:], l.inputs)
	l.inputs[0] = in
	var out float32
	for i, b := range l.feedforward {
		out += b * l.inputs[i]
	}

	// Shift the output history. The new slot starts at zero (the
	// feedforward result is carried in out instead), so a[0] is skipped.
	copy(l.outputs[1:], l.outputs)
	l.outputs[0] = 0
	for i := 1; i < len(l.feedback); i++ {
		out -= l.feedback[i] * l.outputs[i]
	}
	l.outputs[0] = out
	return []float32{out}
}
