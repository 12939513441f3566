// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"spectro/internal/stream"
)

// Engine executes a forward complex FFT of a fixed length. It is injected
// into FFTSequence so alternate back ends can be substituted without
// touching the pipeline; the default wraps gonum's CmplxFFT.
type Engine interface {
	// Transform computes the FFT of src into dst and returns dst.
	// If dst is nil a new slice is allocated.
	Transform(dst, src []complex128) []complex128
	Len() int
}

type gonumEngine struct {
	fft *fourier.CmplxFFT
}

func (g *gonumEngine) Transform(dst, src []complex128) []complex128 {
	return g.fft.Coefficients(dst, src)
}

func (g *gonumEngine) Len() int { return g.fft.Len() }

// An FFTSequence computes forward FFTs over a sequence of equal-length
// windows. The execution plan is built once and reused for every window;
// replanning per window is the expensive part of small FFTs.
type FFTSequence struct {
	n      int
	engine Engine
	input  []complex128 // reused scratch, real parts overwritten per window
}

func NewFFTSequence(n int) *FFTSequence {
	return NewFFTSequenceWith(&gonumEngine{fft: fourier.NewCmplxFFT(n)})
}

// NewFFTSequenceWith builds a sequence around an injected engine.
func NewFFTSequenceWith(engine Engine) *FFTSequence {
	return &FFTSequence{
		n:      engine.Len(),
		engine: engine,
		input:  make([]complex128, engine.Len()),
	}
}

func (s *FFTSequence) Len() int { return s.n }

// FFT transforms one channel's window. The real samples are copied into
// the complex scratch buffer (imaginary parts zero) and the plan executed.
// The returned CartesianFFT owns its values; it does not alias the ring.
func (s *FFTSequence) FFT(cp stream.ChannelPeriod) CartesianFFT {
	if cp.Len() != s.n {
		panic(fmt.Sprintf("dsp: window of %d samples fed to %d-point FFT", cp.Len(), s.n))
	}
	i := 0
	for v := range cp.Samples() {
		s.input[i] = complex(float64(v), 0)
		i++
	}
	return CartesianFFT{
		Values:     s.engine.Transform(nil, s.input),
		SampleRate: cp.SampleRate(),
	}
}

// CartesianFFT is the raw complex transform output.
type CartesianFFT struct {
	Values     []complex128
	SampleRate stream.SampleRate
}

// ToPolar converts each bin to a magnitude/phase pair.
func (c CartesianFFT) ToPolar() PolarFFT {
	values := make([]Polar, len(c.Values))
	for i, v := range c.Values {
		r, theta := cmplx.Polar(v)
		values[i] = Polar{Magnitude: r, Phase: theta}
	}
	return PolarFFT{Values: values, SampleRate: c.SampleRate}
}

// Polar is a single spectral bin in magnitude/phase form.
type Polar struct {
	Magnitude float64 `json:"magnitude"`
	Phase     float64 `json:"phase"`
}

// PolarFFT is the transform in magnitude/phase form, full length.
type PolarFFT struct {
	Values     []Polar
	SampleRate stream.SampleRate
}

// UnwrapPhase removes artificial ±2π discontinuities from the phase
// sequence in place. Walking the bins in order, any step larger than π is
// assumed to have wrapped and is shifted back by 2π (and vice versa).
// This is a heuristic (it assumes true phase advances by at most π per
// bin) and is idempotent: the corrected steps are already within ±π, so
// a second pass changes nothing.
func (p PolarFFT) UnwrapPhase() {
	if len(p.Values) == 0 {
		return
	}
	prevWrapped := p.Values[0].Phase
	prev := p.Values[0].Phase
	for i := 1; i < len(p.Values); i++ {
		cur := p.Values[i].Phase
		diff := cur - prevWrapped
		if diff > math.Pi {
			diff -= 2 * math.Pi
		} else if diff < -math.Pi {
			diff += 2 * math.Pi
		}
		prevWrapped = cur
		prev += diff
		p.Values[i].Phase = prev
	}
}

// IntoFolded drops the negative-frequency conjugate bins and normalizes
// magnitudes to full-scale amplitude. For a window of length n the folded
// spectrum keeps n/2+1 bins: DC is divided by n, the Nyquist bin (present
// only when n is even) is divided by n, and every other bin is scaled by
// 2/n to account for the energy of its folded-away conjugate.
func (p PolarFFT) IntoFolded() FoldedFFT {
	n := len(p.Values)
	m := n/2 + 1
	values := make([]Polar, m)
	for i := range values {
		v := p.Values[i]
		switch {
		case i == 0:
			v.Magnitude /= float64(n)
		case i == m-1 && n%2 == 0:
			v.Magnitude /= float64(n)
		default:
			v.Magnitude *= 2 / float64(n)
		}
		values[i] = v
	}
	return FoldedFFT{
		Values:         values,
		UnfoldedLength: n,
		SampleRate:     p.SampleRate,
	}
}

// FoldedFFT is the non-negative-frequency half of a real signal's
// spectrum, amplitude normalized. UnfoldedLength disambiguates even and
// odd original window lengths when reconstructing the frequency axis.
type FoldedFFT struct {
	Values         []Polar           `json:"values"`
	UnfoldedLength int               `json:"unfolded_length"`
	SampleRate     stream.SampleRate `json:"sample_rate"`
}

// Frequency returns the center frequency (Hz) of bin i.
func (f FoldedFFT) Frequency(i int) float64 {
	return float64(i) * f.SampleRate.Float() / float64(f.UnfoldedLength)
}

// NyquistFrequency is the highest representable frequency.
func (f FoldedFFT) NyquistFrequency() float64 {
	return f.SampleRate.Nyquist()
}

// FFT applies a fixed-width FFTSequence across every channel of a period,
// producing one folded spectrum per channel.
type FFT struct {
	width int
	seq   *FFTSequence
}

func NewFFT(width int) *FFT {
	return &FFT{width: width, seq: NewFFTSequence(width)}
}

// NewFFTWith injects an alternate FFT engine.
func NewFFTWith(engine Engine) *FFT {
	return &FFT{width: engine.Len(), seq: NewFFTSequenceWith(engine)}
}

func (f *FFT) Width() int { return f.width }

func (f *FFT) Transform(p stream.Period) []FoldedFFT {
	if p.Len() != f.width {
		panic(fmt.Sprintf("dsp: period of %d samples fed to %d-point transform", p.Len(), f.width))
	}
	ffts := make([]FoldedFFT, 0, p.ChannelCount().Int())
	for _, cp := range p.Channels() {
		ffts = append(ffts, f.seq.FFT(cp).ToPolar().IntoFolded())
	}
	return ffts
}
