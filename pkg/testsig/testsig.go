// Package testsig generates reference signals and provides small search
// helpers for spectral tests.
package testsig

import "math"

// Sine returns size samples of a sine wave at the given frequency and
// amplitude.
func Sine(size int, sampleRate, frequency, amplitude float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buf
}

// Harmonics returns a 440Hz fundamental plus two harmonics, a busier
// signal than a bare sine for exercising full transforms.
func Harmonics(size int, sampleRate float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		s := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buf[i] = float32(s * 0.9)
	}
	return buf
}

// PeakBin returns the index of the largest magnitude in bins
// [startBin, endBin].
func PeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	startBin = max(startBin, 0)
	endBin = min(endBin, len(magnitudes)-1)

	peakBin := startBin
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > magnitudes[peakBin] {
			peakBin = bin
		}
	}
	return peakBin
}
