package pitch

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/svara-coach/algorithms/common"
)

// differenceFFT computes the same squared-difference function as difference
// through the correlation identity
//
//	d(tau) = p(0) + p(tau) - 2*r(tau)
//
// where p(tau) is the energy of the window starting at tau and r(tau) the
// cross-correlation of the analysis window with the buffer. r is computed
// with mjibson/go-dsp in O(N log N); the buffers are zero-padded past
// len(buffer)+halfSize so the circular correlation is linear over the lags
// of interest.
func differenceFFT(buffer []float64, halfSize int) []float64 {
	size := common.NextPowerOfTwo(len(buffer) + halfSize)

	padded := make([]float64, size)
	copy(padded, buffer)
	window := make([]float64, size)
	copy(window, buffer[:halfSize])

	spectrum := fft.FFTReal(padded)
	windowSpectrum := fft.FFTReal(window)

	cross := make([]complex128, size)
	for i := range cross {
		cross[i] = spectrum[i] * cmplx.Conj(windowSpectrum[i])
	}
	correlation := fft.IFFT(cross)

	windowPower := 0.0
	for i := 0; i < halfSize; i++ {
		windowPower += buffer[i] * buffer[i]
	}

	diff := make([]float64, halfSize)
	laggedPower := windowPower
	for tau := 1; tau < halfSize; tau++ {
		laggedPower += buffer[tau+halfSize-1]*buffer[tau+halfSize-1] - buffer[tau-1]*buffer[tau-1]
		d := windowPower + laggedPower - 2*real(correlation[tau])
		// Cancellation can push an exact zero slightly negative
		if d < 0 {
			d = 0
		}
		diff[tau] = d
	}
	return diff
}
