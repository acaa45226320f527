package pitch

import (
	"math"

	"github.com/RyanBlaney/svara-coach/algorithms/common"
)

// Params contains parameters for the YIN periodicity estimator
type Params struct {
	// Threshold is the absolute threshold on the cumulative mean normalized
	// difference below which a lag is accepted as a period candidate (0.1-0.5)
	Threshold float64 `json:"threshold"`

	// UseFFT selects the O(N log N) difference-function path. Both paths
	// produce the same result within numerical tolerance.
	UseFFT bool `json:"use_fft"`
}

// DefaultParams returns the estimator defaults
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
func DefaultParams() Params {
	return Params{
		Threshold: 0.15,
	}
}

// Result is a per-frame fundamental frequency estimate. A Pitch of 0 with
// Confidence 0 means periodicity was not established for the frame; it is
// the total, non-throwing representation of estimation failure.
type Result struct {
	Pitch      float64 `json:"pitch"`      // Estimated fundamental (Hz), 0 if unresolved
	Confidence float64 `json:"confidence"` // Periodicity strength (0-1)
}

// Detector implements the YIN difference-function pitch estimator over
// time-domain frames. Detect is a pure function of its input buffer:
// deterministic, side-effect free, and total over degenerate input.
type Detector struct {
	params Params
}

// NewDetector creates a detector with default parameters
func NewDetector() *Detector {
	return &Detector{params: DefaultParams()}
}

// NewDetectorWithParams creates a detector with custom parameters
func NewDetectorWithParams(params Params) *Detector {
	if params.Threshold <= 0 {
		params.Threshold = DefaultParams().Threshold
	}
	return &Detector{params: params}
}

// Params returns the current parameters
func (d *Detector) Params() Params {
	return d.params
}

// Detect estimates the fundamental frequency of a time-domain frame.
// The first half of the buffer is the analysis window; silent or constant
// input yields the zero result, never an error.
func (d *Detector) Detect(buffer []float64, sampleRate float64) Result {
	halfSize := len(buffer) / 2
	if halfSize < 2 || sampleRate <= 0 {
		return Result{}
	}

	var diff []float64
	if d.params.UseFFT {
		diff = differenceFFT(buffer, halfSize)
	} else {
		diff = difference(buffer, halfSize)
	}

	cmnd := cumulativeMeanNormalized(diff)
	tau := firstDipBelowThreshold(cmnd, d.params.Threshold)
	if tau < 0 {
		return Result{}
	}

	refined := refineTau(cmnd, tau)
	estimated := sampleRate / refined
	if math.IsNaN(estimated) || math.IsInf(estimated, 0) {
		return Result{}
	}

	return Result{
		Pitch:      estimated,
		Confidence: common.Clamp(1-cmnd[tau], 0, 1),
	}
}

// difference computes the squared-difference function
// d(tau) = sum_{i<halfSize} (x[i] - x[i+tau])^2 directly, O(N^2)
func difference(buffer []float64, halfSize int) []float64 {
	diff := make([]float64, halfSize)
	for tau := 1; tau < halfSize; tau++ {
		sum := 0.0
		for i := 0; i < halfSize; i++ {
			delta := buffer[i] - buffer[i+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}
	return diff
}

// cumulativeMeanNormalized computes
// cmnd(tau) = d(tau) * tau / sum_{k=1..tau} d(k), with cmnd(0) = 1.
// A zero running sum (constant input) normalizes to 1 so no dip is found.
func cumulativeMeanNormalized(diff []float64) []float64 {
	cmnd := make([]float64, len(diff))
	cmnd[0] = 1

	runningSum := 0.0
	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / runningSum
		}
	}
	return cmnd
}

// firstDipBelowThreshold scans lags from 2 upward and returns the local
// minimum of the first dip under the threshold, or -1 when none exists.
// The first dip is taken instead of the global minimum: later, deeper dips
// are typically subharmonics and would cause octave errors.
func firstDipBelowThreshold(cmnd []float64, threshold float64) int {
	for tau := 2; tau < len(cmnd); tau++ {
		if cmnd[tau] < threshold {
			best := tau
			for best+1 < len(cmnd) && cmnd[best+1] < cmnd[best] {
				best++
			}
			return best
		}
	}
	return -1
}

// refineTau refines an integer lag to a fractional one by fitting a
// parabola through the dip and its immediate neighbors. A vanishing second
// derivative leaves the lag unrefined.
func refineTau(cmnd []float64, tau int) float64 {
	if tau <= 0 || tau+1 >= len(cmnd) {
		return float64(tau)
	}
	prev := cmnd[tau-1]
	curr := cmnd[tau]
	next := cmnd[tau+1]
	denominator := 2*curr - prev - next
	if denominator == 0 {
		return float64(tau)
	}
	return float64(tau) + (next-prev)/(2*denominator)
}
