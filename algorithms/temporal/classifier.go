package temporal

import (
	"github.com/RyanBlaney/svara-coach/algorithms/common"
	"github.com/RyanBlaney/svara-coach/algorithms/pitch"
)

// ClassifierParams contains thresholds for per-frame signal classification
type ClassifierParams struct {
	// SilenceThreshold is the RMS amplitude below which a frame is silent
	SilenceThreshold float64 `json:"silence_threshold"`

	// MinFrequency/MaxFrequency bound the plausible vocal range; pitch
	// estimates outside the range are discarded before classification
	MinFrequency float64 `json:"min_frequency"`
	MaxFrequency float64 `json:"max_frequency"`

	// MinConfidence is the estimator confidence required for a frame to
	// count as carrying signal
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultClassifierParams returns thresholds tuned for sung vocal input
func DefaultClassifierParams() ClassifierParams {
	return ClassifierParams{
		SilenceThreshold: 0.01,
		MinFrequency:     60.0,   // low male voice
		MaxFrequency:     1000.0, // high female voice
		MinConfidence:    0.3,
	}
}

// Analysis is the classified view of one audio frame. Pitch and Confidence
// are zeroed when the raw estimate fails the frequency-range gate or the
// frame is silent, so downstream consumers only ever see plausible pitch.
type Analysis struct {
	Pitch      float64 `json:"pitch"`
	Confidence float64 `json:"confidence"`
	RMS        float64 `json:"rms"`
	HasSignal  bool    `json:"has_signal"`
}

// Classifier derives per-frame loudness and the has-signal/silence boolean
// from a raw pitch estimate. The same two-stage gating (range gate, then
// combined loudness/pitch/confidence rule) applies wherever pitch is
// consumed, for both the singer and the trainer analysis paths.
type Classifier struct {
	params ClassifierParams
}

// NewClassifier creates a classifier with default parameters
func NewClassifier() *Classifier {
	return &Classifier{params: DefaultClassifierParams()}
}

// NewClassifierWithParams creates a classifier with custom parameters
func NewClassifierWithParams(params ClassifierParams) *Classifier {
	return &Classifier{params: params}
}

// Params returns the current parameters
func (c *Classifier) Params() ClassifierParams {
	return c.params
}

// Classify gates a raw estimate against the frame it was computed from
func (c *Classifier) Classify(raw pitch.Result, buffer []float64) Analysis {
	rms := common.RMS(buffer)

	estimated := raw.Pitch
	confidence := raw.Confidence
	if estimated < c.params.MinFrequency || estimated > c.params.MaxFrequency {
		estimated = 0
		confidence = 0
	}
	if rms < c.params.SilenceThreshold {
		estimated = 0
		confidence = 0
	}

	return Analysis{
		Pitch:      estimated,
		Confidence: confidence,
		RMS:        rms,
		HasSignal: rms >= c.params.SilenceThreshold &&
			estimated > 0 &&
			confidence >= c.params.MinConfidence,
	}
}

// Silent reports whether an RMS level is below the silence threshold
func (c *Classifier) Silent(rms float64) bool {
	return rms < c.params.SilenceThreshold
}
