// Package trainer implements the call-and-response drill: segmenting the
// singer's audio stream into discrete utterances, scoring each against the
// current target note, and deciding when to advance through the sequence.
package trainer

import "slices"

// MinValidConfidence is the estimator confidence a sample needs to count
// as a valid pitch observation inside an utterance.
const MinValidConfidence = 0.3

// FrameSample is one per-tick pitch observation. Pitch 0 means no pitch
// was resolved for the frame.
type FrameSample struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Pitch       float64 `json:"pitch"`
	Confidence  float64 `json:"confidence"`
}

// Valid reports whether the sample carries a usable pitch observation
func (s FrameSample) Valid() bool {
	return s.Pitch > 0 && s.Confidence >= MinValidConfidence
}

// Check is a three-valued verdict for a single evaluation criterion.
// A check that has not run (or had nothing to run on) stays Pending.
type Check int

const (
	CheckPending Check = iota
	CheckPassed
	CheckFailed
)

func (c Check) String() string {
	switch c {
	case CheckPassed:
		return "passed"
	case CheckFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Passed reports whether the check ran and succeeded
func (c Check) Passed() bool {
	return c == CheckPassed
}

// Verdict is the evaluation outcome of an utterance. Exactly two
// implementations exist, one per scoring mode: DiscreteVerdict and
// CurveVerdict. Consumers type-switch over the pair.
type Verdict interface {
	// Passed reports whether the utterance counts as a perfect attempt
	Passed() bool
}

// DiscreteVerdict carries the four independent checks of the default
// scoring mode
type DiscreteVerdict struct {
	IsStable         Check `json:"is_stable"`
	IsExpectedNote   Check `json:"is_expected_note"`
	IsExpectedLength Check `json:"is_expected_length"`
	IsAtExpectedTime Check `json:"is_at_expected_time"`
}

// Passed requires all four checks to have passed, strictly
func (v DiscreteVerdict) Passed() bool {
	return v.IsStable.Passed() &&
		v.IsExpectedNote.Passed() &&
		v.IsExpectedLength.Passed() &&
		v.IsAtExpectedTime.Passed()
}

// Rating buckets a curve-comparison score
type Rating string

const (
	RatingNone      Rating = ""
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
	RatingVeryPoor  Rating = "very_poor"
)

// curvePassScore is the perfect-attempt bar in curve-comparison mode
const curvePassScore = 80.0

// CurveVerdict carries the whole-curve comparison against the trainer
// reference trace. Valid is false when there was not enough overlapping
// data to compare; the verdict then has no score or rating.
type CurveVerdict struct {
	Valid            bool    `json:"valid"`
	Score            float64 `json:"score"`
	AvgDiffSemitones float64 `json:"avg_diff_semitones"`
	MSE              float64 `json:"mse"`
	Points           int     `json:"points"`
	Rating           Rating  `json:"rating"`
}

// Passed reports a perfect attempt: a comparable curve scoring at least 80
func (v CurveVerdict) Passed() bool {
	return v.Valid && v.Score >= curvePassScore
}

// Utterance is one continuous vocalization attempt, bounded by silence.
// It is owned exclusively by the segmenter until closed, then handed to
// the evaluator; the visualization layer only ever sees clones.
type Utterance struct {
	ID int64 `json:"id"`

	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"` // meaningful only once Closed
	Closed  bool  `json:"closed"`

	// Samples accumulate append-only while the utterance is open
	Samples []FrameSample `json:"samples"`

	// StartingPitch is the first nonzero pitch observed, frozen once set
	StartingPitch float64 `json:"starting_pitch"`

	ExpectedNote       string `json:"expected_note"`
	ExpectedStartMs    int64  `json:"expected_start_ms"`
	ExpectedDurationMs int64  `json:"expected_duration_ms"`

	// Verdict is nil until the evaluator has run
	Verdict Verdict `json:"verdict,omitempty"`

	// Suggestions are ordered: the first listed is the one to address first
	Suggestions []string `json:"suggestions"`
}

func newUtterance(id int64, expectedNote string, expectedStartMs, expectedDurationMs, nowMs int64) *Utterance {
	return &Utterance{
		ID:                 id,
		StartMs:            nowMs,
		ExpectedNote:       expectedNote,
		ExpectedStartMs:    expectedStartMs,
		ExpectedDurationMs: expectedDurationMs,
	}
}

// AddSample appends a pitch observation. No-op once the utterance is
// closed. The first pitched sample freezes StartingPitch.
func (u *Utterance) AddSample(pitchHz, confidence float64, timestampMs int64) {
	if u == nil || u.Closed {
		return
	}

	u.Samples = append(u.Samples, FrameSample{
		TimestampMs: timestampMs,
		Pitch:       pitchHz,
		Confidence:  confidence,
	})

	if u.StartingPitch == 0 && pitchHz > 0 {
		u.StartingPitch = pitchHz
	}
}

// Finalize stamps the end time. Idempotent.
func (u *Utterance) Finalize(nowMs int64) {
	if u == nil || u.Closed {
		return
	}
	u.EndMs = nowMs
	u.Closed = true
}

// DurationMs is the elapsed duration, using the close time when closed and
// the supplied wall clock while still open
func (u *Utterance) DurationMs(nowMs int64) int64 {
	if u.Closed {
		return u.EndMs - u.StartMs
	}
	return nowMs - u.StartMs
}

// ValidSamples returns the samples carrying usable pitch, in order
func (u *Utterance) ValidSamples() []FrameSample {
	var valid []FrameSample
	for _, s := range u.Samples {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	return valid
}

// LastValid returns the most recent valid sample
func (u *Utterance) LastValid() (FrameSample, bool) {
	for i := len(u.Samples) - 1; i >= 0; i-- {
		if u.Samples[i].Valid() {
			return u.Samples[i], true
		}
	}
	return FrameSample{}, false
}

// Clone returns a deep copy safe to hand across the visualization boundary
func (u *Utterance) Clone() *Utterance {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Samples = slices.Clone(u.Samples)
	clone.Suggestions = slices.Clone(u.Suggestions)
	return &clone
}
