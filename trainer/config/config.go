// Package config holds the tunables of the call-and-response trainer.
package config

import (
	"github.com/RyanBlaney/svara-coach/algorithms/pitch"
	"github.com/RyanBlaney/svara-coach/algorithms/temporal"
)

// SegmenterConfig controls utterance boundary detection
type SegmenterConfig struct {
	// SilenceDurationMs is how long silence must persist after the last
	// valid pitch sample before an open utterance closes
	SilenceDurationMs int64 `json:"silence_duration_ms"`

	// MinUtteranceDurationMs discards closed utterances shorter than this;
	// they are treated as accidental noise and never evaluated
	MinUtteranceDurationMs int64 `json:"min_utterance_duration_ms"`
}

// DefaultSegmenterConfig returns segmentation defaults
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		SilenceDurationMs:      100,
		MinUtteranceDurationMs: 150,
	}
}

// EvaluatorConfig controls utterance scoring
type EvaluatorConfig struct {
	// StabilityThresholdSemitones bounds the mean absolute deviation from
	// the starting pitch for an utterance to count as stable
	StabilityThresholdSemitones float64 `json:"stability_threshold_semitones"`

	// LengthToleranceMs bounds |actual - expected| duration
	LengthToleranceMs float64 `json:"length_tolerance_ms"`

	// TimingToleranceMs bounds |start - expectedStart|. math.Inf(1)
	// disables the check while still recording a verdict.
	TimingToleranceMs float64 `json:"timing_tolerance_ms"`

	// UseCurveComparison selects whole-curve trainer-vs-singer scoring
	// instead of the four discrete checks
	UseCurveComparison bool `json:"use_curve_comparison"`
}

// DefaultEvaluatorConfig returns evaluation defaults
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		StabilityThresholdSemitones: 0.5,
		LengthToleranceMs:           300,
		TimingToleranceMs:           500,
		UseCurveComparison:          false,
	}
}

// DirectorConfig controls target-note advancement and retry pacing
type DirectorConfig struct {
	// AttemptCount is the consecutive-failure countdown before the
	// scheduling baseline resets
	AttemptCount int `json:"attempt_count"`

	// TargetNoteGapMs is the pause between the end of target-note playback
	// and the singer's expected entry
	TargetNoteGapMs int64 `json:"target_note_gap_ms"`

	// TempoBPM drives the metronome baseline
	TempoBPM float64 `json:"tempo_bpm"`

	// FallbackNoteDurationMs stands in when playback cannot report the
	// actual sample duration (oscillator playback)
	FallbackNoteDurationMs int64 `json:"fallback_note_duration_ms"`
}

// DefaultDirectorConfig returns pacing defaults
func DefaultDirectorConfig() DirectorConfig {
	return DirectorConfig{
		AttemptCount:           3,
		TargetNoteGapMs:        500,
		TempoBPM:               60,
		FallbackNoteDurationMs: 1200,
	}
}

// SessionConfig aggregates the configuration of a full session
type SessionConfig struct {
	// MaxHistory caps the rolling pitch history and the trainer reference
	// trace, in frames
	MaxHistory int `json:"max_history"`

	Pitch      pitch.Params              `json:"pitch"`
	Classifier temporal.ClassifierParams `json:"classifier"`
	Segmenter  SegmenterConfig           `json:"segmenter"`
	Evaluator  EvaluatorConfig           `json:"evaluator"`
	Director   DirectorConfig            `json:"director"`
}

// DefaultSessionConfig returns defaults for every component
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxHistory: 200,
		Pitch:      pitch.DefaultParams(),
		Classifier: temporal.DefaultClassifierParams(),
		Segmenter:  DefaultSegmenterConfig(),
		Evaluator:  DefaultEvaluatorConfig(),
		Director:   DefaultDirectorConfig(),
	}
}
