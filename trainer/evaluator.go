package trainer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/RyanBlaney/svara-coach/algorithms/common"
	"github.com/RyanBlaney/svara-coach/notes"
	"github.com/RyanBlaney/svara-coach/trainer/config"
)

// Evaluator scores utterances against the target note. The discrete mode
// runs four independent checks (stability, expected note, expected length,
// expected timing); curve mode compares the whole pitch trajectory against
// a trainer reference trace (curve.go). The evaluator reads but never
// mutates an utterance's samples.
type Evaluator struct {
	cfg config.EvaluatorConfig
}

// NewEvaluator creates an evaluator
func NewEvaluator(cfg config.EvaluatorConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate runs the discrete checks and stores the verdict and ordered
// suggestions on the utterance. It may run on an open utterance for live
// feedback; the length check then measures against nowMs. Suggestion order
// is a user-facing contract: stability, note, length, timing.
func (e *Evaluator) Evaluate(u *Utterance, tonic float64, targetLabel string, nowMs int64) DiscreteVerdict {
	stable, stableSuggestion := e.checkStability(u, tonic)
	note, noteSuggestion := e.checkExpectedNote(u, tonic, targetLabel)
	length, lengthSuggestion := e.checkExpectedLength(u, nowMs)
	timing, timingSuggestion := e.checkExpectedTiming(u)

	verdict := DiscreteVerdict{
		IsStable:         stable,
		IsExpectedNote:   note,
		IsExpectedLength: length,
		IsAtExpectedTime: timing,
	}

	// The note suggestion is noise while the pitch is still unstable
	if stable == CheckFailed {
		noteSuggestion = ""
	}

	var suggestions []string
	for _, s := range []string{stableSuggestion, noteSuggestion, lengthSuggestion, timingSuggestion} {
		if s != "" {
			suggestions = append(suggestions, s)
		}
	}

	u.Verdict = verdict
	u.Suggestions = suggestions
	return verdict
}

// checkStability measures the mean absolute semitone deviation of the
// valid samples from the starting pitch
func (e *Evaluator) checkStability(u *Utterance, tonic float64) (Check, string) {
	if u.StartingPitch == 0 || len(u.Samples) == 0 {
		return CheckPending, ""
	}

	valid := u.ValidSamples()
	if len(valid) == 0 {
		return CheckPending, ""
	}

	reference := notes.NoteValue(tonic, u.StartingPitch)
	deviations := make([]float64, len(valid))
	for i, s := range valid {
		deviations[i] = math.Abs(notes.NoteValue(tonic, s.Pitch) - reference)
	}

	if common.Mean(deviations) <= e.cfg.StabilityThresholdSemitones {
		return CheckPassed, ""
	}
	return CheckFailed, "Keep the note stable"
}

// checkExpectedNote scores the averaged valid samples against the target
func (e *Evaluator) checkExpectedNote(u *Utterance, tonic float64, targetLabel string) (Check, string) {
	if len(u.Samples) == 0 {
		return CheckPending, ""
	}

	valid := u.ValidSamples()
	if len(valid) == 0 {
		return CheckPending, ""
	}

	pitches := make([]float64, len(valid))
	confidences := make([]float64, len(valid))
	for i, s := range valid {
		pitches[i] = s.Pitch
		confidences[i] = s.Confidence
	}
	avgPitch := common.Mean(pitches)
	avgConfidence := common.Mean(confidences)

	match, ok := notes.MatchTarget(avgPitch, avgConfidence, tonic, targetLabel)
	if !ok {
		return CheckFailed, "Sing louder for a clearer pitch."
	}
	if match.IsGood {
		return CheckPassed, ""
	}

	if match.Closest.Note.Label == targetLabel {
		cents := math.Abs(match.Closest.Cents)
		return CheckFailed, fmt.Sprintf("Adjust pitch by %.1f cents to match %s.", cents, targetLabel)
	}

	// A different note than expected: point toward the exact target octave
	sung := notes.NoteValue(tonic, avgPitch)
	expected, ok := notes.NoteByLabel(targetLabel)
	if !ok {
		return CheckFailed, fmt.Sprintf("Sing %s.", targetLabel)
	}

	delta := float64(expected.Semitone) - sung
	semitonesOff := math.Round(math.Abs(delta)*10) / 10
	if semitonesOff > 11 {
		direction := "lower"
		if delta > 0 {
			direction = "higher"
		}
		return CheckFailed, fmt.Sprintf("Sing in %s octave", direction)
	}

	direction := "down"
	if delta > 0 {
		direction = "up"
	}
	return CheckFailed, fmt.Sprintf("Go %s by %s semitones to reach %s.",
		direction, strconv.FormatFloat(semitonesOff, 'f', -1, 64), targetLabel)
}

// checkExpectedLength compares the utterance duration against the
// expected note duration
func (e *Evaluator) checkExpectedLength(u *Utterance, nowMs int64) (Check, string) {
	difference := float64(u.DurationMs(nowMs) - u.ExpectedDurationMs)
	if math.Abs(difference) <= e.cfg.LengthToleranceMs {
		return CheckPassed, ""
	}
	if difference > 0 {
		return CheckFailed, "Hold the note shorter"
	}
	return CheckFailed, "Hold the note longer"
}

// checkExpectedTiming compares the utterance start against the expected
// entry time. An infinite tolerance records a passing verdict without
// constraining the singer.
func (e *Evaluator) checkExpectedTiming(u *Utterance) (Check, string) {
	difference := float64(u.StartMs - u.ExpectedStartMs)
	if math.Abs(difference) <= e.cfg.TimingToleranceMs {
		return CheckPassed, ""
	}
	if difference > 0 {
		return CheckFailed, fmt.Sprintf("Start earlier - expected at %dms, started at %dms (%dms late).",
			u.ExpectedStartMs, u.StartMs, int64(math.Round(difference)))
	}
	return CheckFailed, fmt.Sprintf("Start later - expected at %dms, started at %dms (%dms early).",
		u.ExpectedStartMs, u.StartMs, int64(math.Round(-difference)))
}
