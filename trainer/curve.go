package trainer

import (
	"math"

	"github.com/RyanBlaney/svara-coach/algorithms/common"
)

const (
	// curveMinOverlapMs is the minimum singer/reference time overlap for a
	// comparison to be meaningful
	curveMinOverlapMs = 100

	// curveSampleIntervalMs drives how many comparison points the overlap
	// yields, bounded by curveMinPoints/curveMaxPoints
	curveSampleIntervalMs = 20
	curveMinPoints        = 10
	curveMaxPoints        = 50

	// curvePenaltyPerSemitone converts the average semitone gap to a score
	// deduction from 100
	curvePenaltyPerSemitone = 20.0
)

// Curve-tier suggestion strings, keyed by rating
var curveSuggestions = map[Rating]string{
	RatingExcellent: "Excellent! Your pitch matched the target very closely.",
	RatingGood:      "Good job! Your pitch was close to the target.",
	RatingFair:      "Fair attempt. Try to match the target pitch more closely.",
	RatingPoor:      "Keep practicing. Listen carefully to the target note.",
	RatingVeryPoor:  "Listen to the target note again and try to match it.",
}

// EvaluateCurve compares the singer's pitch trajectory against the trainer
// reference trace by resampling both over the shared overlap window and
// averaging the semitone gap. Each curve is anchored at its own start, so
// the comparison scores shape, not entry timing. The verdict and a single
// tier suggestion are stored on the utterance.
func (e *Evaluator) EvaluateCurve(u *Utterance, reference []TracePoint) CurveVerdict {
	verdict := e.compareCurves(u.ValidSamples(), reference)
	u.Verdict = verdict
	if verdict.Valid {
		u.Suggestions = []string{curveSuggestions[verdict.Rating]}
	} else {
		u.Suggestions = []string{"Not enough overlapping audio to compare - hold the note longer."}
	}
	return verdict
}

func (e *Evaluator) compareCurves(sung []FrameSample, reference []TracePoint) CurveVerdict {
	if len(sung) == 0 || len(reference) == 0 {
		return CurveVerdict{}
	}

	sungSpan := sung[len(sung)-1].TimestampMs - sung[0].TimestampMs
	referenceSpan := reference[len(reference)-1].TimestampMs - reference[0].TimestampMs
	overlap := min(sungSpan, referenceSpan)
	if overlap < curveMinOverlapMs {
		return CurveVerdict{}
	}

	points := int(overlap / curveSampleIntervalMs)
	points = int(common.Clamp(float64(points), curveMinPoints, curveMaxPoints))

	// Both grids cover exactly the overlap duration. A curve that runs
	// longer than the other is compared only over the shared window; the
	// remainder never enters the score.
	sungCurve := resampleSemitones(sung, points, float64(overlap))
	referenceCurve := resampleTraceSemitones(reference, points, float64(overlap))

	diffs := make([]float64, points)
	squares := make([]float64, points)
	for i := 0; i < points; i++ {
		d := math.Abs(sungCurve[i] - referenceCurve[i])
		diffs[i] = d
		squares[i] = d * d
	}

	avgDiff := common.Mean(diffs)
	score := common.Clamp(100-avgDiff*curvePenaltyPerSemitone, 0, 100)

	return CurveVerdict{
		Valid:            true,
		Score:            score,
		AvgDiffSemitones: avgDiff,
		MSE:              common.Mean(squares),
		Points:           points,
		Rating:           ratingForScore(score),
	}
}

func ratingForScore(score float64) Rating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	case score >= 40:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}

// resampleSemitones samples an utterance's valid samples at n evenly spaced
// instants across the first spanMs of its own timeline, in semitone space
// (12*log2(f)). Absolute tuning cancels in the comparison since both curves
// share the same transform.
func resampleSemitones(samples []FrameSample, n int, spanMs float64) []float64 {
	times := make([]float64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = float64(s.TimestampMs - samples[0].TimestampMs)
		values[i] = 12 * math.Log2(s.Pitch)
	}
	return resampleLinear(times, values, n, spanMs)
}

func resampleTraceSemitones(points []TracePoint, n int, spanMs float64) []float64 {
	times := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = float64(p.TimestampMs - points[0].TimestampMs)
		values[i] = 12 * math.Log2(p.Pitch)
	}
	return resampleLinear(times, values, n, spanMs)
}

// resampleLinear samples the piecewise-linear curve (times, values) at n
// evenly spaced instants over [0, spanMs] of its relative timeline, holding
// edges beyond the recorded data
func resampleLinear(times, values []float64, n int, spanMs float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := spanMs * float64(i) / float64(n-1)
		out[i] = common.Interpolate(times, values, t)
	}
	return out
}
