package trainer

import (
	"github.com/RyanBlaney/svara-coach/algorithms/temporal"
	"github.com/RyanBlaney/svara-coach/trainer/config"
)

// Target is the scheduling context an utterance is created under: which
// note the singer is expected to produce, when, and for how long.
type Target struct {
	Label              string `json:"label"`
	ExpectedStartMs    int64  `json:"expected_start_ms"`
	ExpectedDurationMs int64  `json:"expected_duration_ms"`
}

// SegmentEvent reports what one frame did to the segmentation state.
// At most one of Completed/Discarded is set per frame.
type SegmentEvent struct {
	// Opened is true when this frame started a new utterance
	Opened bool

	// Completed is a closed utterance that met the minimum duration and is
	// ready for evaluation
	Completed *Utterance

	// Discarded is a closed utterance below the minimum duration; it is
	// treated as accidental noise and must not reach the evaluator
	Discarded *Utterance
}

// Segmenter turns the per-frame pitch/confidence/loudness stream into
// discrete utterances bounded by persistent silence.
//
// Two states: Idle (no open utterance) and Open (accumulating samples).
// Opening is edge-triggered on the silence-to-signal transition so a
// sustained non-silent run opens exactly one utterance. Closing is
// debounced: a silent frame ends the utterance only once the last valid
// sample is older than the configured silence duration, so brief dropouts
// do not split a sung note in two.
type Segmenter struct {
	cfg config.SegmenterConfig

	current   *Utterance
	wasSilent bool
	nextID    int64
}

// NewSegmenter creates an idle segmenter
func NewSegmenter(cfg config.SegmenterConfig) *Segmenter {
	return &Segmenter{
		cfg:       cfg,
		wasSilent: true,
	}
}

// Current returns the open utterance, nil when idle. The utterance is
// owned by the segmenter; callers must not mutate it.
func (s *Segmenter) Current() *Utterance {
	return s.current
}

// Process advances the state machine by one classified frame
func (s *Segmenter) Process(frame temporal.Analysis, nowMs int64, target Target) SegmentEvent {
	var event SegmentEvent

	// End detection fires only on silent frames
	if s.current != nil && !frame.HasSignal && s.silencePersisted(nowMs) {
		closed := s.current
		closed.Finalize(nowMs)
		s.current = nil
		if closed.EndMs-closed.StartMs < s.cfg.MinUtteranceDurationMs {
			event.Discarded = closed
		} else {
			event.Completed = closed
		}
	}

	// Opening is edge-triggered: the previous frame must have been silent
	if s.current == nil && frame.HasSignal && s.wasSilent {
		s.nextID++
		s.current = newUtterance(s.nextID, target.Label, target.ExpectedStartMs, target.ExpectedDurationMs, nowMs)
		event.Opened = true
	}

	if frame.HasSignal {
		s.wasSilent = false
		s.current.AddSample(frame.Pitch, frame.Confidence, nowMs)
	} else {
		s.wasSilent = true
	}

	return event
}

// silencePersisted reports whether the open utterance has been without a
// valid pitch sample long enough to close. An utterance that never had a
// valid sample ends immediately.
func (s *Segmenter) silencePersisted(nowMs int64) bool {
	last, ok := s.current.LastValid()
	if !ok {
		return true
	}
	return nowMs-last.TimestampMs >= s.cfg.SilenceDurationMs
}

// ForceClose finalizes and returns the open utterance without running end
// detection, for session teardown. Returns nil when idle.
func (s *Segmenter) ForceClose(nowMs int64) *Utterance {
	closed := s.current
	if closed == nil {
		return nil
	}
	closed.Finalize(nowMs)
	s.current = nil
	s.wasSilent = true
	return closed
}
