package trainer

import (
	"strings"
	"time"

	"github.com/RyanBlaney/svara-coach/algorithms/pitch"
	"github.com/RyanBlaney/svara-coach/algorithms/temporal"
	"github.com/RyanBlaney/svara-coach/logging"
	"github.com/RyanBlaney/svara-coach/notes"
	"github.com/RyanBlaney/svara-coach/trainer/config"
)

// curveReferenceTailMs extends the reference window past the expected note
// duration so a singer running slightly long still has trainer data to
// compare against
const curveReferenceTailMs = 1000

// HistoryPoint is one frame of the rolling pitch history fed to the graph
type HistoryPoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Pitch       float64 `json:"pitch"`
	Confidence  float64 `json:"confidence"`
	RMS         float64 `json:"rms"`
}

// Snapshot is a read-only copy of session state for the visualization
// layer. Everything in it is cloned; mutating a snapshot never touches the
// session.
type Snapshot struct {
	Active       bool    `json:"active"`
	TargetLabel  string  `json:"target_label"`
	TargetIndex  int     `json:"target_index"`
	AttemptsLeft int     `json:"attempts_left"`
	TonicHz      float64 `json:"tonic_hz"`

	DetectedNote string  `json:"detected_note"`
	CentsOff     float64 `json:"cents_off"`
	InTune       bool    `json:"in_tune"`
	Suggestion   string  `json:"suggestion"`

	// Beat and ScheduleMs reflect the metronome grid while the drill is
	// armed; zero/nil otherwise
	Beat       Beat    `json:"beat"`
	ScheduleMs []int64 `json:"schedule_ms,omitempty"`

	Current    *Utterance     `json:"current,omitempty"`
	Utterances []*Utterance   `json:"utterances"`
	History    []HistoryPoint `json:"history"`
}

// Session wires the full pipeline: pitch detection, frame classification,
// segmentation, evaluation, and drill direction. Not safe for concurrent
// use; the caller owns a single processing goroutine and reads state
// through Snapshot.
type Session struct {
	cfg config.SessionConfig

	detector   *pitch.Detector
	classifier *temporal.Classifier
	segmenter  *Segmenter
	evaluator  *Evaluator
	director   *Director
	trace      *Trace

	tonic float64

	history    []HistoryPoint
	utterances []*Utterance

	detectedNote string
	centsOff     float64
	inTune       bool
	suggestion   string

	// nowFn supplies wall-clock milliseconds; swapped out in tests
	nowFn func() int64
}

// NewSession creates a session over a drill sequence anchored at tonicHz
func NewSession(cfg config.SessionConfig, sequence Sequence, tonicHz float64) *Session {
	return &Session{
		cfg:        cfg,
		detector:   pitch.NewDetectorWithParams(cfg.Pitch),
		classifier: temporal.NewClassifierWithParams(cfg.Classifier),
		segmenter:  NewSegmenter(cfg.Segmenter),
		evaluator:  NewEvaluator(cfg.Evaluator),
		director:   NewDirector(cfg.Director, sequence, tonicHz),
		trace:      NewTrace(cfg.MaxHistory),
		tonic:      tonicHz,
		suggestion: "Start listening to get feedback.",
		nowFn:      func() int64 { return time.Now().UnixMilli() },
	}
}

// SetTonic rebases the session on a new tonic. Applies from the next frame;
// utterances already evaluated keep their verdicts.
func (s *Session) SetTonic(tonicHz float64) {
	s.tonic = tonicHz
	s.director.SetTonic(tonicHz)
}

// StartCallAndResponse arms the drill: any open utterance is closed
// unevaluated, the countdown and timing baseline reset, and the current
// target note is scheduled for playback.
func (s *Session) StartCallAndResponse() {
	now := s.nowFn()
	if closed := s.segmenter.ForceClose(now); closed != nil {
		s.utterances = append(s.utterances, closed)
	}
	s.director.Arm(now)
	s.suggestion = "Start listening to get feedback."
	logging.Debug("call-and-response armed", logging.Fields{
		"target": s.director.CurrentTarget(now).Label,
	})
}

// Stop tears the session down cleanly: the open utterance, if any, is
// force-closed and retained in history without evaluation, and the drill
// disarms. Never an error path.
func (s *Session) Stop() {
	now := s.nowFn()
	if closed := s.segmenter.ForceClose(now); closed != nil {
		s.utterances = append(s.utterances, closed)
	}
	s.director.Disarm()
}

// PendingPlay exposes the director's outstanding play request for the host
// audio layer
func (s *Session) PendingPlay() (PlayRequest, bool) {
	return s.director.PendingPlay()
}

// NotePlayed reports that the host sounded a target note. Pass
// durationMs <= 0 when playback length is unknown.
func (s *Session) NotePlayed(label string, durationMs int64) {
	s.director.NotePlayed(label, durationMs, s.nowFn())
}

// ProcessFrame runs one captured microphone frame through the pipeline
func (s *Session) ProcessFrame(buffer []float64, sampleRate float64) temporal.Analysis {
	return s.processFrameAt(buffer, sampleRate, s.nowFn())
}

func (s *Session) processFrameAt(buffer []float64, sampleRate float64, nowMs int64) temporal.Analysis {
	raw := s.detector.Detect(buffer, sampleRate)
	frame := s.classifier.Classify(raw, buffer)

	s.pushHistory(HistoryPoint{
		TimestampMs: nowMs,
		Pitch:       frame.Pitch,
		Confidence:  frame.Confidence,
		RMS:         frame.RMS,
	})

	target := s.director.CurrentTarget(nowMs)
	event := s.segmenter.Process(frame, nowMs, target)

	if event.Opened {
		// The singer is in; target playback must not talk over them
		s.director.CancelPending()
		logging.Debug("utterance opened", logging.Fields{"target": target.Label})
	}

	if event.Discarded != nil {
		logging.Debug("utterance discarded", logging.Fields{
			"duration_ms": event.Discarded.EndMs - event.Discarded.StartMs,
		})
	}

	if event.Completed != nil {
		s.finishUtterance(event.Completed, nowMs)
	}

	s.updateLive(frame, target, nowMs)
	s.updateSuggestion(frame)

	return frame
}

// finishUtterance evaluates a completed utterance, retains it, and feeds
// the verdict to the director
func (s *Session) finishUtterance(u *Utterance, nowMs int64) {
	var verdict Verdict
	if s.cfg.Evaluator.UseCurveComparison {
		reference := s.curveReference(u)
		verdict = s.evaluator.EvaluateCurve(u, reference)
	} else {
		verdict = s.evaluator.Evaluate(u, s.tonic, u.ExpectedNote, nowMs)
	}

	s.utterances = append(s.utterances, u)

	logging.Info("utterance evaluated", logging.Fields{
		"target":      u.ExpectedNote,
		"passed":      verdict.Passed(),
		"duration_ms": u.EndMs - u.StartMs,
	})

	if s.director.Active() {
		decision := s.director.OnVerdict(verdict.Passed(), nowMs)
		if decision.Advanced {
			logging.Info("advanced to next note", logging.Fields{
				"index": decision.Index,
			})
		}
	}
}

// curveReference slices the trainer trace to the playback window of the
// target this utterance answered
func (s *Session) curveReference(u *Utterance) []TracePoint {
	playMs, ok := s.director.LastPlayMs()
	if !ok {
		return nil
	}
	return s.trace.Window(playMs, playMs+u.ExpectedDurationMs+curveReferenceTailMs)
}

// updateLive refreshes the per-frame match display and, in discrete mode,
// re-runs the checks on the open utterance so feedback tracks the singer
// in real time
func (s *Session) updateLive(frame temporal.Analysis, target Target, nowMs int64) {
	current := s.segmenter.Current()

	if current != nil && frame.HasSignal {
		if !s.cfg.Evaluator.UseCurveComparison {
			s.evaluator.Evaluate(current, s.tonic, current.ExpectedNote, nowMs)
		}

		match, ok := notes.MatchTarget(frame.Pitch, frame.Confidence, s.tonic, target.Label)
		if ok {
			s.detectedNote = match.Closest.DisplayLabel
			s.centsOff = match.Closest.Cents
			s.inTune = match.IsGood
		} else {
			s.detectedNote = ""
			s.centsOff = 0
			s.inTune = false
		}
		return
	}

	if !frame.HasSignal {
		s.detectedNote = ""
		s.centsOff = 0
		s.inTune = false
	}
}

// updateSuggestion picks the one line of coaching to show right now
func (s *Session) updateSuggestion(frame temporal.Analysis) {
	if s.classifier.Silent(frame.RMS) {
		s.suggestion = "Sing louder for a clear pitch."
		return
	}
	if frame.Pitch == 0 || frame.Confidence < MinValidConfidence {
		s.suggestion = "Sing louder for a clearer pitch."
		return
	}

	current := s.segmenter.Current()
	if current != nil {
		if len(current.Suggestions) > 0 {
			s.suggestion = strings.Join(current.Suggestions, " ")
			return
		}
		if current.Verdict != nil && current.Verdict.Passed() {
			s.suggestion = "Perfect! All checks passed."
			return
		}
	}

	s.suggestion = "Start listening to get feedback."
}

// ProcessTrainerFrame runs one frame of the trainer's own playback capture
// through detection and records pitched frames into the reference trace
func (s *Session) ProcessTrainerFrame(buffer []float64, sampleRate float64) temporal.Analysis {
	return s.processTrainerFrameAt(buffer, sampleRate, s.nowFn())
}

func (s *Session) processTrainerFrameAt(buffer []float64, sampleRate float64, nowMs int64) temporal.Analysis {
	raw := s.detector.Detect(buffer, sampleRate)
	frame := s.classifier.Classify(raw, buffer)
	if frame.HasSignal {
		s.trace.Append(frame.Pitch, nowMs)
	}
	return frame
}

func (s *Session) pushHistory(point HistoryPoint) {
	s.history = append(s.history, point)
	if s.cfg.MaxHistory > 0 && len(s.history) > s.cfg.MaxHistory {
		s.history = s.history[len(s.history)-s.cfg.MaxHistory:]
	}
}

// Snapshot returns a deep copy of the observable session state
func (s *Session) Snapshot() Snapshot {
	now := s.nowFn()
	target := s.director.CurrentTarget(now)

	utterances := make([]*Utterance, len(s.utterances))
	for i, u := range s.utterances {
		utterances[i] = u.Clone()
	}

	history := make([]HistoryPoint, len(s.history))
	copy(history, s.history)

	snapshot := Snapshot{
		Active:       s.director.Active(),
		TargetLabel:  target.Label,
		TargetIndex:  s.director.Index(),
		AttemptsLeft: s.director.AttemptsLeft(),
		TonicHz:      s.tonic,
		DetectedNote: s.detectedNote,
		CentsOff:     s.centsOff,
		InTune:       s.inTune,
		Suggestion:   s.suggestion,
		Current:      s.segmenter.Current().Clone(),
		Utterances:   utterances,
		History:      history,
	}

	if s.director.Active() {
		snapshot.Beat = s.director.Metronome().BeatAt(now)
		snapshot.ScheduleMs = s.director.Schedule()
	}

	return snapshot
}
