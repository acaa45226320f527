package trainer

import (
	"math"

	"github.com/RyanBlaney/svara-coach/notes"
	"github.com/RyanBlaney/svara-coach/trainer/config"
)

// PlayRequest asks the host to sound a target note. The director never
// touches audio output itself; it schedules requests and the host reports
// back through NotePlayed once playback actually starts.
type PlayRequest struct {
	Label  string  `json:"label"`
	FreqHz float64 `json:"freq_hz"`
}

// Decision reports what a verdict did to the drill position
type Decision struct {
	// Advanced is true when the attempt passed and the drill moved to the
	// next sequence step
	Advanced bool `json:"advanced"`

	// CountdownExpired is true when a failed attempt exhausted the retry
	// countdown, resetting both the countdown and the timing baseline
	CountdownExpired bool `json:"countdown_expired"`

	Index        int `json:"index"`
	AttemptsLeft int `json:"attempts_left"`
}

// Director runs the call-and-response drill: it walks the note sequence,
// schedules target-note playback, and reacts to utterance verdicts.
//
// A passed attempt advances to the next step (wrapping), resets the retry
// countdown, and re-anchors the metronome. A failed attempt burns one
// retry and replays the same note; when the countdown hits zero both the
// countdown and the metronome reset, so a struggling singer gets a fresh
// timing baseline instead of compounding lateness.
type Director struct {
	cfg      config.DirectorConfig
	sequence Sequence
	tonic    float64

	metronome *Metronome

	active       bool
	index        int
	attemptsLeft int

	// pending is the one outstanding play request; scheduling twice before
	// the host plays keeps only the latest
	pending *PlayRequest

	played             bool
	lastPlayMs         int64
	lastPlayDurationMs int64
	playCounts         map[string]int
}

// NewDirector creates an idle director over a sequence
func NewDirector(cfg config.DirectorConfig, sequence Sequence, tonicHz float64) *Director {
	return &Director{
		cfg:          cfg,
		sequence:     sequence,
		tonic:        tonicHz,
		metronome:    NewMetronome(cfg.TempoBPM, 0),
		attemptsLeft: cfg.AttemptCount,
		playCounts:   make(map[string]int),
	}
}

// Active reports whether the drill is running
func (d *Director) Active() bool {
	return d.active
}

// Index is the current sequence position
func (d *Director) Index() int {
	return d.index
}

// AttemptsLeft is the remaining retry countdown for the current note
func (d *Director) AttemptsLeft() int {
	return d.attemptsLeft
}

// SetTonic rebases the drill on a new tonic. Takes effect from the next
// scheduled note.
func (d *Director) SetTonic(tonicHz float64) {
	d.tonic = tonicHz
}

// Arm starts the drill from the current position: fresh countdown, fresh
// timing baseline, and the current note scheduled for playback
func (d *Director) Arm(nowMs int64) {
	d.active = true
	d.attemptsLeft = d.cfg.AttemptCount
	d.metronome.Reset(nowMs)
	d.schedule(d.index)
}

// Disarm stops the drill and drops any unplayed request. Position is kept
// so a re-Arm resumes where the singer left off.
func (d *Director) Disarm() {
	d.active = false
	d.pending = nil
}

// CurrentTarget is the scheduling context for the note the singer should
// produce next
func (d *Director) CurrentTarget(nowMs int64) Target {
	return Target{
		Label:              d.sequence.Labels[d.index],
		ExpectedStartMs:    d.ExpectedStartMs(nowMs),
		ExpectedDurationMs: d.sequence.DurationsMs[d.index],
	}
}

// OnVerdict reacts to a completed utterance's verdict. No-op while the
// drill is not running.
func (d *Director) OnVerdict(passed bool, nowMs int64) Decision {
	if !d.active {
		return Decision{Index: d.index, AttemptsLeft: d.attemptsLeft}
	}

	if passed {
		d.index = (d.index + 1) % d.sequence.Len()
		d.attemptsLeft = d.cfg.AttemptCount
		d.metronome.Reset(nowMs)
		d.schedule(d.index)
		return Decision{Advanced: true, Index: d.index, AttemptsLeft: d.attemptsLeft}
	}

	d.attemptsLeft = max(0, d.attemptsLeft-1)
	expired := d.attemptsLeft == 0
	if expired {
		d.attemptsLeft = d.cfg.AttemptCount
		d.metronome.Reset(nowMs)
	}
	d.schedule(d.index)
	return Decision{CountdownExpired: expired, Index: d.index, AttemptsLeft: d.attemptsLeft}
}

// schedule queues a play request for the note at index, replacing any
// still-pending one
func (d *Director) schedule(index int) {
	label := d.sequence.Labels[index]
	note, ok := notes.NoteByLabel(label)
	if !ok {
		return
	}
	d.pending = &PlayRequest{
		Label:  label,
		FreqHz: d.tonic * math.Pow(2, float64(note.Semitone)/12),
	}
}

// PendingPlay returns the outstanding play request, if any
func (d *Director) PendingPlay() (PlayRequest, bool) {
	if d.pending == nil {
		return PlayRequest{}, false
	}
	return *d.pending, true
}

// CancelPending drops the outstanding request. Called when the singer
// starts before the note sounds, so playback never talks over them.
func (d *Director) CancelPending() {
	d.pending = nil
}

// NotePlayed records that the host sounded a target note. A non-positive
// duration means the host could not measure playback length (oscillator
// path) and the configured fallback applies.
func (d *Director) NotePlayed(label string, durationMs, nowMs int64) {
	if d.pending != nil && d.pending.Label == label {
		d.pending = nil
	}
	if durationMs <= 0 {
		durationMs = d.cfg.FallbackNoteDurationMs
	}
	d.played = true
	d.lastPlayMs = nowMs
	d.lastPlayDurationMs = durationMs
	d.playCounts[label]++
}

// LastPlayMs returns when playback of the current target last started.
// ok=false before any note has played.
func (d *Director) LastPlayMs() (int64, bool) {
	return d.lastPlayMs, d.played
}

// ExpectedStartMs is when the singer is expected to enter: the end of the
// last playback plus the configured gap. Before any playback it is simply
// now, leaving the singer unconstrained.
func (d *Director) ExpectedStartMs(nowMs int64) int64 {
	if !d.played {
		return nowMs
	}
	return d.lastPlayMs + d.lastPlayDurationMs + d.cfg.TargetNoteGapMs
}

// PlayCount reports how many times a note has been sounded this session
func (d *Director) PlayCount(label string) int {
	return d.playCounts[label]
}

// Metronome exposes the drill's timing baseline
func (d *Director) Metronome() *Metronome {
	return d.metronome
}

// Schedule returns the metronome-grid expected start of every sequence
// step measured from the current anchor, for timeline display
func (d *Director) Schedule() []int64 {
	schedule := make([]int64, d.sequence.Len())
	for i := range schedule {
		schedule[i] = d.metronome.ExpectedStartMs(i, d.sequence.DurationsMs)
	}
	return schedule
}
