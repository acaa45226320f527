package trainer

import "math"

// Metronome is the timing baseline of a drill run. The start timestamp
// anchors the schedule; expected note entries are cumulative sequence
// durations past it. Reset on every advance and every retry-countdown
// expiry so the schedule follows the singer rather than punishing drift.
type Metronome struct {
	BPM       float64 `json:"bpm"`
	MsPerBeat float64 `json:"ms_per_beat"`
	StartMs   int64   `json:"start_ms"`
}

// NewMetronome creates a metronome anchored at startMs. A non-positive
// tempo falls back to 60 BPM.
func NewMetronome(bpm float64, startMs int64) *Metronome {
	if bpm <= 0 {
		bpm = 60
	}
	return &Metronome{
		BPM:       bpm,
		MsPerBeat: 60000 / bpm,
		StartMs:   startMs,
	}
}

// ExpectedStartMs is the scheduled entry time of the note at index:
// the anchor plus the durations of all preceding notes
func (m *Metronome) ExpectedStartMs(index int, durationsMs []int64) int64 {
	var cumulative int64
	for i := 0; i < index && i < len(durationsMs); i++ {
		cumulative += durationsMs[i]
	}
	return m.StartMs + cumulative
}

// Beat is the metronome position at a point in time
type Beat struct {
	ElapsedMs    int64   `json:"elapsed_ms"`
	BeatsElapsed float64 `json:"beats_elapsed"`
	CurrentBeat  int     `json:"current_beat"`
	BeatProgress float64 `json:"beat_progress"` // fraction into the current beat
}

// BeatAt computes the beat position at nowMs
func (m *Metronome) BeatAt(nowMs int64) Beat {
	elapsed := nowMs - m.StartMs
	beats := float64(elapsed) / m.MsPerBeat
	return Beat{
		ElapsedMs:    elapsed,
		BeatsElapsed: beats,
		CurrentBeat:  int(math.Floor(beats)),
		BeatProgress: beats - math.Floor(beats),
	}
}

// Reset re-anchors the schedule at nowMs
func (m *Metronome) Reset(nowMs int64) {
	m.StartMs = nowMs
}
