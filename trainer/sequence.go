package trainer

import (
	"fmt"
	"math"
	"slices"

	"github.com/RyanBlaney/svara-coach/notes"
)

// DefaultNoteDurationMs is assigned to every step of a sequence built from
// labels alone
const DefaultNoteDurationMs = 1000

// Sequence is an ordered drill of target notes with per-note durations.
// Labels and DurationsMs are always the same length.
type Sequence struct {
	Labels      []string `json:"labels"`
	DurationsMs []int64  `json:"durations_ms"`
}

// NewSequence builds a sequence, validating every label against the
// octave-marker grammar and pairing labels with durations
func NewSequence(labels []string, durationsMs []int64) (Sequence, error) {
	if len(labels) == 0 {
		return Sequence{}, fmt.Errorf("sequence: no labels")
	}
	if len(durationsMs) != len(labels) {
		return Sequence{}, fmt.Errorf("sequence: %d labels but %d durations", len(labels), len(durationsMs))
	}
	for _, label := range labels {
		if _, ok := notes.NoteByLabel(label); !ok {
			return Sequence{}, fmt.Errorf("sequence: invalid note label %q", label)
		}
	}
	return Sequence{
		Labels:      slices.Clone(labels),
		DurationsMs: slices.Clone(durationsMs),
	}, nil
}

// Len reports the number of steps
func (s Sequence) Len() int {
	return len(s.Labels)
}

var modeSequences = map[string][]string{
	"sp":     {"S", "P"},
	"sps":    {"S", "P", "S'"},
	"sargam": {"S", "R2", "G2", "M1", "P", "D2", "N2", "S'"},
}

// ModeSequence returns the built-in drill for a practice mode name
// ("sp", "sps", "sargam"), every note at the default duration
func ModeSequence(mode string) (Sequence, error) {
	labels, ok := modeSequences[mode]
	if !ok {
		return Sequence{}, fmt.Errorf("sequence: unknown mode %q", mode)
	}
	durations := make([]int64, len(labels))
	for i := range durations {
		durations[i] = DefaultNoteDurationMs
	}
	return NewSequence(labels, durations)
}

// TonicOption is one selectable tonic: a concert-pitch note name with its
// frequency
type TonicOption struct {
	Label  string  `json:"label"`
	FreqHz float64 `json:"freq_hz"`
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// TonicOptions returns the selectable tonic table, C3 through B6 in
// equal temperament (A4 = 440 Hz)
func TonicOptions() []TonicOption {
	options := make([]TonicOption, 4*12)
	for i := range options {
		midi := 12*(3+i/12) + i%12
		options[i] = TonicOption{
			Label:  fmt.Sprintf("%s%d", noteNames[midi%12], midi/12-1),
			FreqHz: 440 * math.Pow(2, float64(midi-69)/12),
		}
	}
	return options
}

// DefaultTonicIndex selects A3 (220 Hz), a comfortable middle for most voices
const DefaultTonicIndex = 21

// DefaultTonic returns the A3 tonic option
func DefaultTonic() TonicOption {
	return TonicOptions()[DefaultTonicIndex]
}
