// Package notes maps frequencies to movable-solfège scale degrees relative
// to a tonic. Labels use the 12-symbol sargam alphabet with octave markers
// appended: one apostrophe per octave above, one dot per octave below
// (S' is the tonic one octave up, N2. the leading tone below).
package notes

import (
	"fmt"
	"math"
	"strings"
)

var noteLabels = [12]string{
	"S", "R1", "R2", "G1", "G2", "M1", "M2", "P", "D1", "D2", "N1", "N2",
}

const (
	// InTuneCents is the deviation window within which a note counts as in tune
	InTuneCents = 50.0

	// MatchMinConfidence is the estimator confidence required for match
	// scoring; stricter than segmentation because scoring a note demands a
	// cleaner signal than detecting that one is being sung
	MatchMinConfidence = 0.7
)

// Note is a scale degree relative to the tonic, octave-unbounded
// (Semitone -12 is the same degree one octave below the tonic).
type Note struct {
	Label    string `json:"label"`
	Semitone int    `json:"semitone"`
}

// NoteValue converts a frequency to its continuous semitone position
// relative to the tonic: 12*log2(pitch/tonic)
func NoteValue(tonic, pitchHz float64) float64 {
	return 12 * math.Log2(pitchHz/tonic)
}

// CentsOff returns the log-frequency deviation of actual from target in cents
func CentsOff(target, actual float64) float64 {
	return 1200 * math.Log2(actual/target)
}

// RoundSemitone rounds a continuous semitone position to the nearest
// integer degree. Half-semitone boundaries round away from zero
// (math.Round); pinned by test.
func RoundSemitone(value float64) int {
	return int(math.Round(value))
}

// LabelForSemitone renders a semitone offset as a label in the
// octave-marker grammar. Inverse of NoteByLabel.
func LabelForSemitone(semitone int) string {
	baseIndex := ((semitone % 12) + 12) % 12
	octave := (semitone - baseIndex) / 12

	label := noteLabels[baseIndex]
	if octave > 0 {
		label += strings.Repeat("'", octave)
	} else if octave < 0 {
		label += strings.Repeat(".", -octave)
	}
	return label
}

// NoteByLabel parses a label back to a note. The octave-marker suffix must
// be homogeneous: all apostrophes or all dots, never mixed. Unknown base
// symbols or malformed suffixes report ok=false, propagated by callers as
// "no note" rather than an error.
func NoteByLabel(label string) (Note, bool) {
	base := strings.TrimRight(label, "'.")
	suffix := label[len(base):]

	baseIndex := -1
	for i, l := range noteLabels {
		if l == base {
			baseIndex = i
			break
		}
	}
	if baseIndex == -1 {
		return Note{}, false
	}

	octave := 0
	if suffix != "" {
		switch {
		case strings.Count(suffix, "'") == len(suffix):
			octave = len(suffix)
		case strings.Count(suffix, ".") == len(suffix):
			octave = -len(suffix)
		default:
			return Note{}, false
		}
	}

	return Note{Label: label, Semitone: baseIndex + 12*octave}, true
}

// ClosestNote is the nearest scale degree to a measured frequency
type ClosestNote struct {
	Note  Note    `json:"note"`
	Cents float64 `json:"cents"` // signed deviation from the nearest degree

	// DisplayLabel carries a signed fractional-semitone annotation when the
	// deviation is at least half a cent, e.g. "P +0.04"
	DisplayLabel string `json:"display_label"`
}

// Closest maps a frequency to the nearest scale degree. Reports ok=false
// when the frequency has no finite semitone position (zero or negative).
func Closest(tonic, pitchHz float64) (ClosestNote, bool) {
	value := NoteValue(tonic, pitchHz)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ClosestNote{}, false
	}

	nearest := RoundSemitone(value)
	label := LabelForSemitone(nearest)
	fraction := value - float64(nearest)

	display := label
	if math.Abs(fraction) >= 0.005 {
		sign := "+"
		if fraction < 0 {
			sign = "-"
		}
		display = fmt.Sprintf("%s %s%.2f", label, sign, math.Abs(fraction))
	}

	return ClosestNote{
		Note:         Note{Label: label, Semitone: nearest},
		Cents:        fraction * 100,
		DisplayLabel: display,
	}, true
}

// Match scores a single frame against a target label
type Match struct {
	Closest ClosestNote `json:"closest"`

	// IsGood requires the frame to be in tune, on the target degree, and
	// confidently pitched, all at once
	IsGood bool `json:"is_good"`
}

// MatchTarget scores a pitched frame against the target label. Reports
// ok=false when there is no pitch or the confidence is below the match bar.
func MatchTarget(pitchHz, confidence, tonic float64, targetLabel string) (Match, bool) {
	if pitchHz <= 0 || confidence < MatchMinConfidence {
		return Match{}, false
	}
	closest, ok := Closest(tonic, pitchHz)
	if !ok {
		return Match{}, false
	}

	tuned := math.Abs(closest.Cents) <= InTuneCents
	onTarget := closest.Note.Label == targetLabel
	strong := confidence >= MatchMinConfidence

	return Match{
		Closest: closest,
		IsGood:  tuned && onTarget && strong,
	}, true
}
