package trainer

import (
	"math"
	"testing"
)

func TestMetronomeMsPerBeat(t *testing.T) {
	if m := NewMetronome(60, 0); m.MsPerBeat != 1000 {
		t.Errorf("MsPerBeat at 60 BPM = %v, want 1000", m.MsPerBeat)
	}
	if m := NewMetronome(120, 0); m.MsPerBeat != 500 {
		t.Errorf("MsPerBeat at 120 BPM = %v, want 500", m.MsPerBeat)
	}
}

func TestMetronomeRejectsBadTempo(t *testing.T) {
	for _, bpm := range []float64{0, -30} {
		m := NewMetronome(bpm, 0)
		if m.BPM != 60 || m.MsPerBeat != 1000 {
			t.Errorf("NewMetronome(%v) = {BPM:%v MsPerBeat:%v}, want the 60 BPM fallback", bpm, m.BPM, m.MsPerBeat)
		}
	}
}

func TestMetronomeExpectedStartMs(t *testing.T) {
	m := NewMetronome(60, 1000)
	durations := []int64{1000, 500, 800}

	tests := []struct {
		index int
		want  int64
	}{
		{0, 1000},
		{1, 2000},
		{2, 2500},
		{5, 3300}, // past the end: all durations consumed
	}
	for _, tt := range tests {
		if got := m.ExpectedStartMs(tt.index, durations); got != tt.want {
			t.Errorf("ExpectedStartMs(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestMetronomeBeatAt(t *testing.T) {
	m := NewMetronome(60, 1000)

	beat := m.BeatAt(3500)
	if beat.ElapsedMs != 2500 {
		t.Errorf("ElapsedMs = %d, want 2500", beat.ElapsedMs)
	}
	if math.Abs(beat.BeatsElapsed-2.5) > 1e-9 {
		t.Errorf("BeatsElapsed = %v, want 2.5", beat.BeatsElapsed)
	}
	if beat.CurrentBeat != 2 {
		t.Errorf("CurrentBeat = %d, want 2", beat.CurrentBeat)
	}
	if math.Abs(beat.BeatProgress-0.5) > 1e-9 {
		t.Errorf("BeatProgress = %v, want 0.5", beat.BeatProgress)
	}
}

func TestMetronomeReset(t *testing.T) {
	m := NewMetronome(60, 1000)
	m.Reset(5000)
	if m.StartMs != 5000 {
		t.Errorf("StartMs = %d, want 5000 after Reset", m.StartMs)
	}
	if beat := m.BeatAt(5000); beat.BeatsElapsed != 0 {
		t.Errorf("BeatsElapsed right after Reset = %v, want 0", beat.BeatsElapsed)
	}
}
