package trainer

import (
	"math"
	"testing"
)

func TestNewSequenceValidation(t *testing.T) {
	tests := []struct {
		name      string
		labels    []string
		durations []int64
		wantErr   bool
	}{
		{"valid", []string{"S", "P"}, []int64{1000, 1000}, false},
		{"with octave markers", []string{"S", "S'", "N2."}, []int64{500, 500, 500}, false},
		{"empty", nil, nil, true},
		{"length mismatch", []string{"S", "P"}, []int64{1000}, true},
		{"unknown label", []string{"S", "X"}, []int64{1000, 1000}, true},
		{"mixed octave suffix", []string{"S'."}, []int64{1000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSequence(tt.labels, tt.durations)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSequence error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModeSequence(t *testing.T) {
	tests := []struct {
		mode string
		want []string
	}{
		{"sp", []string{"S", "P"}},
		{"sps", []string{"S", "P", "S'"}},
		{"sargam", []string{"S", "R2", "G2", "M1", "P", "D2", "N2", "S'"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			sequence, err := ModeSequence(tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if len(sequence.Labels) != len(tt.want) {
				t.Fatalf("labels = %v, want %v", sequence.Labels, tt.want)
			}
			for i, label := range tt.want {
				if sequence.Labels[i] != label {
					t.Errorf("Labels[%d] = %q, want %q", i, sequence.Labels[i], label)
				}
				if sequence.DurationsMs[i] != DefaultNoteDurationMs {
					t.Errorf("DurationsMs[%d] = %d, want %d", i, sequence.DurationsMs[i], DefaultNoteDurationMs)
				}
			}
		})
	}

	if _, err := ModeSequence("chromatic"); err == nil {
		t.Error("ModeSequence accepted an unknown mode")
	}
}

func TestTonicOptions(t *testing.T) {
	options := TonicOptions()
	if len(options) != 48 {
		t.Fatalf("len = %d, want 48 (C3 through B6)", len(options))
	}

	if options[0].Label != "C3" {
		t.Errorf("first option = %q, want C3", options[0].Label)
	}
	if math.Abs(options[0].FreqHz-130.81) > 0.01 {
		t.Errorf("C3 = %v Hz, want ~130.81", options[0].FreqHz)
	}

	if options[len(options)-1].Label != "B6" {
		t.Errorf("last option = %q, want B6", options[len(options)-1].Label)
	}

	tonic := DefaultTonic()
	if tonic.Label != "A3" {
		t.Errorf("default tonic = %q, want A3", tonic.Label)
	}
	if math.Abs(tonic.FreqHz-220) > 1e-9 {
		t.Errorf("default tonic = %v Hz, want 220", tonic.FreqHz)
	}
}
