package temporal

import (
	"testing"

	"github.com/RyanBlaney/svara-coach/algorithms/pitch"
)

// constantBuffer has RMS exactly equal to its amplitude
func constantBuffer(amplitude float64, n int) []float64 {
	buffer := make([]float64, n)
	for i := range buffer {
		buffer[i] = amplitude
	}
	return buffer
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name          string
		raw           pitch.Result
		buffer        []float64
		wantPitch     float64
		wantHasSignal bool
	}{
		{
			name:          "voiced frame in range",
			raw:           pitch.Result{Pitch: 220, Confidence: 0.9},
			buffer:        constantBuffer(0.05, 512),
			wantPitch:     220,
			wantHasSignal: true,
		},
		{
			name:          "below vocal range",
			raw:           pitch.Result{Pitch: 50, Confidence: 0.9},
			buffer:        constantBuffer(0.05, 512),
			wantPitch:     0,
			wantHasSignal: false,
		},
		{
			name:          "above vocal range",
			raw:           pitch.Result{Pitch: 1200, Confidence: 0.9},
			buffer:        constantBuffer(0.05, 512),
			wantPitch:     0,
			wantHasSignal: false,
		},
		{
			name:          "silent frame zeroes pitch",
			raw:           pitch.Result{Pitch: 220, Confidence: 0.9},
			buffer:        constantBuffer(0.001, 512),
			wantPitch:     0,
			wantHasSignal: false,
		},
		{
			name:          "low confidence keeps pitch but no signal",
			raw:           pitch.Result{Pitch: 220, Confidence: 0.2},
			buffer:        constantBuffer(0.05, 512),
			wantPitch:     220,
			wantHasSignal: false,
		},
		{
			name:          "no pitch resolved",
			raw:           pitch.Result{},
			buffer:        constantBuffer(0.05, 512),
			wantPitch:     0,
			wantHasSignal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := classifier.Classify(tt.raw, tt.buffer)
			if analysis.Pitch != tt.wantPitch {
				t.Errorf("Pitch = %v, want %v", analysis.Pitch, tt.wantPitch)
			}
			if analysis.HasSignal != tt.wantHasSignal {
				t.Errorf("HasSignal = %v, want %v", analysis.HasSignal, tt.wantHasSignal)
			}
		})
	}
}

func TestClassifyRangeGateBeforeConfidence(t *testing.T) {
	// An out-of-range estimate must be fully discarded, confidence included
	classifier := NewClassifier()
	analysis := classifier.Classify(pitch.Result{Pitch: 30, Confidence: 0.95}, constantBuffer(0.05, 512))
	if analysis.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 after range gate", analysis.Confidence)
	}
}

func TestSilent(t *testing.T) {
	classifier := NewClassifier()
	if !classifier.Silent(0.005) {
		t.Error("Silent(0.005) = false, want true")
	}
	if classifier.Silent(0.02) {
		t.Error("Silent(0.02) = true, want false")
	}
}
