package pitch

import (
	"math"
	"testing"
)

func sineWave(freq, sampleRate float64, n int, amplitude float64) []float64 {
	buffer := make([]float64, n)
	for i := range buffer {
		buffer[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return buffer
}

func TestDetectSineWaves(t *testing.T) {
	const (
		sampleRate = 44100.0
		bufferSize = 4096
	)

	freqs := []float64{82.41, 110, 146.83, 220, 261.63, 329.63, 440, 880}

	for _, mode := range []struct {
		name   string
		useFFT bool
	}{
		{"direct", false},
		{"fft", true},
	} {
		t.Run(mode.name, func(t *testing.T) {
			detector := NewDetectorWithParams(Params{Threshold: 0.15, UseFFT: mode.useFFT})
			for _, freq := range freqs {
				buffer := sineWave(freq, sampleRate, bufferSize, 0.5)
				result := detector.Detect(buffer, sampleRate)

				if result.Pitch == 0 {
					t.Errorf("%.2f Hz: no pitch detected", freq)
					continue
				}
				if relErr := math.Abs(result.Pitch-freq) / freq; relErr > 0.01 {
					t.Errorf("%.2f Hz: detected %.2f Hz (%.2f%% off)", freq, result.Pitch, relErr*100)
				}
				if result.Confidence < 0.5 {
					t.Errorf("%.2f Hz: confidence %.3f, want > 0.5 for a clean sine", freq, result.Confidence)
				}
			}
		})
	}
}

func TestDetectDegenerateInput(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name       string
		buffer     []float64
		sampleRate float64
	}{
		{"silence", make([]float64, 4096), 44100},
		{"empty buffer", nil, 44100},
		{"too short", []float64{0.1, 0.2, 0.3}, 44100},
		{"zero sample rate", sineWave(220, 44100, 4096, 0.5), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detector.Detect(tt.buffer, tt.sampleRate)
			if result.Pitch != 0 || result.Confidence != 0 {
				t.Errorf("got %+v, want zero result", result)
			}
		})
	}
}

func TestDetectConstantInput(t *testing.T) {
	buffer := make([]float64, 4096)
	for i := range buffer {
		buffer[i] = 0.5
	}
	result := NewDetector().Detect(buffer, 44100)
	if result.Pitch != 0 {
		t.Errorf("constant input produced pitch %.2f, want 0", result.Pitch)
	}
}

func TestFFTPathMatchesDirect(t *testing.T) {
	const sampleRate = 44100.0
	direct := NewDetectorWithParams(Params{Threshold: 0.15})
	fast := NewDetectorWithParams(Params{Threshold: 0.15, UseFFT: true})

	for _, freq := range []float64{110, 261.63, 523.25} {
		buffer := sineWave(freq, sampleRate, 4096, 0.4)
		a := direct.Detect(buffer, sampleRate)
		b := fast.Detect(buffer, sampleRate)

		if a.Pitch == 0 || b.Pitch == 0 {
			t.Fatalf("%.2f Hz: direct=%.2f fft=%.2f, expected both to resolve", freq, a.Pitch, b.Pitch)
		}
		if relErr := math.Abs(a.Pitch-b.Pitch) / a.Pitch; relErr > 0.005 {
			t.Errorf("%.2f Hz: direct=%.4f fft=%.4f diverge by %.3f%%", freq, a.Pitch, b.Pitch, relErr*100)
		}
	}
}

func TestNewDetectorWithParamsRejectsBadThreshold(t *testing.T) {
	detector := NewDetectorWithParams(Params{Threshold: -1})
	if got := detector.Params().Threshold; got != DefaultParams().Threshold {
		t.Errorf("threshold = %v, want default %v", got, DefaultParams().Threshold)
	}
}
