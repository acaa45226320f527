package trainer

import (
	"testing"

	"github.com/RyanBlaney/svara-coach/algorithms/temporal"
	"github.com/RyanBlaney/svara-coach/trainer/config"
)

func voicedFrame(pitchHz float64) temporal.Analysis {
	return temporal.Analysis{Pitch: pitchHz, Confidence: 0.9, RMS: 0.05, HasSignal: true}
}

func silentFrame() temporal.Analysis {
	return temporal.Analysis{RMS: 0.001}
}

func testTarget() Target {
	return Target{Label: "P", ExpectedStartMs: 0, ExpectedDurationMs: 400}
}

func TestSegmenterOpensOnSilenceToSignalEdge(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	event := s.Process(voicedFrame(220), 0, testTarget())
	if !event.Opened {
		t.Fatal("first voiced frame did not open an utterance")
	}
	if s.Current() == nil {
		t.Fatal("no current utterance after open")
	}
	if s.Current().ExpectedNote != "P" {
		t.Errorf("ExpectedNote = %q, want P", s.Current().ExpectedNote)
	}

	// A sustained voiced run opens exactly once
	event = s.Process(voicedFrame(220), 10, testTarget())
	if event.Opened {
		t.Error("second consecutive voiced frame opened again")
	}
	if got := len(s.Current().Samples); got != 2 {
		t.Errorf("samples = %d, want 2", got)
	}
}

func TestSegmenterDebouncedClose(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	for now := int64(0); now <= 300; now += 10 {
		s.Process(voicedFrame(220), now, testTarget())
	}

	// Silence must persist for the full debounce window past the last
	// valid sample before the utterance closes
	for now := int64(310); now < 400; now += 10 {
		event := s.Process(silentFrame(), now, testTarget())
		if event.Completed != nil || event.Discarded != nil {
			t.Fatalf("closed at %dms, before the 100ms debounce elapsed", now)
		}
	}

	event := s.Process(silentFrame(), 400, testTarget())
	if event.Completed == nil {
		t.Fatal("utterance did not close at the debounce boundary")
	}
	if event.Completed.EndMs != 400 {
		t.Errorf("EndMs = %d, want 400", event.Completed.EndMs)
	}
	if !event.Completed.Closed {
		t.Error("completed utterance not marked closed")
	}
	if s.Current() != nil {
		t.Error("segmenter still has a current utterance after close")
	}
}

func TestSegmenterBriefDropoutDoesNotSplit(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	s.Process(voicedFrame(220), 0, testTarget())
	s.Process(voicedFrame(220), 10, testTarget())

	// 50ms dropout, well under the debounce window
	s.Process(silentFrame(), 20, testTarget())
	s.Process(silentFrame(), 60, testTarget())

	event := s.Process(voicedFrame(220), 70, testTarget())
	if event.Opened {
		t.Error("dropout shorter than the debounce window split the utterance")
	}
	if got := len(s.Current().Samples); got != 3 {
		t.Errorf("samples = %d, want 3", got)
	}
}

func TestSegmenterDiscardsShortUtterance(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	s.Process(voicedFrame(220), 0, testTarget())

	event := s.Process(silentFrame(), 100, testTarget())
	if event.Discarded == nil {
		t.Fatal("100ms utterance was not discarded (minimum is 150ms)")
	}
	if event.Completed != nil {
		t.Error("discarded utterance also reported as completed")
	}
}

func TestSegmenterReopensAfterClose(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	for now := int64(0); now <= 200; now += 10 {
		s.Process(voicedFrame(220), now, testTarget())
	}
	if event := s.Process(silentFrame(), 300, testTarget()); event.Completed == nil {
		t.Fatal("utterance did not close")
	}

	event := s.Process(voicedFrame(220), 310, testTarget())
	if !event.Opened {
		t.Error("voiced frame after close did not open a new utterance")
	}
}

func TestSegmenterForceClose(t *testing.T) {
	s := NewSegmenter(config.DefaultSegmenterConfig())

	if got := s.ForceClose(100); got != nil {
		t.Errorf("ForceClose while idle = %+v, want nil", got)
	}

	s.Process(voicedFrame(220), 0, testTarget())
	closed := s.ForceClose(50)
	if closed == nil {
		t.Fatal("ForceClose returned nil with an open utterance")
	}
	if !closed.Closed || closed.EndMs != 50 {
		t.Errorf("closed = {Closed:%v EndMs:%d}, want {true 50}", closed.Closed, closed.EndMs)
	}
	if s.Current() != nil {
		t.Error("current utterance survived ForceClose")
	}
}
