package trainer

import "slices"

// TracePoint is one pitched frame from the trainer's own playback capture
type TracePoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Pitch       float64 `json:"pitch"`
}

// Trace is the rolling record of trainer playback pitch, the reference
// side of curve comparison. Bounded to maxPoints; older points fall off
// the front.
type Trace struct {
	maxPoints int
	points    []TracePoint
}

// NewTrace creates an empty trace holding at most maxPoints points
func NewTrace(maxPoints int) *Trace {
	return &Trace{maxPoints: maxPoints}
}

// Append records one pitched playback frame
func (t *Trace) Append(pitchHz float64, timestampMs int64) {
	t.points = append(t.points, TracePoint{TimestampMs: timestampMs, Pitch: pitchHz})
	if t.maxPoints > 0 && len(t.points) > t.maxPoints {
		t.points = t.points[len(t.points)-t.maxPoints:]
	}
}

// Window returns the points with fromMs <= timestamp <= toMs, in order.
// The slice is a copy.
func (t *Trace) Window(fromMs, toMs int64) []TracePoint {
	var out []TracePoint
	for _, p := range t.points {
		if p.TimestampMs >= fromMs && p.TimestampMs <= toMs {
			out = append(out, p)
		}
	}
	return out
}

// Points returns a copy of the full trace
func (t *Trace) Points() []TracePoint {
	return slices.Clone(t.points)
}

// Len reports the number of recorded points
func (t *Trace) Len() int {
	return len(t.points)
}

// Reset discards all recorded points
func (t *Trace) Reset() {
	t.points = nil
}
