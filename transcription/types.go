package transcription

import "time"

// Segment is one time-aligned piece of a transcript. Start and End are in
// seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Result is a transcript plus the timings of the work that produced it.
type Result struct {
	Segments []Segment `json:"transcript"`
	// DetectedLanguage is the language code reported for the first chunk,
	// empty when the backend did not report one.
	DetectedLanguage string `json:"detected_language,omitempty"`
	// Success is set once every chunk completed. The job envelope carries it
	// to clients as status_code.
	Success bool `json:"-"`

	SegmentDuration       time.Duration `json:"-"`
	TranscriptionDuration time.Duration `json:"-"`
	Chunks                int           `json:"-"`
}

// ShiftSegments returns a copy of segs with offset seconds added to every
// Start and End.
func ShiftSegments(segs []Segment, offset float64) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{Text: s.Text, Start: s.Start + offset, End: s.End + offset}
	}
	return out
}
