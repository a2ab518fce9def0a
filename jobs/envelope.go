package jobs

import (
	"encoding/json"
	"maps"

	"github.com/kbukum/scribe/transcription"
)

// Envelope is the result of a job as returned to callers and webhooks:
// {status_code, data, ...header}.
type Envelope struct {
	StatusCode int
	Data       map[string]any
	// Header holds extra top-level fields such as is_transcript or title.
	Header map[string]any
}

// MarshalJSON flattens Header next to status_code and data.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Header)+2)
	maps.Copy(out, e.Header)
	out["status_code"] = e.StatusCode
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	out["data"] = data
	return json.Marshal(out)
}

// UnmarshalJSON splits unknown top-level fields back into Header.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Envelope{}
	for k, v := range raw {
		var err error
		switch k {
		case "status_code":
			err = json.Unmarshal(v, &e.StatusCode)
		case "data":
			err = json.Unmarshal(v, &e.Data)
		default:
			if e.Header == nil {
				e.Header = make(map[string]any)
			}
			var val any
			err = json.Unmarshal(v, &val)
			e.Header[k] = val
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Detail returns the failure detail, or "" for a successful envelope.
func (e Envelope) Detail() string {
	d, _ := e.Data["detail"].(string)
	return d
}

// Output is what a job handler produces on success.
type Output struct {
	// Transcript is the merged transcript, nil for caption results.
	Transcript *transcription.Result
	// Data is merged into the envelope data.
	Data map[string]any
	// Header is placed at the top level of the envelope.
	Header map[string]any
}
