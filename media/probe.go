package media

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/process"
)

// ProbeResult is the parsed ffprobe output for one file.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// Format captures container-level metadata.
type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

func (r *ProbeResult) countType(kind string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			n++
		}
	}
	return n
}

// AudioStreamCount returns the number of audio streams.
func (r *ProbeResult) AudioStreamCount() int { return r.countType("audio") }

// VideoStreamCount returns the number of video streams.
func (r *ProbeResult) VideoStreamCount() int { return r.countType("video") }

// AudioCodec returns the codec of the first audio stream, or "" if there is none.
func (r *ProbeResult) AudioCodec() string {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			return s.CodecName
		}
	}
	return ""
}

// DurationSeconds returns the container duration, or 0 when ffprobe did not report one.
func (r *ProbeResult) DurationSeconds() float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil || math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// Prober runs ffprobe.
type Prober struct {
	Binary string
	Runner process.Runner
}

// Probe inspects the streams and container of path.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	res, err := p.Runner.Run(ctx, process.Command{
		Binary: p.Binary,
		Args:   []string{"-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", path},
	})
	if err != nil {
		return nil, probeFailed(err, res)
	}

	var out ProbeResult
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return nil, probeFailed(err, res)
	}
	return &out, nil
}

func probeFailed(err error, res *process.Result) error {
	return apperrors.New(apperrors.ErrCodeInternal, "Failed to probe media file.", http.StatusInternalServerError).
		WithCause(err).
		WithDetail("stderr", res.StderrTail(3))
}
