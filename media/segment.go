package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/process"
)

// DefaultChunkSeconds is the chunk length used when a job does not set one.
const DefaultChunkSeconds = 1200

// Chunk is a contiguous slice of a job's audio.
type Chunk struct {
	Index int
	Path  string
	// Offset is the chunk start within the source audio, in seconds.
	Offset float64
	// Source is true when the chunk is the unsplit input file itself.
	Source bool
}

// Segmenter splits audio into ordered chunks of at most chunkSeconds each.
type Segmenter struct {
	prober *Prober
	runner process.Runner
	ffmpeg string
	log    *logger.Logger
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(cfg Config, runner process.Runner, log *logger.Logger) *Segmenter {
	cfg.ApplyDefaults()
	return &Segmenter{
		prober: &Prober{Binary: cfg.FFprobePath, Runner: runner},
		runner: runner,
		ffmpeg: cfg.FFmpegPath,
		log:    log.WithComponent("media.segmenter"),
	}
}

// Segment splits path at chunkSeconds boundaries using stream copy.
// Chunk i starts at i*chunkSeconds; only the last chunk may be shorter.
// Audio no longer than one chunk comes back as a single chunk that is the
// input itself. Chunk files land next to the input and sort by index.
func (s *Segmenter) Segment(ctx context.Context, path string, chunkSeconds int) ([]Chunk, error) {
	if chunkSeconds <= 0 {
		return nil, apperrors.InvalidInput("chunk_seconds", "must be positive")
	}

	probe, err := s.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if d := probe.DurationSeconds(); d > 0 && d <= float64(chunkSeconds) {
		return []Chunk{{Index: 0, Path: path, Source: true}}, nil
	}

	ext := filepath.Ext(path)
	prefix := strings.TrimSuffix(path, ext) + "_chunk_"
	res, err := s.runner.Run(ctx, process.Command{
		Binary: s.ffmpeg,
		Args: []string{
			"-i", path,
			"-f", "segment",
			"-segment_time", strconv.Itoa(chunkSeconds),
			"-c", "copy",
			"-reset_timestamps", "1",
			prefix + "%05d" + ext,
			"-y",
		},
	})
	if err != nil {
		RemoveChunks(s.listChunkFiles(prefix, ext))
		return nil, apperrors.New(apperrors.ErrCodeInternal, "FFmpeg error while segmenting audio.", http.StatusInternalServerError).
			WithCause(err).
			WithDetail("stderr", res.StderrTail(3))
	}

	files := s.listChunkFiles(prefix, ext)
	if len(files) == 0 {
		return nil, apperrors.Invariant("segmenter produced no chunks")
	}

	chunks := make([]Chunk, len(files))
	for i, f := range files {
		chunks[i] = Chunk{Index: i, Path: f, Offset: float64(i * chunkSeconds)}
	}
	s.log.Info("audio segmented", logger.Fields(
		"chunks", len(chunks), "chunk_seconds", chunkSeconds, "duration_s", probe.DurationSeconds()))
	return chunks, nil
}

// listChunkFiles returns the chunk files for prefix in index order.
// The zero-padded index makes lexical order equal time order.
func (s *Segmenter) listChunkFiles(prefix, ext string) []string {
	matches, err := filepath.Glob(globEscape(prefix) + "[0-9][0-9][0-9][0-9][0-9]" + globEscape(ext))
	if err != nil {
		return nil
	}
	slices.Sort(matches)
	return matches
}

// RemoveChunks deletes chunk files, ignoring ones that are already gone.
// It returns the paths it could not remove.
func RemoveChunks(paths []string) []string {
	var failed []string
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			failed = append(failed, fmt.Sprintf("%s: %v", p, err))
		}
	}
	return failed
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}
