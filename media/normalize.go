package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/process"
)

// Normalizer turns arbitrary uploads into a file holding exactly one audio stream.
type Normalizer struct {
	prober *Prober
	runner process.Runner
	ffmpeg string
	outDir string
	log    *logger.Logger
}

// NewNormalizer creates a Normalizer writing extracted audio into cfg.UploadDir.
func NewNormalizer(cfg Config, runner process.Runner, log *logger.Logger) *Normalizer {
	cfg.ApplyDefaults()
	return &Normalizer{
		prober: &Prober{Binary: cfg.FFprobePath, Runner: runner},
		runner: runner,
		ffmpeg: cfg.FFmpegPath,
		outDir: cfg.UploadDir,
		log:    log.WithComponent("media.normalizer"),
	}
}

// EnsureAudioOnly returns a path to a file with one audio stream and no video.
//
// A file that already has that layout and the canonical extension for its
// codec is returned unchanged. A file with the right layout but the wrong
// extension is renamed in place. Anything else has its first audio stream
// copied into a new file under the upload directory. The input file is
// never deleted.
func (n *Normalizer) EnsureAudioOnly(ctx context.Context, path string) (string, error) {
	probe, err := n.prober.Probe(ctx, path)
	if err != nil {
		return "", err
	}

	audio, video := probe.AudioStreamCount(), probe.VideoStreamCount()
	if audio == 0 {
		return "", apperrors.UnsupportedMedia("no audio stream")
	}
	ext := CanonicalExt(probe.AudioCodec())

	if audio == 1 && video == 0 {
		if hasExt(path, ext) {
			return path, nil
		}
		renamed := replaceExt(path, ext)
		if err := os.Rename(path, renamed); err != nil {
			return "", apperrors.Internal(fmt.Errorf("rename %s: %w", filepath.Base(path), err))
		}
		n.log.Debug("renamed to canonical extension", logger.Fields(logger.FieldPath, renamed))
		return renamed, nil
	}

	out := filepath.Join(n.outDir, NewFileStem()+ext)
	if err := os.MkdirAll(n.outDir, 0o755); err != nil {
		return "", apperrors.Internal(err)
	}
	res, err := n.runner.Run(ctx, process.Command{
		Binary: n.ffmpeg,
		Args:   []string{"-i", path, "-vn", "-acodec", "copy", out, "-y"},
	})
	if err != nil {
		_ = os.Remove(out)
		return "", apperrors.New(apperrors.ErrCodeInternal, "FFmpeg error while extracting audio.", http.StatusInternalServerError).
			WithCause(err).
			WithDetail("stderr", res.StderrTail(3))
	}

	n.log.Info("extracted audio stream", logger.Fields(
		"audio_streams", audio, "video_streams", video, logger.FieldPath, out))
	return out, nil
}
