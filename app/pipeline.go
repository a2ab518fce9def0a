package app

import (
	"context"
	"fmt"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/youtube"
)

// Collaborators of the Pipeline.
type (
	AudioNormalizer interface {
		EnsureAudioOnly(ctx context.Context, path string) (string, error)
	}
	ChunkTranscriber interface {
		ChunkAndTranscribe(ctx context.Context, path string, chunkSeconds int, opts ...transcription.RunOption) (*transcription.Result, error)
	}
	VideoResolver interface {
		ProbeCaptions(ctx context.Context, videoID string) []youtube.CaptionTrack
		Resolve(ctx context.Context, req youtube.Request) (*youtube.Outcome, error)
	}
)

// Pipeline turns a queued job into a transcript: uploads are normalized and
// transcribed in chunks, videos go through the caption-first resolver.
type Pipeline struct {
	normalizer  AudioNormalizer
	transcriber ChunkTranscriber
	resolver    VideoResolver
	log         *logger.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(normalizer AudioNormalizer, transcriber ChunkTranscriber, resolver VideoResolver, log *logger.Logger) *Pipeline {
	return &Pipeline{
		normalizer:  normalizer,
		transcriber: transcriber,
		resolver:    resolver,
		log:         log.WithComponent("pipeline"),
	}
}

// Handle is the jobs.Handler the worker pool runs.
func (p *Pipeline) Handle(ctx context.Context, job jobs.MediaJob) (*jobs.Output, error) {
	switch job.Kind {
	case jobs.KindAudio, jobs.KindVideo:
		return p.transcribeFile(ctx, job)
	case jobs.KindYouTube:
		return p.resolve(ctx, job, nil)
	default:
		return nil, apperrors.Invariant(fmt.Sprintf("unknown job kind %q", job.Kind))
	}
}

// ProbeCaptions looks captions up for videoID.
func (p *Pipeline) ProbeCaptions(ctx context.Context, videoID string) []youtube.CaptionTrack {
	return p.resolver.ProbeCaptions(ctx, videoID)
}

// CaptionHandler serves a video whose captions were already found.
func (p *Pipeline) CaptionHandler(tracks []youtube.CaptionTrack) jobs.Handler {
	return func(ctx context.Context, job jobs.MediaJob) (*jobs.Output, error) {
		return p.resolve(ctx, job, tracks)
	}
}

// transcribeFile removes the upload and any extracted audio once done.
func (p *Pipeline) transcribeFile(ctx context.Context, job jobs.MediaJob) (*jobs.Output, error) {
	audio, err := p.normalizer.EnsureAudioOnly(ctx, job.Source)
	if err != nil {
		media.RemoveChunks([]string{job.Source})
		return nil, err
	}
	cleanup := []string{job.Source}
	if audio != job.Source {
		cleanup = append(cleanup, audio)
	}
	p.log.WithContext(ctx).Debug("audio ready", logger.Fields("path", audio))

	res, err := p.transcriber.ChunkAndTranscribe(ctx, audio, job.ChunkSeconds, transcription.WithCleanup(cleanup...))
	if err != nil {
		return nil, err
	}
	return &jobs.Output{Transcript: res}, nil
}

func (p *Pipeline) resolve(ctx context.Context, job jobs.MediaJob, tracks []youtube.CaptionTrack) (*jobs.Output, error) {
	out, err := p.resolver.Resolve(ctx, youtube.Request{
		TaskID:       job.ID,
		URL:          job.Source,
		Captions:     tracks,
		Fallback:     job.Fallback,
		ChunkSeconds: job.ChunkSeconds,
	})
	if err != nil {
		return nil, err
	}
	return &jobs.Output{
		Transcript: out.Transcript,
		Data:       out.Data(),
		Header:     out.Header(),
	}, nil
}
