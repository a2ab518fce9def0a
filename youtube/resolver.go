package youtube

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/notify"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/transcription"
)

// DefaultChunkSeconds is the chunk length used for fallback transcription.
const DefaultChunkSeconds = 1200

// MaxDurationMessage is returned for videos over the duration ceiling.
const MaxDurationMessage = "Only videos shorter than 2 hours are supported. Please upload a shorter video."

// State is a step of the caption-first resolution.
type State string

// Resolution states.
const (
	StateAnalyzing       State = "analyzing"
	StateCaptionsFound   State = "captions_found"
	StateExtractingAudio State = "extracting_audio"
	StateTranscribing    State = "transcribing"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Collaborators of the Resolver.
type (
	CaptionLister interface {
		List(ctx context.Context, videoID string) ([]CaptionTrack, error)
	}
	MetadataFetcher interface {
		Fetch(ctx context.Context, videoID string) (*Metadata, error)
	}
	AudioFetcher interface {
		Download(ctx context.Context, videoID string) (string, error)
	}
	Normalizer interface {
		EnsureAudioOnly(ctx context.Context, path string) (string, error)
	}
	Transcriber interface {
		ChunkAndTranscribe(ctx context.Context, path string, chunkSeconds int, opts ...transcription.RunOption) (*transcription.Result, error)
	}
	// ErrorReporter alerts an error once and returns it marked as reported.
	ErrorReporter interface {
		ReportOnce(ctx context.Context, err error, where string) error
	}
)

// Request is one video to resolve.
type Request struct {
	TaskID string
	URL    string
	// Captions are tracks already probed by the caller. When set, no
	// further caption lookup happens.
	Captions []CaptionTrack
	// Fallback skips the caption lookup and goes straight to audio
	// transcription.
	Fallback     bool
	ChunkSeconds int
}

// Outcome is the terminal state of a resolution.
type Outcome struct {
	State      State
	VideoID    string
	Metadata   *Metadata
	Captions   []CaptionTrack
	Transcript *transcription.Result
}

// IsTranscript reports whether the outcome came from native captions.
func (o *Outcome) IsTranscript() bool { return o.State == StateCaptionsFound }

// Header returns the top-level fields of the job result.
func (o *Outcome) Header() map[string]any {
	h := map[string]any{"is_transcript": o.IsTranscript()}
	if o.Metadata != nil {
		h["title"] = o.Metadata.Title
		h["thumbnail"] = o.Metadata.Thumbnail
		h["video_duration"] = o.Metadata.VideoDuration
	}
	return h
}

// Data returns the fields placed under the result's data object besides the
// transcript itself.
func (o *Outcome) Data() map[string]any {
	if o.IsTranscript() {
		return map[string]any{
			"is_runpod":       false,
			"all_transcripts": o.Captions,
		}
	}
	d := map[string]any{"is_runpod": true}
	if o.Metadata != nil {
		d["title"] = o.Metadata.Title
		d["thumbnail"] = o.Metadata.Thumbnail
		d["video_duration"] = o.Metadata.VideoDuration
		d["duration_seconds"] = o.Metadata.DurationSeconds
	}
	return d
}

// Resolver prefers native captions and falls back to downloading and
// transcribing the audio track.
type Resolver struct {
	captions    CaptionLister
	metadata    MetadataFetcher
	audio       AudioFetcher
	normalizer  Normalizer
	transcriber Transcriber
	notifier    notify.Notifier
	reporter    ErrorReporter
	maxDuration int
	log         *logger.Logger
}

// ResolverDeps bundles the Resolver collaborators.
type ResolverDeps struct {
	Captions    CaptionLister
	Metadata    MetadataFetcher
	Audio       AudioFetcher
	Normalizer  Normalizer
	Transcriber Transcriber
	Notifier    notify.Notifier
	Reporter    ErrorReporter
}

// NewResolver creates a Resolver. maxDurationSeconds <= 0 uses the default ceiling.
func NewResolver(deps ResolverDeps, maxDurationSeconds int, log *logger.Logger) *Resolver {
	if maxDurationSeconds <= 0 {
		maxDurationSeconds = DefaultMaxDurationSeconds
	}
	n := deps.Notifier
	if n == nil {
		n = notify.Noop{}
	}
	return &Resolver{
		captions:    deps.Captions,
		metadata:    deps.Metadata,
		audio:       deps.Audio,
		normalizer:  deps.Normalizer,
		transcriber: deps.Transcriber,
		notifier:    n,
		reporter:    deps.Reporter,
		maxDuration: maxDurationSeconds,
		log:         log.WithComponent("youtube.resolver"),
	}
}

// ProbeCaptions looks captions up once and returns nil when the caller
// should fall back to transcription. Unexpected lookup failures are alerted
// before falling back.
func (r *Resolver) ProbeCaptions(ctx context.Context, videoID string) []CaptionTrack {
	ctx, span := observability.StartSpan(ctx, observability.SpanCaptions,
		trace.WithAttributes(attribute.String("video_id", videoID)))
	defer span.End()
	log := r.log.WithContext(ctx)

	tracks, err := r.captions.List(ctx, videoID)
	switch {
	case err == nil && len(tracks) > 0:
		log.Info("captions found", logger.Fields("video_id", videoID, "tracks", len(tracks)))
		return tracks
	case err == nil || IsCaptionAbsence(err):
		log.Info("no captions, falling back to transcription", logger.Fields("video_id", videoID))
	case ctx.Err() != nil:
		log.Warn("caption lookup cancelled", logger.Fields("video_id", videoID))
	default:
		observability.SetSpanError(ctx, err)
		if r.reporter != nil {
			_ = r.reporter.ReportOnce(ctx, err, "caption lookup")
		}
		log.Warn("caption lookup failed, falling back to transcription", logger.Fields(
			"video_id", videoID,
			logger.FieldError, err.Error(),
		))
	}
	return nil
}

// Resolve runs the caption-first state machine for req.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Outcome, error) {
	videoID, err := ExtractVideoID(req.URL)
	if err != nil {
		return nil, err
	}
	ctx = logger.ContextWithJobID(ctx, req.TaskID)

	tracks := req.Captions
	if len(tracks) == 0 && !req.Fallback {
		tracks = r.ProbeCaptions(ctx, videoID)
	}
	if len(tracks) > 0 {
		md, err := r.metadata.Fetch(ctx, videoID)
		if err != nil {
			return nil, err
		}
		return &Outcome{State: StateCaptionsFound, VideoID: videoID, Metadata: md, Captions: tracks}, nil
	}
	return r.fallback(ctx, req, videoID)
}

func (r *Resolver) fallback(ctx context.Context, req Request, videoID string) (*Outcome, error) {
	log := r.log.WithContext(ctx)
	out := &Outcome{State: StateAnalyzing, VideoID: videoID}

	md, err := r.analyze(ctx, req.TaskID, videoID)
	if err != nil {
		r.fail(ctx, req.TaskID, out, notify.EventAnalyzingVideo, "Analyzing Video", err)
		return nil, err
	}
	out.Metadata = md

	out.State = StateExtractingAudio
	r.emit(ctx, req.TaskID, notify.EventExtractingAudio, "Extracting Audio", true, nil)
	start := time.Now()
	path, err := r.audio.Download(ctx, videoID)
	if err != nil {
		r.fail(ctx, req.TaskID, out, notify.EventExtractingAudio, "Extracting Audio", err)
		return nil, err
	}
	log.Info("audio extracted", logger.Fields(
		"video_id", videoID,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))

	out.State = StateTranscribing
	r.emit(ctx, req.TaskID, notify.EventTranscribing, "Transcribing", true, nil)
	res, err := r.transcribe(ctx, path, req.ChunkSeconds)
	if err != nil {
		r.fail(ctx, req.TaskID, out, notify.EventTranscribing, "Transcribing", err)
		return nil, err
	}
	out.Transcript = res
	out.State = StateDone
	return out, nil
}

// analyze fetches metadata and enforces the duration ceiling before any
// download happens.
func (r *Resolver) analyze(ctx context.Context, taskID, videoID string) (*Metadata, error) {
	md, err := r.metadata.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	r.emit(ctx, taskID, notify.EventAnalyzingVideo, "Analyzing Video", true, map[string]any{
		"title":          md.Title,
		"thumbnail":      md.Thumbnail,
		"video_duration": md.VideoDuration,
	})
	if md.DurationSeconds > r.maxDuration {
		return nil, apperrors.MediaTooLong(MaxDurationMessage, md.DurationSeconds, r.maxDuration)
	}
	return md, nil
}

func (r *Resolver) transcribe(ctx context.Context, downloaded string, chunkSeconds int) (*transcription.Result, error) {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}
	audio, err := r.normalizer.EnsureAudioOnly(ctx, downloaded)
	if err != nil {
		media.RemoveChunks([]string{downloaded})
		return nil, err
	}
	cleanup := []string{downloaded}
	if audio != downloaded {
		cleanup = append(cleanup, audio)
	}
	return r.transcriber.ChunkAndTranscribe(ctx, audio, chunkSeconds, transcription.WithCleanup(cleanup...))
}

func (r *Resolver) emit(ctx context.Context, taskID, event, status string, success bool, result any) {
	r.notifier.Notify(ctx, notify.Event{
		TaskID:  taskID,
		Status:  status,
		Event:   event,
		Success: success,
		Result:  result,
	})
}

func (r *Resolver) fail(ctx context.Context, taskID string, out *Outcome, event, status string, err error) {
	r.log.WithContext(ctx).Error("resolution failed", logger.Fields(
		"state", string(out.State),
		logger.FieldEvent, event,
		logger.FieldError, err.Error(),
	))
	out.State = StateFailed
	r.emit(ctx, taskID, event, fmt.Sprintf("%s Failed - %s", status, apperrors.DetailOf(err)), false, nil)
}
