package transcription

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/storage"
)

// DefaultMaxConcurrent is the default number of chunks in flight towards
// the provider across all jobs.
const DefaultMaxConcurrent = 8

// Segmenter splits a file into ordered chunks.
type Segmenter interface {
	Segment(ctx context.Context, path string, chunkSeconds int) ([]media.Chunk, error)
}

// MergerConfig configures a Merger.
type MergerConfig struct {
	// MaxConcurrent bounds chunk calls in flight across all jobs.
	// Zero gives every call one slot per chunk.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// CleanupTimeout bounds best-effort deletion of published objects.
	CleanupTimeout time.Duration `mapstructure:"cleanup_timeout"`
}

// DefaultMergerConfig returns the production defaults.
func DefaultMergerConfig() MergerConfig {
	return MergerConfig{MaxConcurrent: DefaultMaxConcurrent, CleanupTimeout: 30 * time.Second}
}

// Merger fans chunks out to a Provider and merges the results.
type Merger struct {
	segmenter Segmenter
	provider  Provider
	store     storage.Storage
	bulkhead  *resilience.Bulkhead
	cfg       MergerConfig
	metrics   *observability.Metrics
	log       *logger.Logger
}

// MergerOption configures optional Merger collaborators.
type MergerOption func(*Merger)

// WithMetrics records phase and chunk metrics.
func WithMetrics(m *observability.Metrics) MergerOption {
	return func(mg *Merger) { mg.metrics = m }
}

// NewMerger creates a Merger.
func NewMerger(seg Segmenter, p Provider, store storage.Storage, cfg MergerConfig, log *logger.Logger, opts ...MergerOption) *Merger {
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = 30 * time.Second
	}
	m := &Merger{
		segmenter: seg,
		provider:  p,
		store:     store,
		cfg:       cfg,
		log:       log.WithComponent("transcription.merger"),
	}
	if cfg.MaxConcurrent > 0 {
		m.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "transcription",
			MaxConcurrent: cfg.MaxConcurrent,
		})
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RunOption configures a single ChunkAndTranscribe call.
type RunOption func(*runOptions)

type runOptions struct {
	cleanup []string
}

// WithCleanup removes extra local files once the call finishes, whatever
// the outcome.
func WithCleanup(paths ...string) RunOption {
	return func(o *runOptions) { o.cleanup = append(o.cleanup, paths...) }
}

type chunkOutcome struct {
	result *Result
	key    string
	err    error
}

// ChunkAndTranscribe segments path into chunkSeconds chunks, transcribes
// every chunk and returns one transcript with segment times relative to the
// start of path.
//
// All chunks run to completion even when one fails; the error of the
// lowest-index failed chunk is returned and no partial transcript is
// produced. Chunk files, published objects and any WithCleanup paths are
// removed before returning.
func (m *Merger) ChunkAndTranscribe(ctx context.Context, path string, chunkSeconds int, opts ...RunOption) (*Result, error) {
	var ro runOptions
	for _, o := range opts {
		o(&ro)
	}
	log := m.log.WithContext(ctx)

	ctx, span := observability.StartSpan(ctx, observability.SpanChunkAndMerge,
		trace.WithAttributes(attribute.Int(observability.AttrChunkSeconds, chunkSeconds)))
	defer span.End()

	segStart := time.Now()
	segCtx, segSpan := observability.StartSpan(ctx, observability.SpanSegment)
	chunks, err := m.segmenter.Segment(segCtx, path, chunkSeconds)
	observability.SetSpanError(segCtx, err)
	segSpan.End()
	segDuration := time.Since(segStart)
	m.metrics.RecordPhase(ctx, "segment", segDuration)

	var outcomes []chunkOutcome
	defer func() {
		m.cleanup(ctx, chunks, outcomes, ro.cleanup)
	}()
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	if len(chunks) == 0 {
		err := apperrors.Invariant("segmenter produced no chunks")
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(observability.AttrChunkCount, len(chunks)))
	log.Info("audio segmented", logger.Fields(
		"chunks", len(chunks),
		logger.FieldDuration, segDuration.Milliseconds(),
	))

	txStart := time.Now()
	outcomes = make([]chunkOutcome, len(chunks))
	if len(chunks) == 1 {
		outcomes[0] = m.transcribeChunk(ctx, chunks[0])
	} else {
		m.fanOut(ctx, chunks, outcomes)
	}
	txDuration := time.Since(txStart)
	m.metrics.RecordPhase(ctx, "transcribe", txDuration)

	for i, o := range outcomes {
		if o.err != nil {
			log.Error("chunk transcription failed", logger.Fields(
				logger.FieldChunk, i,
				logger.FieldError, o.err.Error(),
			))
			observability.SetSpanError(ctx, o.err)
			return nil, o.err
		}
	}

	merged := &Result{
		Success:               true,
		SegmentDuration:       segDuration,
		TranscriptionDuration: txDuration,
		Chunks:                len(chunks),
		Segments:              make([]Segment, 0),
	}
	for i, o := range outcomes {
		merged.Segments = append(merged.Segments, ShiftSegments(o.result.Segments, chunks[i].Offset)...)
	}
	merged.DetectedLanguage = outcomes[0].result.DetectedLanguage

	log.Info("transcript merged", logger.Fields(
		"chunks", len(chunks),
		"segments", len(merged.Segments),
		logger.FieldDuration, txDuration.Milliseconds(),
	))
	return merged, nil
}

func (m *Merger) fanOut(ctx context.Context, chunks []media.Chunk, outcomes []chunkOutcome) {
	bh := m.bulkhead
	if bh == nil {
		bh = resilience.NewBulkhead(resilience.BulkheadConfig{Name: "transcription", MaxConcurrent: len(chunks)})
	}

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := resilience.ExecuteWithResult(ctx, bh, func() (chunkOutcome, error) {
				return m.transcribeChunk(ctx, c), nil
			})
			if err != nil {
				o = chunkOutcome{err: err}
			}
			outcomes[i] = o
		}()
	}
	wg.Wait()
}

func (m *Merger) transcribeChunk(ctx context.Context, c media.Chunk) chunkOutcome {
	ctx, span := observability.StartSpan(ctx, observability.SpanChunkTranscribe,
		trace.WithAttributes(attribute.Int(observability.AttrChunkIndex, c.Index)))
	defer span.End()

	start := time.Now()
	url, key, err := storage.Publish(ctx, m.store, c.Path, filepath.Base(c.Path))
	if err != nil {
		observability.SetSpanError(ctx, err)
		m.metrics.RecordChunk(ctx, "publish_failed", time.Since(start))
		return chunkOutcome{key: key, err: apperrors.ExternalServiceError("storage", err)}
	}

	res, err := m.provider.Transcribe(ctx, url)
	if err == nil && res == nil {
		err = apperrors.Invariant("provider returned no result")
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		m.metrics.RecordChunk(ctx, "failed", time.Since(start))
		return chunkOutcome{key: key, err: err}
	}
	m.metrics.RecordChunk(ctx, "ok", time.Since(start))
	return chunkOutcome{result: res, key: key}
}

// cleanup runs on a context detached from cancellation so an aborted job
// still releases its files.
func (m *Merger) cleanup(ctx context.Context, chunks []media.Chunk, outcomes []chunkOutcome, extra []string) {
	var paths []string
	for _, c := range chunks {
		if !c.Source {
			paths = append(paths, c.Path)
		}
	}
	paths = append(paths, extra...)
	for _, p := range media.RemoveChunks(paths) {
		m.log.Warn("failed to remove file", logger.Fields(logger.FieldPath, p))
	}

	var keys []string
	for _, o := range outcomes {
		if o.key != "" {
			keys = append(keys, o.key)
		}
	}
	if len(keys) == 0 {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CleanupTimeout)
	defer cancel()
	for _, k := range keys {
		if err := m.store.Delete(dctx, k); err != nil {
			m.log.Warn("failed to delete published chunk", logger.Fields("key", k, logger.FieldError, err.Error()))
		}
	}
}
