package jobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/notify"
	"github.com/kbukum/scribe/observability"
)

// PublishTimeout bounds the terminal status write, the final event and the
// alert. They run detached from the job context so a job cancelled by
// shutdown or a client disconnect still ends failed.
const PublishTimeout = 30 * time.Second

// Handler does the work of one job.
type Handler func(ctx context.Context, job MediaJob) (*Output, error)

// Alerter reports an error once and returns it marked as reported.
type Alerter interface {
	ReportOnce(ctx context.Context, err error, where string) error
}

// Reporter runs jobs and publishes their outcome.
type Reporter struct {
	store    Store
	notifier notify.Notifier
	alerter  Alerter
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewReporter creates a Reporter. notifier, alerter and metrics may be nil.
func NewReporter(store Store, notifier notify.Notifier, alerter Alerter, metrics *observability.Metrics, log *logger.Logger) *Reporter {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Reporter{
		store:    store,
		notifier: notifier,
		alerter:  alerter,
		metrics:  metrics,
		log:      log.WithComponent("jobs.reporter"),
	}
}

// Run moves job to running, calls fn and records the terminal status.
// The returned envelope is also stored as the job result.
func (r *Reporter) Run(ctx context.Context, job MediaJob, fn Handler) Envelope {
	ctx = logger.ContextWithJobID(ctx, job.ID)
	ctx, span := observability.StartSpan(ctx, observability.SpanJob, trace.WithAttributes(
		attribute.String(observability.AttrJobID, job.ID),
		attribute.String(observability.AttrJobKind, string(job.Kind)),
	))
	defer span.End()
	log := r.log.WithContext(ctx)

	r.metrics.RecordJobStart(ctx)
	start := time.Now()
	log.Info("job started", logger.Fields("kind", string(job.Kind)))

	var (
		out *Output
		err error
	)
	if err = r.store.Transition(ctx, job.ID, StatusRunning, nil); err == nil {
		out, err = fn(ctx, job)
	}
	elapsed := time.Since(start)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	var env Envelope
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		err = r.report(pctx, err, "job "+string(job.Kind))
		observability.SetSpanError(ctx, err)
		env = failureEnvelope(err)
	} else {
		env = successEnvelope(job, out, elapsed)
	}

	if tErr := r.store.Transition(pctx, job.ID, status, &env); tErr != nil {
		log.Error("status update failed", logger.Fields(logger.FieldError, tErr.Error()))
		_ = r.report(pctx, tErr, "job status update")
	}

	span.SetAttributes(attribute.Int(observability.AttrStatus, env.StatusCode))
	r.metrics.RecordJob(pctx, string(job.Kind), string(status), time.Since(job.CreatedAt))

	event := notify.EventCompleted
	if status == StatusFailed {
		event = notify.EventFailed
	}
	r.notifier.Notify(pctx, notify.Event{
		TaskID:  job.ID,
		Status:  string(status),
		Event:   event,
		Success: status == StatusCompleted,
		Result:  env,
	})

	fields := logger.Fields(
		logger.FieldStatus, env.StatusCode,
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if err != nil {
		log.Error("job failed", logger.MergeWithError(fields, err))
	} else {
		log.Info("job completed", fields)
	}
	return env
}

func (r *Reporter) report(ctx context.Context, err error, where string) error {
	if r.alerter == nil {
		return err
	}
	return r.alerter.ReportOnce(ctx, err, where)
}

func failureEnvelope(err error) Envelope {
	return Envelope{
		StatusCode: apperrors.StatusOf(err),
		Data:       map[string]any{"detail": apperrors.DetailOf(err)},
	}
}

func successEnvelope(job MediaJob, out *Output, elapsed time.Duration) Envelope {
	if out == nil {
		out = &Output{}
	}
	data := make(map[string]any, len(out.Data)+6)
	transcriptionTime := elapsed
	if t := out.Transcript; t != nil {
		data["transcript"] = t.Segments
		data["is_runpod"] = true
		if t.DetectedLanguage != "" {
			data["detected_language"] = t.DetectedLanguage
		}
		transcriptionTime = t.TranscriptionDuration
		if job.Kind != KindYouTube {
			data["upload_time"] = job.UploadSeconds + t.SegmentDuration.Seconds()
		}
	}
	for k, v := range out.Data {
		data[k] = v
	}
	data["transcription_time"] = transcriptionTime.Seconds()
	data["total_time"] = time.Since(job.CreatedAt).Seconds()
	return Envelope{StatusCode: 200, Data: data, Header: out.Header}
}
