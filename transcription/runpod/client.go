// Package runpod transcribes audio on a RunPod serverless endpoint.
//
// A job is submitted with POST {endpoint}/run and then polled with
// GET {endpoint}/status/{id} until it reaches COMPLETED or FAILED.
package runpod

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/transcription"
)

const serviceName = "runpod"

// Remote job states.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusQueued     = "QUEUED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

type runRequest struct {
	Input runInput `json:"input"`
}

type runInput struct {
	Audio string `json:"audio"`
}

type runResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type statusResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Output *output `json:"output"`
	Error  string  `json:"error"`
}

type output struct {
	Segments         []segment `json:"segments"`
	DetectedLanguage string    `json:"detected_language"`
}

type segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Client implements transcription.Provider.
type Client struct {
	http    *httpclient.Client
	limiter *resilience.RateLimiter
	cfg     Config
	log     *logger.Logger
}

// New creates a Client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hc, err := httpclient.New(httpclient.Config{
		BaseURL:        cfg.Endpoint,
		Timeout:        cfg.RequestTimeout,
		Auth:           httpclient.RawHeaderAuth("authorization", cfg.AuthToken),
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(serviceName),
	})
	if err != nil {
		return nil, fmt.Errorf("runpod: %w", err)
	}

	c := &Client{
		http: hc,
		cfg:  cfg,
		log:  log.WithComponent("transcription.runpod"),
	}
	if cfg.SubmitRate > 0 {
		c.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: serviceName, Rate: cfg.SubmitRate})
	}
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return serviceName }

// Transcribe submits audioURL and polls the remote job to completion.
//
// Polling stops when ctx ends or after MaxPollDuration, whichever comes
// first; the latter yields a Timeout error. A FAILED job is not retried.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (*transcription.Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanRemoteTranscribe)
	defer span.End()

	start := time.Now()
	id, err := c.submit(ctx, audioURL)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.String(observability.AttrRemoteJobID, id))

	log := c.log.WithContext(ctx).WithFields(logger.Fields("remote_job_id", id))
	log.Debug("transcription job submitted")

	out, err := c.poll(ctx, id)
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Warn("transcription job did not complete", logger.Fields(logger.FieldError, err.Error()))
		return nil, err
	}

	res := &transcription.Result{
		Segments:              make([]transcription.Segment, len(out.Segments)),
		DetectedLanguage:      out.DetectedLanguage,
		Success:               true,
		TranscriptionDuration: time.Since(start),
		Chunks:                1,
	}
	for i, s := range out.Segments {
		res.Segments[i] = transcription.Segment{Text: s.Text, Start: s.Start, End: s.End}
	}
	log.Debug("transcription job completed", logger.Fields(
		"segments", len(res.Segments),
		logger.FieldDuration, res.TranscriptionDuration.Milliseconds(),
	))
	return res, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	resp, err := httpclient.Post[runResponse](ctx, c.http, "/run", runRequest{Input: runInput{Audio: audioURL}})
	if err != nil {
		return "", httpclient.ToAppError(serviceName, err)
	}
	if resp.Data.ID == "" {
		return "", apperrors.Protocol(serviceName, "response does not contain 'id' field")
	}
	return resp.Data.ID, nil
}

func (c *Client) poll(ctx context.Context, id string) (*output, error) {
	deadline := time.NewTimer(c.cfg.MaxPollDuration)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, apperrors.Timeout("Transcription").WithDetail("remote_job_id", id)
		case <-ticker.C:
		}

		resp, err := httpclient.Get[statusResponse](ctx, c.http, "/status/"+id)
		if err != nil {
			return nil, httpclient.ToAppError(serviceName, err)
		}

		switch st := resp.Data; st.Status {
		case StatusCompleted:
			if st.Output == nil || st.Output.Segments == nil {
				return nil, apperrors.Protocol(serviceName, "completed job has no 'segments' field").
					WithDetail("remote_job_id", id)
			}
			return st.Output, nil
		case StatusFailed:
			cause := fmt.Errorf("remote job %s failed: %s", id, st.Error)
			appErr := apperrors.ExternalServiceError(serviceName, cause).WithDetail("remote_job_id", id)
			appErr.Message = "Transcription job failed on the server side."
			appErr.Retryable = false
			return nil, appErr
		case StatusInQueue, StatusQueued, StatusInProgress, "":
		default:
			c.log.Debug("unknown remote status", logger.Fields("remote_job_id", id, logger.FieldStatus, st.Status))
		}
	}
}

var _ transcription.Provider = (*Client)(nil)
