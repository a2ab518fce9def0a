package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/notify"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/validation"
	"github.com/kbukum/scribe/youtube"
)

// Status labels returned to callers.
const (
	StatusQueued    = "queued"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// CaptionService probes captions for a video and builds the handler that
// serves a captioned video synchronously.
type CaptionService interface {
	ProbeCaptions(ctx context.Context, videoID string) []youtube.CaptionTrack
	CaptionHandler(tracks []youtube.CaptionTrack) jobs.Handler
}

// Deps bundles what the handlers need.
type Deps struct {
	Store     jobs.Store
	Queue     jobs.Queue
	Reporter  *jobs.Reporter
	Captions  CaptionService
	Notifier  notify.Notifier
	UploadDir string
	// ChunkSeconds overrides jobs.DefaultChunkSeconds when positive.
	ChunkSeconds int
}

// Handler serves the submission and status routes.
type Handler struct {
	deps Deps
	log  *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(deps Deps, log *logger.Logger) *Handler {
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	if deps.UploadDir == "" {
		deps.UploadDir = media.DefaultUploadDir
	}
	return &Handler{deps: deps, log: log.WithComponent("api")}
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type youtubeRequest struct {
	YouTubeURL string `json:"youtube_url" validate:"required,youtube_url"`
}

type completedResponse struct {
	TaskID     string        `json:"task_id"`
	Status     string        `json:"status"`
	Result     jobs.Envelope `json:"result"`
	StatusCode int           `json:"status_code"`
}

// TranscribeAudio accepts an audio upload.
func (h *Handler) TranscribeAudio(c *gin.Context) { h.upload(c, jobs.KindAudio) }

// TranscribeVideo accepts a video upload.
func (h *Handler) TranscribeVideo(c *gin.Context) { h.upload(c, jobs.KindVideo) }

func (h *Handler) upload(c *gin.Context, kind jobs.Kind) {
	start := time.Now()
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "Uploaded file is too large", http.StatusRequestEntityTooLarge))
			return
		}
		server.RespondWithError(c, apperrors.MissingField("file"))
		return
	}
	if appErr := validation.New().Custom(fh.Size > 0, "file", "must not be empty").Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	if err := os.MkdirAll(h.deps.UploadDir, 0o755); err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(h.deps.UploadDir, media.NewFileStem()+ext)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	job := h.newJob(kind, path)
	job.UploadSeconds = time.Since(start).Seconds()
	h.log.WithContext(c.Request.Context()).Info("upload received", logger.Fields(
		logger.FieldJobID, job.ID,
		"kind", string(kind),
		"bytes", fh.Size,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))

	if err := h.enqueue(c.Request.Context(), job); err != nil {
		_ = os.Remove(path)
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, submitResponse{TaskID: job.ID, Status: StatusQueued})
}

// TranscribeYouTube serves captioned videos synchronously and queues the
// rest for audio transcription.
func (h *Handler) TranscribeYouTube(c *gin.Context) {
	var req youtubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be JSON with a youtube_url field"))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	videoID, err := youtube.ExtractVideoID(req.YouTubeURL)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	job := h.newJob(jobs.KindYouTube, req.YouTubeURL)

	if tracks := h.deps.Captions.ProbeCaptions(ctx, videoID); len(tracks) > 0 {
		if err := h.deps.Store.Create(ctx, job); err != nil {
			server.RespondWithError(c, apperrors.Internal(err))
			return
		}
		env := h.deps.Reporter.Run(ctx, job, h.deps.Captions.CaptionHandler(tracks))
		status := StatusCompleted
		if env.StatusCode != http.StatusOK {
			status = StatusFailed
		}
		c.JSON(env.StatusCode, completedResponse{
			TaskID:     job.ID,
			Status:     status,
			Result:     env,
			StatusCode: env.StatusCode,
		})
		return
	}

	job.Fallback = true
	if err := h.enqueue(ctx, job); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, submitResponse{TaskID: job.ID, Status: StatusQueued})
}

// Status returns the stored record of a job.
func (h *Handler) Status(c *gin.Context) {
	id := c.Param("task_id")
	if appErr := validation.New().RequiredUUID("task_id", id).Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}
	rec, err := h.deps.Store.Get(c.Request.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		server.RespondWithError(c, apperrors.NotFound("task", id))
		return
	}
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	server.RespondOK(c, rec)
}

func (h *Handler) newJob(kind jobs.Kind, source string) jobs.MediaJob {
	job := jobs.NewJob(kind, source)
	if h.deps.ChunkSeconds > 0 {
		job.ChunkSeconds = h.deps.ChunkSeconds
	}
	return job
}

// enqueue records the job as queued and hands it to the workers. A job that
// cannot be queued is failed through the reporter so its record does not
// stay queued forever.
func (h *Handler) enqueue(ctx context.Context, job jobs.MediaJob) error {
	if err := h.deps.Store.Create(ctx, job); err != nil {
		return apperrors.Internal(err)
	}
	if err := h.deps.Queue.Enqueue(ctx, job); err != nil {
		queueErr := apperrors.ServiceUnavailable("job queue").WithCause(err)
		h.deps.Reporter.Run(context.WithoutCancel(ctx), job, func(context.Context, jobs.MediaJob) (*jobs.Output, error) {
			return nil, queueErr
		})
		return queueErr
	}
	h.deps.Notifier.Notify(ctx, notify.Event{
		TaskID:  job.ID,
		Status:  StatusQueued,
		Event:   notify.EventQueued,
		Success: true,
	})
	return nil
}
