package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/resilience"
)

var errLinkPending = errors.New("audio link not ready")

type audioLinkResponse struct {
	Msg  string `json:"msg"`
	Link string `json:"link"`
}

// AudioDownloader resolves a downloadable audio link for a video and saves
// it to the shared upload directory.
type AudioDownloader struct {
	http      *httpclient.Client
	cfg       AudioAPIConfig
	uploadDir string
	log       *logger.Logger
}

// NewAudioDownloader creates an AudioDownloader writing into uploadDir.
func NewAudioDownloader(cfg AudioAPIConfig, uploadDir string, log *logger.Logger) (*AudioDownloader, error) {
	cfg.ApplyDefaults()
	hc, err := httpclient.New(httpclient.Config{
		Timeout: DefaultRequestTimeout,
		Auth:    httpclient.BearerAuth(cfg.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}
	return &AudioDownloader{
		http:      hc,
		cfg:       cfg,
		uploadDir: uploadDir,
		log:       log.WithComponent("youtube.audio"),
	}, nil
}

// Download asks the link API for videoID until it reports success, then
// downloads the audio to <uploadDir>/<uuid>.mp3 and returns that path.
func (d *AudioDownloader) Download(ctx context.Context, videoID string) (string, error) {
	link, err := d.resolveLink(ctx, videoID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.uploadDir, 0o755); err != nil {
		return "", apperrors.Internal(err)
	}
	path := filepath.Join(d.uploadDir, media.NewFileStem()+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	n, err := d.http.Download(ctx, httpclient.Request{Method: http.MethodGet, Path: link}, f)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", apperrors.New(apperrors.ErrCodeExternalService,
			"Failed to download audio file.", http.StatusBadGateway).WithCause(err)
	}

	d.log.WithContext(ctx).Info("audio downloaded", logger.Fields(
		"video_id", videoID,
		logger.FieldPath, path,
		"bytes", n,
	))
	return path, nil
}

func (d *AudioDownloader) resolveLink(ctx context.Context, videoID string) (string, error) {
	log := d.log.WithContext(ctx)
	retry := resilience.FixedIntervalConfig(d.cfg.Attempts, d.cfg.Interval)

	attempt := 0
	body, err := resilience.Retry(ctx, retry, func() (audioLinkResponse, error) {
		attempt++
		resp, err := httpclient.Get[audioLinkResponse](ctx, d.http, d.cfg.URL+"="+videoID)
		if err != nil {
			log.Warn("audio link request failed", logger.Fields("attempt", attempt, logger.FieldError, err.Error()))
			return audioLinkResponse{}, err
		}
		if resp.Data.Msg != "success" {
			log.Debug("audio link not ready", logger.Fields("attempt", attempt, "msg", resp.Data.Msg))
			return resp.Data, errLinkPending
		}
		return resp.Data, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.New(apperrors.ErrCodeExternalService,
			"API failed to provide a valid audio URL after multiple attempts.", http.StatusBadGateway).WithCause(err)
	}
	if body.Link == "" {
		return "", apperrors.New(apperrors.ErrCodeExternalService,
			"API did not return a valid audio download URL.", http.StatusBadGateway)
	}
	return body.Link, nil
}
