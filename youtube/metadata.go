package youtube

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
)

// Metadata describes a video as shown to the caller.
type Metadata struct {
	Title           string `json:"title"`
	Thumbnail       string `json:"thumbnail"`
	VideoDuration   string `json:"video_duration"`
	DurationSeconds int    `json:"duration_seconds"`
}

type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// MetadataClient reads video details from the YouTube Data API v3.
type MetadataClient struct {
	http   *httpclient.Client
	apiKey string
}

// NewMetadataClient creates a MetadataClient.
func NewMetadataClient(cfg Config) (*MetadataClient, error) {
	cfg.ApplyDefaults()
	hc, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.DataAPIURL,
		Timeout: cfg.RequestTimeout,
		Auth:    httpclient.QueryKeyAuth("key", cfg.DataAPIKey),
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}
	return &MetadataClient{http: hc, apiKey: cfg.DataAPIKey}, nil
}

// Fetch returns the title, best thumbnail and duration of videoID.
func (c *MetadataClient) Fetch(ctx context.Context, videoID string) (*Metadata, error) {
	if c.apiKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeInternal,
			"Missing YOUTUBE_DATA_API_KEY in environment variables.", http.StatusInternalServerError)
	}

	resp, err := httpclient.Get[videosResponse](ctx, c.http, "/youtube/v3/videos",
		httpclient.WithQueryParam("part", "snippet,contentDetails"),
		httpclient.WithQueryParam("id", videoID),
	)
	if err != nil {
		return nil, httpclient.ToAppError("YouTube Data API", err)
	}
	if len(resp.Data.Items) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "Video not found via YouTube Data API.", http.StatusNotFound).
			WithDetail("video_id", videoID)
	}

	item := resp.Data.Items[0]
	md := &Metadata{Title: item.Snippet.Title}
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := item.Snippet.Thumbnails[size]; ok && t.URL != "" {
			md.Thumbnail = t.URL
			break
		}
	}
	iso := item.ContentDetails.Duration
	if iso == "" {
		iso = "PT0S"
	}
	md.DurationSeconds = ParseISODuration(iso)
	md.VideoDuration = FormatDuration(md.DurationSeconds)
	return md, nil
}
