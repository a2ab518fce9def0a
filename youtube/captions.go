package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
)

// Expected caption absences. Neither is worth an alert.
var (
	ErrNoCaptions       = errors.New("youtube: no captions found")
	ErrCaptionsDisabled = errors.New("youtube: captions are disabled")
)

// IsCaptionAbsence reports whether err means the video simply has no
// usable captions.
func IsCaptionAbsence(err error) bool {
	return errors.Is(err, ErrNoCaptions) || errors.Is(err, ErrCaptionsDisabled)
}

// CaptionLine is one timed caption, rounded to centiseconds.
type CaptionLine struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CaptionTrack is every line of one caption language.
type CaptionTrack struct {
	Language       string        `json:"language"`
	LanguageCode   string        `json:"language_code"`
	IsGenerated    bool          `json:"is_generated"`
	IsTranslatable bool          `json:"is_translatable"`
	Transcript     []CaptionLine `json:"transcript"`
}

const (
	androidClientName    = "ANDROID"
	androidClientVersion = "20.10.38"
)

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Name.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// CaptionClient lists and fetches native captions through the innertube
// player endpoint.
type CaptionClient struct {
	http      *httpclient.Client
	playerURL string
}

// NewCaptionClient creates a CaptionClient. proxyURL may be empty.
func NewCaptionClient(cfg Config, proxyURL string) (*CaptionClient, error) {
	cfg.ApplyDefaults()
	hc, err := httpclient.New(httpclient.Config{
		Timeout:  cfg.RequestTimeout,
		ProxyURL: proxyURL,
		Headers:  map[string]string{"Accept-Language": "en-US"},
	})
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}
	return &CaptionClient{http: hc, playerURL: cfg.PlayerURL}, nil
}

// List returns every caption track of videoID with its lines.
// It returns ErrCaptionsDisabled when the video has captions turned off and
// ErrNoCaptions when it has none.
func (c *CaptionClient) List(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	var req playerRequest
	req.Context.Client.ClientName = androidClientName
	req.Context.Client.ClientVersion = androidClientVersion
	req.VideoID = videoID

	resp, err := httpclient.Post[playerResponse](ctx, c.http, c.playerURL, req)
	if err != nil {
		return nil, httpclient.ToAppError("YouTube", err)
	}
	player := resp.Data

	if st := player.PlayabilityStatus.Status; st != "" && st != "OK" {
		reason := player.PlayabilityStatus.Reason
		if reason == "" {
			reason = st
		}
		return nil, apperrors.ExternalServiceError("YouTube", fmt.Errorf("video %s is unplayable: %s", videoID, reason)).
			WithDetail("video_id", videoID)
	}
	if player.Captions == nil || player.Captions.Renderer == nil {
		return nil, fmt.Errorf("%w for video ID '%s'", ErrCaptionsDisabled, videoID)
	}
	if len(player.Captions.Renderer.CaptionTracks) == 0 {
		return nil, fmt.Errorf("%w for video ID '%s'", ErrNoCaptions, videoID)
	}

	tracks := make([]CaptionTrack, 0, len(player.Captions.Renderer.CaptionTracks))
	for _, t := range player.Captions.Renderer.CaptionTracks {
		lines, err := c.fetchTrack(ctx, t.BaseURL)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, CaptionTrack{
			Language:       t.displayName(),
			LanguageCode:   t.LanguageCode,
			IsGenerated:    t.Kind == "asr",
			IsTranslatable: t.IsTranslatable,
			Transcript:     lines,
		})
	}
	return tracks, nil
}

func (c *CaptionClient) fetchTrack(ctx context.Context, baseURL string) ([]CaptionLine, error) {
	target := strings.Replace(baseURL, "&fmt=srv3", "", 1)
	resp, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: target})
	if err != nil {
		return nil, httpclient.ToAppError("YouTube", err)
	}

	var doc timedText
	if err := xml.Unmarshal(resp.Body, &doc); err != nil {
		return nil, apperrors.Protocol("YouTube", "undecodable caption track").WithCause(err)
	}

	lines := make([]CaptionLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(l.Text))
		if text == "" {
			continue
		}
		start, err := decimal.NewFromString(l.Start)
		if err != nil {
			start = decimal.Zero
		}
		dur, err := decimal.NewFromString(orZero(l.Dur))
		if err != nil {
			dur = decimal.Zero
		}
		lines = append(lines, CaptionLine{
			Text:  text,
			Start: roundCenti(start),
			End:   roundCenti(start.Add(dur)),
		})
	}
	return lines, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func roundCenti(d decimal.Decimal) float64 {
	f, _ := strconv.ParseFloat(d.Round(2).String(), 64)
	return f
}
