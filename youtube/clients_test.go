package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
)

func TestMetadataClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/videos" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("key") != "data-key" || q.Get("part") != "snippet,contentDetails" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if q.Get("id") == "missing" {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{
			"snippet":{"title":"A talk","thumbnails":{
				"default":{"url":"d.jpg"},"medium":{"url":"m.jpg"},"high":{"url":"h.jpg"}}},
			"contentDetails":{"duration":"PT1H2M3S"}}]}`))
	}))
	defer srv.Close()

	c, err := NewMetadataClient(Config{DataAPIKey: "data-key", DataAPIURL: srv.URL})
	if err != nil {
		t.Fatalf("NewMetadataClient: %v", err)
	}

	t.Run("found", func(t *testing.T) {
		md, err := c.Fetch(context.Background(), "vid1")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		want := Metadata{Title: "A talk", Thumbnail: "h.jpg", VideoDuration: "01:02:03", DurationSeconds: 3723}
		if *md != want {
			t.Errorf("metadata = %+v, want %+v", *md, want)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), "missing")
		if apperrors.StatusOf(err) != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 (%v)", apperrors.StatusOf(err), err)
		}
		if got := apperrors.DetailOf(err); got != "Video not found via YouTube Data API." {
			t.Errorf("detail = %q", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		noKey, _ := NewMetadataClient(Config{DataAPIURL: srv.URL})
		_, err := noKey.Fetch(context.Background(), "vid1")
		if got := apperrors.DetailOf(err); got != "Missing YOUTUBE_DATA_API_KEY in environment variables." {
			t.Errorf("detail = %q", got)
		}
		if apperrors.StatusOf(err) != http.StatusInternalServerError {
			t.Errorf("status = %d", apperrors.StatusOf(err))
		}
	})
}

func TestMetadataClient_ThumbnailFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"snippet":{"title":"t","thumbnails":{"default":{"url":"d.jpg"}}},
			"contentDetails":{"duration":"PT4M13S"}}]}`))
	}))
	defer srv.Close()

	c, _ := NewMetadataClient(Config{DataAPIKey: "k", DataAPIURL: srv.URL})
	md, err := c.Fetch(context.Background(), "v")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if md.Thumbnail != "d.jpg" || md.VideoDuration != "04:13" {
		t.Errorf("metadata = %+v", md)
	}
}

func newCaptionServer(t *testing.T, player func(base string) string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("POST /player", func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Context.Client.ClientName != "ANDROID" || req.VideoID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(player(srv.URL)))
	})
	mux.HandleFunc("GET /timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") == "srv3" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
			`<text start="0.004" dur="1.5">Hello &amp;amp; welcome</text>` +
			`<text start="1.235" dur="1.0">it&amp;#39;s here</text>` +
			`<text start="3" dur="1">   </text>` +
			`</transcript>`))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCaptionClient_List(t *testing.T) {
	srv := newCaptionServer(t, func(base string) string {
		return fmt.Sprintf(`{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"%[1]s/timedtext?v=1&lang=en&fmt=srv3","name":{"runs":[{"text":"English (auto-generated)"}]},"languageCode":"en","kind":"asr","isTranslatable":true},
			{"baseUrl":"%[1]s/timedtext?v=1&lang=de","name":{"simpleText":"German"},"languageCode":"de","isTranslatable":false}
		]}}}`, base)
	})

	c, err := NewCaptionClient(Config{PlayerURL: srv.URL + "/player"}, "")
	if err != nil {
		t.Fatalf("NewCaptionClient: %v", err)
	}
	tracks, err := c.List(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(tracks))
	}

	en := tracks[0]
	if en.Language != "English (auto-generated)" || en.LanguageCode != "en" || !en.IsGenerated || !en.IsTranslatable {
		t.Errorf("track 0 = %+v", en)
	}
	if tracks[1].IsGenerated || tracks[1].Language != "German" {
		t.Errorf("track 1 = %+v", tracks[1])
	}

	want := []CaptionLine{
		{Text: "Hello & welcome", Start: 0, End: 1.5},
		{Text: "it's here", Start: 1.24, End: 2.24},
	}
	if len(en.Transcript) != len(want) {
		t.Fatalf("lines = %+v, want %+v", en.Transcript, want)
	}
	for i, l := range en.Transcript {
		if l != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, l, want[i])
		}
	}
}

func TestCaptionClient_Absences(t *testing.T) {
	tests := []struct {
		name   string
		player string
		want   error
	}{
		{"disabled", `{"playabilityStatus":{"status":"OK"}}`, ErrCaptionsDisabled},
		{"no tracks", `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}}`, ErrNoCaptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCaptionServer(t, func(string) string { return tt.player })
			c, _ := NewCaptionClient(Config{PlayerURL: srv.URL + "/player"}, "")
			_, err := c.List(context.Background(), "vid1")
			if !IsCaptionAbsence(err) {
				t.Fatalf("expected caption absence, got %v", err)
			}
			if !strings.Contains(err.Error(), "vid1") {
				t.Errorf("error should name the video: %v", err)
			}
		})
	}
}

func TestCaptionClient_Unplayable(t *testing.T) {
	srv := newCaptionServer(t, func(string) string {
		return `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm"}}`
	})
	c, _ := NewCaptionClient(Config{PlayerURL: srv.URL + "/player"}, "")
	_, err := c.List(context.Background(), "vid1")
	if err == nil || IsCaptionAbsence(err) {
		t.Fatalf("expected unexpected-failure error, got %v", err)
	}
	if !apperrors.ShouldAlert(err) {
		t.Error("unplayable video should be alerted")
	}
}

func TestAudioDownloader_Download(t *testing.T) {
	var calls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dl":
			if r.Header.Get("Authorization") != "Bearer zyla-key" || r.URL.Query().Get("id") != "vid1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if calls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"msg":"processing"}`))
				return
			}
			_, _ = fmt.Fprintf(w, `{"msg":"success","link":"%s/file.mp3"}`, srv.URL)
		case "/file.mp3":
			_, _ = w.Write([]byte("ID3-audio-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	d, err := NewAudioDownloader(AudioAPIConfig{
		URL: srv.URL + "/dl?id", Key: "zyla-key", Attempts: 5, Interval: time.Millisecond,
	}, dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewAudioDownloader: %v", err)
	}

	path, err := d.Download(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".mp3" {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ID3-audio-bytes" {
		t.Errorf("file content = %q, %v", data, err)
	}
	if calls.Load() != 3 {
		t.Errorf("link requests = %d, want 3", calls.Load())
	}
}

func TestAudioDownloader_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantDetail string
	}{
		{
			name: "never ready",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"msg":"processing"}`))
			},
			wantDetail: "API failed to provide a valid audio URL after multiple attempts.",
		},
		{
			name: "no link",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"msg":"success"}`))
			},
			wantDetail: "API did not return a valid audio download URL.",
		},
		{
			name: "download fails",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/gone.mp3" {
					http.NotFound(w, r)
					return
				}
				_, _ = fmt.Fprintf(w, `{"msg":"success","link":"http://%s/gone.mp3"}`, r.Host)
			},
			wantDetail: "Failed to download audio file.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			dir := t.TempDir()
			d, _ := NewAudioDownloader(AudioAPIConfig{
				URL: srv.URL + "/dl?id", Key: "k", Attempts: 3, Interval: time.Millisecond,
			}, dir, logger.Nop())

			_, err := d.Download(context.Background(), "vid1")
			if err == nil {
				t.Fatal("expected error")
			}
			got := apperrors.DetailOf(err)
			if got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
			if strings.Contains(got, srv.URL[len("http://"):]) {
				t.Errorf("detail leaks the remote address: %q", got)
			}
			if apperrors.StatusOf(err) != http.StatusBadGateway {
				t.Errorf("status = %d, want 502", apperrors.StatusOf(err))
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("partial download left behind: %v", entries)
			}
		})
	}
}
