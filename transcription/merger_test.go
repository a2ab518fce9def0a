package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
)

type fakeSegmenter struct {
	chunks []media.Chunk
	err    error
}

func (f *fakeSegmenter) Segment(_ context.Context, _ string, _ int) ([]media.Chunk, error) {
	return f.chunks, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]bool{}} }

func (s *fakeStore) Upload(_ context.Context, key string, r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeStore) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

// fakeProvider answers per chunk file name and tracks peak concurrency.
type fakeProvider struct {
	results  map[string]*Result
	errs     map[string]error
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Transcribe(ctx context.Context, url string) (*Result, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	name := url[strings.LastIndex(url, "/")+1:]
	if err, ok := p.errs[name]; ok {
		return nil, err
	}
	if r, ok := p.results[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("unexpected url %s", url)
}

func makeChunks(t *testing.T, n, chunkSeconds int) (string, []media.Chunk) {
	t.Helper()
	dir := t.TempDir()
	chunks := make([]media.Chunk, n)
	for i := range chunks {
		p := filepath.Join(dir, fmt.Sprintf("job_chunk_%05d.mp3", i))
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		chunks[i] = media.Chunk{Index: i, Path: p, Offset: float64(i * chunkSeconds)}
	}
	return dir, chunks
}

func chunkName(i int) string { return fmt.Sprintf("job_chunk_%05d.mp3", i) }

func assertGone(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", p)
		}
	}
}

func TestChunkAndTranscribe_ShiftsAndOrders(t *testing.T) {
	_, chunks := makeChunks(t, 3, 1200)
	prov := &fakeProvider{
		delay: 5 * time.Millisecond,
		results: map[string]*Result{
			chunkName(0): {Segments: []Segment{{Text: "a", Start: 0, End: 4}, {Text: "b", Start: 4, End: 9.5}}, DetectedLanguage: "en"},
			chunkName(1): {Segments: []Segment{{Text: "c", Start: 0.5, End: 3}}, DetectedLanguage: "fr"},
			chunkName(2): {Segments: []Segment{{Text: "d", Start: 1, End: 2}}},
		},
	}
	store := newFakeStore()
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, store, DefaultMergerConfig(), logger.Nop())

	res, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Segment{
		{Text: "a", Start: 0, End: 4},
		{Text: "b", Start: 4, End: 9.5},
		{Text: "c", Start: 1200.5, End: 1203},
		{Text: "d", Start: 2401, End: 2402},
	}
	if len(res.Segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(res.Segments))
	}
	for i := range want {
		if res.Segments[i] != want[i] {
			t.Errorf("segment %d: got %+v, want %+v", i, res.Segments[i], want[i])
		}
		if i > 0 && res.Segments[i].Start < res.Segments[i-1].Start {
			t.Errorf("segments out of order at %d", i)
		}
	}
	if res.DetectedLanguage != "en" {
		t.Errorf("language must come from chunk 0, got %q", res.DetectedLanguage)
	}
	if res.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", res.Chunks)
	}
	if !res.Success {
		t.Error("merged result should be marked successful")
	}
	for _, c := range chunks {
		assertGone(t, c.Path)
	}
	if len(store.objects) != 0 || len(store.deleted) != 3 {
		t.Errorf("expected all published chunks deleted, objects=%v deleted=%v", store.objects, store.deleted)
	}
}

func TestChunkAndTranscribe_ExactBoundary(t *testing.T) {
	_, chunks := makeChunks(t, 2, 1200)
	prov := &fakeProvider{results: map[string]*Result{
		chunkName(0): {Segments: []Segment{{Text: "first", Start: 10, End: 20}}},
		chunkName(1): {Segments: []Segment{{Text: "second", Start: 10, End: 20}}},
	}}
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, newFakeStore(), DefaultMergerConfig(), logger.Nop())

	res, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Segments[1].Start != 1210 || res.Segments[1].End != 1220 {
		t.Errorf("expected chunk 1 shifted by 1200, got %+v", res.Segments[1])
	}
}

func TestChunkAndTranscribe_SingleChunkKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	segs := []Segment{{Text: "hello", Start: 0.2, End: 1.4}}
	prov := &fakeProvider{results: map[string]*Result{"talk.mp3": {Segments: segs, DetectedLanguage: "de"}}}
	seg := &fakeSegmenter{chunks: []media.Chunk{{Index: 0, Path: src, Source: true}}}
	m := NewMerger(seg, prov, newFakeStore(), DefaultMergerConfig(), logger.Nop())

	res, err := m.ChunkAndTranscribe(context.Background(), src, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Segments) != 1 || res.Segments[0] != segs[0] {
		t.Errorf("single chunk must round-trip unchanged, got %+v", res.Segments)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("the source file is not a chunk and must be kept")
	}
}

func TestChunkAndTranscribe_LowestIndexErrorWins(t *testing.T) {
	_, chunks := makeChunks(t, 4, 600)
	errOne := apperrors.ExternalServiceError("runpod", errors.New("chunk 1 broke"))
	errThree := apperrors.Protocol("runpod", "chunk 3 broke")
	prov := &fakeProvider{
		results: map[string]*Result{
			chunkName(0): {Segments: []Segment{{Text: "a"}}},
			chunkName(2): {Segments: []Segment{{Text: "c"}}},
		},
		errs: map[string]error{chunkName(1): errOne, chunkName(3): errThree},
	}
	extra := filepath.Join(t.TempDir(), "download.mp3")
	if err := os.WriteFile(extra, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := newFakeStore()
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, store, DefaultMergerConfig(), logger.Nop())

	res, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 600, WithCleanup(extra))
	if res != nil {
		t.Error("no partial transcript on failure")
	}
	if !errors.Is(err, errOne) {
		t.Fatalf("expected chunk 1 error, got %v", err)
	}
	if got := prov.calls.Load(); got != 4 {
		t.Errorf("all chunks must be attempted, got %d calls", got)
	}
	for _, c := range chunks {
		assertGone(t, c.Path)
	}
	assertGone(t, extra)
	if len(store.objects) != 0 {
		t.Errorf("published chunks leaked: %v", store.objects)
	}
}

func TestChunkAndTranscribe_BulkheadBoundsConcurrency(t *testing.T) {
	_, chunks := makeChunks(t, 6, 60)
	results := map[string]*Result{}
	for i := range chunks {
		results[chunkName(i)] = &Result{}
	}
	prov := &fakeProvider{results: results, delay: 20 * time.Millisecond}
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, newFakeStore(), MergerConfig{MaxConcurrent: 2}, logger.Nop())

	if _, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak := prov.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", peak)
	}
}

func TestChunkAndTranscribe_UnboundedRunsAllAtOnce(t *testing.T) {
	_, chunks := makeChunks(t, 5, 60)
	results := map[string]*Result{}
	for i := range chunks {
		results[chunkName(i)] = &Result{}
	}
	prov := &fakeProvider{results: results, delay: 50 * time.Millisecond}
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, newFakeStore(), MergerConfig{MaxConcurrent: 0}, logger.Nop())

	if _, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak := prov.peak.Load(); peak < 2 {
		t.Errorf("expected concurrent calls, peak was %d", peak)
	}
}

func TestChunkAndTranscribe_SegmentErrorStillCleansExtras(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "download.mp3")
	if err := os.WriteFile(extra, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	segErr := apperrors.New(apperrors.ErrCodeInternal, "FFmpeg error while splitting audio.", 500)
	m := NewMerger(&fakeSegmenter{err: segErr}, &fakeProvider{}, newFakeStore(), DefaultMergerConfig(), logger.Nop())

	_, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 1200, WithCleanup(extra))
	if !errors.Is(err, segErr) {
		t.Fatalf("expected segment error, got %v", err)
	}
	assertGone(t, extra)
}

func TestChunkAndTranscribe_NoChunksIsInvariant(t *testing.T) {
	m := NewMerger(&fakeSegmenter{}, &fakeProvider{}, newFakeStore(), DefaultMergerConfig(), logger.Nop())
	_, err := m.ChunkAndTranscribe(context.Background(), "in.mp3", 1200)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeInvariant {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestChunkAndTranscribe_Cancelled(t *testing.T) {
	_, chunks := makeChunks(t, 3, 60)
	prov := &fakeProvider{delay: time.Second, results: map[string]*Result{}}
	m := NewMerger(&fakeSegmenter{chunks: chunks}, prov, newFakeStore(), DefaultMergerConfig(), logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.ChunkAndTranscribe(ctx, "in.mp3", 60)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	for _, c := range chunks {
		assertGone(t, c.Path)
	}
}
