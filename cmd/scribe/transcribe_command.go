package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/app"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/youtube"
)

type transcribeOptions struct {
	chunkSeconds int
	video        bool
	asJSON       bool
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts transcribeOptions
	cmd := &cobra.Command{
		Use:   "transcribe <file|youtube-url>",
		Short: "Transcribe one file or YouTube video and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var env jobs.Envelope
			err = app.RunTask(cmd.Context(), cfg, func(taskCtx context.Context, svc *app.Services) error {
				job, err := buildJob(args[0], cfg.Media.UploadDir, opts)
				if err != nil {
					return err
				}
				if err := svc.Store.Create(taskCtx, job); err != nil {
					return err
				}
				env = svc.Reporter.Run(taskCtx, job, svc.Pipeline.Handle)
				return nil
			}, bootstrap.WithSummaryOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd, env)
			}
			return printEnvelope(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().IntVar(&opts.chunkSeconds, "chunk-seconds", 0, "Chunk length in seconds (default jobs.chunk_seconds)")
	cmd.Flags().BoolVar(&opts.video, "video", false, "Treat the file as a video upload")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the result envelope as JSON")
	return cmd
}

// buildJob turns the argument into a job. Local files are copied into the
// upload directory because the pipeline removes its source when done.
func buildJob(arg, uploadDir string, opts transcribeOptions) (jobs.MediaJob, error) {
	var job jobs.MediaJob
	if youtube.IsValidURL(arg) {
		job = jobs.NewJob(jobs.KindYouTube, arg)
	} else {
		started := time.Now()
		path, err := copyUpload(arg, uploadDir)
		if err != nil {
			return jobs.MediaJob{}, err
		}
		kind := jobs.KindAudio
		if opts.video {
			kind = jobs.KindVideo
		}
		job = jobs.NewJob(kind, path)
		job.UploadSeconds = time.Since(started).Seconds()
	}
	if opts.chunkSeconds > 0 {
		job.ChunkSeconds = opts.chunkSeconds
	}
	return job, nil
}

func copyUpload(src, uploadDir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(uploadDir, media.NewFileStem()+strings.ToLower(filepath.Ext(src)))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	return dst, out.Close()
}

func printEnvelope(w io.Writer, env jobs.Envelope) error {
	if env.StatusCode >= 400 {
		return fmt.Errorf("transcription failed (%d): %s", env.StatusCode, env.Detail())
	}
	if lang, ok := env.Data["detected_language"].(string); ok && lang != "" {
		fmt.Fprintf(w, "Language: %s\n", transcription.LanguageName(lang))
	}
	if title, ok := env.Header["title"].(string); ok && title != "" {
		fmt.Fprintf(w, "Title: %s\n", title)
	}
	if tracks, ok := env.Data["all_transcripts"].([]youtube.CaptionTrack); ok {
		printTracks(w, tracks)
		return nil
	}
	segs := transcriptSegments(env.Data["transcript"])
	if len(segs) == 0 {
		fmt.Fprintln(w, "No transcript segments.")
		return nil
	}
	rows := make([][]string, 0, len(segs))
	for _, s := range segs {
		rows = append(rows, []string{formatOffset(s.Start), formatOffset(s.End), s.Text})
	}
	fmt.Fprintln(w, renderTable([]string{"Start", "End", "Text"}, rows, []columnAlignment{alignRight, alignRight, alignLeft}))
	return nil
}

func printTracks(w io.Writer, tracks []youtube.CaptionTrack) {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{t.LanguageCode, t.Language, fmt.Sprint(t.IsGenerated), fmt.Sprint(len(t.Transcript))})
	}
	fmt.Fprintln(w, renderTable([]string{"Code", "Language", "Generated", "Lines"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
}

// transcriptSegments accepts either typed segments or their decoded JSON form.
func transcriptSegments(v any) []transcription.Segment {
	switch t := v.(type) {
	case []transcription.Segment:
		return t
	case []any:
		out := make([]transcription.Segment, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text, _ := m["text"].(string)
			start, _ := m["start"].(float64)
			end, _ := m["end"].(float64)
			out = append(out, transcription.Segment{Text: text, Start: start, End: end})
		}
		return out
	}
	return nil
}

func formatOffset(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
