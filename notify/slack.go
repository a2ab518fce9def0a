package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
)

// DefaultSlackURL is the Slack Web API base URL.
const DefaultSlackURL = "https://slack.com/api"

// SlackConfig is the `slack` section of the service configuration.
type SlackConfig struct {
	// BotKey is the bot token (SLACK_BOT_KEY). Empty disables Slack.
	BotKey string `mapstructure:"bot_key"`
	// ErrorChannelID receives alerts (SLACK_ERROR_CHANNEL_ID).
	ErrorChannelID string `mapstructure:"error_channel_id"`
	// APIURL overrides the Slack Web API base URL.
	APIURL string `mapstructure:"api_url"`
	// ErrorLog is a file every alert is appended to. Empty disables it.
	ErrorLog string        `mapstructure:"error_log"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AlertSink receives alert messages.
type AlertSink interface {
	Alert(ctx context.Context, message string) error
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SlackAlerter posts alerts to a Slack channel through chat.postMessage.
type SlackAlerter struct {
	http    *httpclient.Client
	channel string
}

// NewSlackAlerter creates a SlackAlerter, or returns nil when Slack is not
// configured.
func NewSlackAlerter(cfg SlackConfig) (*SlackAlerter, error) {
	if cfg.BotKey == "" || cfg.ErrorChannelID == "" {
		return nil, nil
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultSlackURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	hc, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.BotKey),
	})
	if err != nil {
		return nil, err
	}
	return &SlackAlerter{http: hc, channel: cfg.ErrorChannelID}, nil
}

// Alert posts message to the error channel.
func (s *SlackAlerter) Alert(ctx context.Context, message string) error {
	resp, err := httpclient.Post[slackResponse](ctx, s.http, "/chat.postMessage", map[string]string{
		"channel": s.channel,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	if !resp.Data.OK {
		return fmt.Errorf("slack: %s", resp.Data.Error)
	}
	return nil
}

// FileSink appends timestamped alerts to a log file.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink creates a FileSink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Alert appends message to the file.
func (f *FileSink) Alert(_ context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(fh, "%s - %s\n", time.Now().UTC().Format(time.RFC3339), message)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	return err
}

// Sinks builds the alert sinks configured by cfg.
func Sinks(cfg SlackConfig, log *logger.Logger) ([]AlertSink, error) {
	var sinks []AlertSink
	slack, err := NewSlackAlerter(cfg)
	if err != nil {
		return nil, err
	}
	if slack != nil {
		sinks = append(sinks, slack)
	} else {
		log.Info("slack alerting disabled")
	}
	if cfg.ErrorLog != "" {
		sinks = append(sinks, NewFileSink(cfg.ErrorLog))
	}
	return sinks, nil
}
