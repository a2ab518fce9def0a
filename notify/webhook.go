package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Signature"

// WebhookConfig is the `webhook` section of the service configuration.
type WebhookConfig struct {
	// URL receives progress events (WEBHOOK_URL). Empty disables delivery.
	URL string `mapstructure:"url"`
	// Secret signs every body (MOBILE_WEBHOOK_SECRET).
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookNotifier posts signed progress events to a single URL.
type WebhookNotifier struct {
	url    string
	secret string
	http   *httpclient.Client
	log    *logger.Logger
}

// NewWebhookNotifier returns a WebhookNotifier, or Noop when no URL is
// configured.
func NewWebhookNotifier(cfg WebhookConfig, log *logger.Logger) (Notifier, error) {
	if cfg.URL == "" {
		return Noop{}, nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		url:    cfg.URL,
		secret: cfg.Secret,
		http:   hc,
		log:    log.WithComponent("notify.webhook"),
	}, nil
}

// Notify posts ev. Failures are logged and dropped.
func (w *WebhookNotifier) Notify(ctx context.Context, ev Event) {
	log := w.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldJobID, ev.TaskID,
		logger.FieldEvent, ev.Event,
	))
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error("webhook payload not encodable", logger.Fields(logger.FieldError, err.Error()))
		return
	}

	resp, err := w.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   w.url,
		Body:   body,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			SignatureHeader: Sign(w.secret, body),
		},
	})
	if err != nil {
		log.Warn("webhook delivery failed", logger.Fields(logger.FieldError, err.Error()))
		return
	}
	log.Debug("webhook delivered", logger.Fields(logger.FieldStatus, resp.StatusCode))
}
