package app

import (
	"fmt"
	"time"

	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/kafka"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/notify"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/runpod"
	"github.com/kbukum/scribe/youtube"
)

// ServiceName names the process in logs, traces and config file lookup.
const ServiceName = "scribe"

// Config is the complete scribe configuration. Every section can be set in
// config.yml or through environment variables named after its keys, so
// RUNPOD_AUTH_TOKEN fills runpod.auth_token.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config              `mapstructure:"server"`
	API           APIConfig                  `mapstructure:"api"`
	Domain        DomainConfig               `mapstructure:"domain"`
	Jobs          JobsConfig                 `mapstructure:"jobs"`
	Media         media.Config               `mapstructure:"media"`
	Merger        transcription.MergerConfig `mapstructure:"merger"`
	RunPod        runpod.Config              `mapstructure:"runpod"`
	Storage       storage.Config             `mapstructure:"storage"`
	YouTube       youtube.Config             `mapstructure:"youtube"`
	Zyla          youtube.AudioAPIConfig     `mapstructure:"zyla"`
	Proxy         youtube.ProxyConfig        `mapstructure:"proxy"`
	Webhook       notify.WebhookConfig       `mapstructure:"webhook"`
	Mobile        MobileConfig               `mapstructure:"mobile"`
	Slack         notify.SlackConfig         `mapstructure:"slack"`
	Redis         redis.Config               `mapstructure:"redis"`
	Kafka         kafka.Config               `mapstructure:"kafka"`
	Observability observability.Config       `mapstructure:"observability"`
}

// APIConfig guards the submission routes.
type APIConfig struct {
	// Key is compared against the api_key header (API_KEY). Empty disables
	// the check.
	Key string `mapstructure:"key"`
}

// DomainConfig is the public address of this service.
type DomainConfig struct {
	// URL is where the inference service fetches chunks from (DOMAIN_URL).
	URL string `mapstructure:"url"`
}

// MobileConfig holds the webhook secret under its legacy name
// (MOBILE_WEBHOOK_SECRET).
type MobileConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// JobsConfig sizes the worker pool and the status store.
type JobsConfig struct {
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	ChunkSeconds int           `mapstructure:"chunk_seconds"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	StatusTTL    time.Duration `mapstructure:"status_ttl"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *JobsConfig) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.ChunkSeconds <= 0 {
		c.ChunkSeconds = jobs.DefaultChunkSeconds
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "scribe:"
	}
	if c.StatusTTL <= 0 {
		c.StatusTTL = 7 * 24 * time.Hour
	}
}

// ApplyDefaults fills every section and resolves the cross-section
// fallbacks: the legacy webhook secret, the storage public URL and the
// upload directory shared by media and local storage.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Jobs.ApplyDefaults()
	c.Media.ApplyDefaults()
	if c.Merger.MaxConcurrent == 0 && c.Merger.CleanupTimeout == 0 {
		c.Merger = transcription.DefaultMergerConfig()
	}
	c.RunPod.ApplyDefaults()
	c.YouTube.ApplyDefaults()
	c.Zyla.ApplyDefaults()

	if c.Webhook.Secret == "" {
		c.Webhook.Secret = c.Mobile.WebhookSecret
	}
	if c.Storage.PublicURL == "" {
		c.Storage.PublicURL = c.Domain.URL
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = c.Media.UploadDir
	}
	c.Storage.ApplyDefaults()

	if c.Redis.Addr != "" {
		c.Redis.Enabled = true
	}
	c.Redis.ApplyDefaults()
	if c.Kafka.Enabled {
		c.Kafka.ApplyDefaults()
	}
	c.Observability.ApplyDefaults()
}

// Validate checks the sections every role needs. Collaborator credentials
// are checked when the collaborator is built.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"media", c.Media.Validate},
		{"storage", c.Storage.Validate},
		{"redis", c.Redis.Validate},
		{"kafka", c.Kafka.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}
