package runpod

import (
	"errors"
	"time"
)

// Defaults for Config.
const (
	DefaultPollInterval    = time.Second
	DefaultMaxPollDuration = 30 * time.Minute
	DefaultRequestTimeout  = 30 * time.Second
)

// Config is the `runpod` section of the service configuration.
type Config struct {
	// Endpoint is the serverless endpoint base URL (RUNPOD_SERVERLESS_URL).
	Endpoint string `mapstructure:"serverless_url"`
	// AuthToken is sent verbatim in the authorization header (RUNPOD_AUTH_TOKEN).
	AuthToken string `mapstructure:"auth_token"`
	// PollInterval is the delay between status polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// MaxPollDuration bounds how long one remote job may be polled.
	MaxPollDuration time.Duration `mapstructure:"max_poll_duration"`
	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// SubmitRate caps job submissions per second. Zero disables pacing.
	SubmitRate float64 `mapstructure:"submit_rate"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollDuration <= 0 {
		c.MaxPollDuration = DefaultMaxPollDuration
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Validate checks that the endpoint and credentials are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" || c.AuthToken == "" {
		return errors.New("runpod: endpoint URL or auth token not configured")
	}
	return nil
}
