package youtube

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults for Config.
const (
	DefaultDataAPIURL         = "https://www.googleapis.com"
	DefaultPlayerURL          = "https://www.youtube.com/youtubei/v1/player"
	DefaultMaxDurationSeconds = 7200
	DefaultAudioAttempts      = 10
	DefaultAudioInterval      = 3 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
)

// Config is the `youtube` section of the service configuration.
type Config struct {
	// DataAPIKey authenticates against the YouTube Data API v3 (YOUTUBE_DATA_API_KEY).
	DataAPIKey string `mapstructure:"data_api_key"`
	// DataAPIURL is the Data API base URL.
	DataAPIURL string `mapstructure:"data_api_url"`
	// PlayerURL is the innertube player endpoint captions are listed from.
	PlayerURL string `mapstructure:"player_url"`
	// MaxDurationSeconds rejects longer videos before any download.
	MaxDurationSeconds int `mapstructure:"max_duration_seconds"`
	// RequestTimeout bounds each metadata or caption request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.DataAPIURL == "" {
		c.DataAPIURL = DefaultDataAPIURL
	}
	if c.PlayerURL == "" {
		c.PlayerURL = DefaultPlayerURL
	}
	if c.MaxDurationSeconds <= 0 {
		c.MaxDurationSeconds = DefaultMaxDurationSeconds
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// AudioAPIConfig is the `zyla` section: the YouTube-to-audio link API.
type AudioAPIConfig struct {
	// URL is the endpoint prefix; "=<video id>" is appended (ZYLA_YOUTUBE_API_URL).
	URL string `mapstructure:"youtube_api_url"`
	// Key is sent as a bearer token (ZYLA_YOUTUBE_API_KEY).
	Key string `mapstructure:"youtube_api_key"`
	// Attempts is how many times the link is requested before giving up.
	Attempts int `mapstructure:"attempts"`
	// Interval is the wait between attempts.
	Interval time.Duration `mapstructure:"interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *AudioAPIConfig) ApplyDefaults() {
	if c.Attempts <= 0 {
		c.Attempts = DefaultAudioAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultAudioInterval
	}
}

// ProxyConfig is the `proxy` section used for caption retrieval.
type ProxyConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
}

// URL returns the proxy URL, or "" when no host is configured.
func (p ProxyConfig) URL() string {
	if p.Host == "" {
		return ""
	}
	u := &url.URL{Scheme: "http", Host: p.Host}
	if p.Port != "" {
		u.Host = fmt.Sprintf("%s:%s", p.Host, p.Port)
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}
