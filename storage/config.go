package storage

import (
	"errors"
	"fmt"
	"time"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider    = ProviderLocal
	DefaultBasePath    = "uploads"
	DefaultRoutePrefix = "uploads"
	DefaultRegion      = "us-east-1"
	DefaultKeyPrefix   = "chunks/"
)

// Config holds storage configuration.
type Config struct {
	// Provider selects the storage backend: "local" or "s3".
	Provider string `mapstructure:"provider" json:"provider"`

	// BasePath is the root directory for local storage.
	BasePath string `mapstructure:"base_path" json:"base_path"`
	// PublicURL is the externally reachable base URL of this service
	// (DOMAIN_URL). Local objects are served under PublicURL/RoutePrefix.
	PublicURL string `mapstructure:"public_url" json:"public_url"`
	// RoutePrefix is the HTTP path the local directory is mounted at.
	RoutePrefix string `mapstructure:"route_prefix" json:"route_prefix"`

	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" json:"bucket"`
	// Region is the AWS region for S3.
	Region string `mapstructure:"region" json:"region"`
	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// AccessKey is the AWS access key ID.
	AccessKey string `mapstructure:"access_key" json:"access_key"`
	// SecretKey is the AWS secret access key.
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`
	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`
	// KeyPrefix is prepended to every uploaded S3 key.
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`
	// PresignExpiry makes URL return presigned GET URLs when positive.
	PresignExpiry time.Duration `mapstructure:"presign_expiry" json:"presign_expiry"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.RoutePrefix == "" {
		c.RoutePrefix = DefaultRoutePrefix
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("storage: bucket is required for s3 provider"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("storage: region is required for s3 provider"))
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			errs = append(errs, errors.New("storage: access_key and secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
