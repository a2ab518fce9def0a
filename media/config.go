package media

import (
	"fmt"
	"time"
)

// DefaultUploadDir is the shared working directory when none is configured.
const DefaultUploadDir = "uploads"

// Config locates the media tools and the shared working directory.
type Config struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	// UploadDir holds uploads, extracted audio and chunks for every job.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`
	// ToolTimeout bounds a single ffmpeg/ffprobe invocation.
	ToolTimeout time.Duration `yaml:"tool_timeout" mapstructure:"tool_timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.UploadDir == "" {
		c.UploadDir = DefaultUploadDir
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = 30 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.UploadDir == "" {
		return fmt.Errorf("media.upload_dir is required")
	}
	return nil
}
