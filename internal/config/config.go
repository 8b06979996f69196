package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DMSecret          string        `mapstructure:"dm_secret" yaml:"dm_secret"`
	UploadDir         string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Default returns configuration with reasonable starter defaults. DMSecret
// is intentionally empty: without an operator-provided secret, DM login is
// rejected in every room.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		UploadDir:         "./uploads",
		MaxUploadBytes:    10 << 20, // 10MB
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DMSecret != "" {
		c.DMSecret = other.DMSecret
	}
	if other.UploadDir != "" {
		c.UploadDir = other.UploadDir
	}
	if other.MaxUploadBytes != 0 {
		c.MaxUploadBytes = other.MaxUploadBytes
	}
}
