// Package config loads bwing's runtime configuration.
//
// Bucket and prefix are fixed; only the ambient connection details and
// logging can be tuned, via an optional YAML file, BWING_* environment
// variables, or a local .env file.
package config

// DefaultBucket is the bucket every command operates on.
const DefaultBucket = "developer-task"

// DefaultPrefix scopes every key bwing lists, writes, or deletes.
const DefaultPrefix = "b-wing/"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "BWING"

// Config is the resolved runtime configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Delete  DeleteConfig  `mapstructure:"delete"`
}

// Storage backends.
const (
	BackendS3   = "s3"
	BackendFile = "file"
)

// StorageConfig holds connection details. Empty S3 fields defer to the
// AWS SDK's own resolution (AWS_REGION, AWS_PROFILE, AWS_ENDPOINT_URL).
type StorageConfig struct {
	// Backend is "s3" (default) or "file".
	Backend string `mapstructure:"backend"`
	// BaseDir holds one directory per bucket when Backend is "file".
	BaseDir string `mapstructure:"base_dir"`

	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DeleteConfig tunes regex-delete.
type DeleteConfig struct {
	// MaxRPS caps delete calls per second; 0 means unlimited.
	MaxRPS float64 `mapstructure:"max_rps"`
}

// Bucket returns the fixed bucket name.
func (c *Config) Bucket() string {
	return DefaultBucket
}

// Prefix returns the fixed key prefix.
func (c *Config) Prefix() string {
	return DefaultPrefix
}
