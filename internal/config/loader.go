package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// DefaultEnvFile is the dotenv file loaded before configuration is read.
const DefaultEnvFile = ".env"

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendS3)
	v.SetDefault("storage.base_dir", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.profile", "")
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("delete.max_rps", 0.0)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment. Variables that are already set win. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := gotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Bind prepares v to read BWING_* environment variables and, when
// configFile is set, that YAML file. Otherwise bwing.yaml is looked up in
// the working directory and the user config directory.
func Bind(v *viper.Viper, configFile string) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		return
	}
	v.SetConfigName("bwing")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(dir + string(os.PathSeparator) + "bwing")
	}
}

// Load reads configuration into a Config.
//
// A missing default config file is fine; an explicitly named file that
// cannot be read is an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	Bind(v, configFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &LoadError{Path: configFile, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &LoadError{Path: v.ConfigFileUsed(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendS3, "":
	case BackendFile:
		if c.Storage.BaseDir == "" {
			return &LoadError{Err: fmt.Errorf("storage.base_dir is required for the file backend")}
		}
	default:
		return &LoadError{Err: fmt.Errorf("unknown storage.backend %q (want s3 or file)", c.Storage.Backend)}
	}
	if c.Delete.MaxRPS < 0 {
		return &LoadError{Err: fmt.Errorf("delete.max_rps must be >= 0, got %v", c.Delete.MaxRPS)}
	}
	return nil
}

// LoadError reports a configuration that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return "config " + e.Path + ": " + e.Err.Error()
	}
	return "config: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
