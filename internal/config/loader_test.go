package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("HOME", t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, BackendS3, cfg.Storage.Backend)
		assert.Equal(t, "", cfg.Storage.Region)
		assert.Equal(t, "", cfg.Storage.Endpoint)
		assert.False(t, cfg.Storage.ForcePathStyle)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Zero(t, cfg.Delete.MaxRPS)

		assert.Equal(t, "developer-task", cfg.Bucket())
		assert.Equal(t, "b-wing/", cfg.Prefix())
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`storage:
  region: eu-west-1
  endpoint: http://localhost:9000
  force_path_style: true
logging:
  level: debug
delete:
  max_rps: 5
`), 0o600))

		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)

		assert.Equal(t, "eu-west-1", cfg.Storage.Region)
		assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
		assert.True(t, cfg.Storage.ForcePathStyle)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 5.0, cfg.Delete.MaxRPS)
	})

	t.Run("DefaultFileInWorkingDir", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bwing.yaml"), []byte("storage:\n  profile: dev\n"), 0o600))

		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.Storage.Profile)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("BWING_STORAGE_REGION", "ap-southeast-2")
		t.Setenv("BWING_LOGGING_LEVEL", "warn")
		t.Setenv("BWING_DELETE_MAX_RPS", "2.5")

		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)

		assert.Equal(t, "ap-southeast-2", cfg.Storage.Region)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, 2.5, cfg.Delete.MaxRPS)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)

		var loadErr *LoadError
		assert.ErrorAs(t, err, &loadErr)
	})

	t.Run("NegativeRate", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("BWING_DELETE_MAX_RPS", "-1")

		_, err := Load(viper.New(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete.max_rps must be >= 0")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("sets unset variables only", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("BWING_TEST_FRESH=from-file\nBWING_TEST_SET=from-file\n"), 0o600))

		t.Setenv("BWING_TEST_SET", "from-env")
		t.Setenv("BWING_TEST_FRESH", "")
		require.NoError(t, os.Unsetenv("BWING_TEST_FRESH"))

		require.NoError(t, LoadEnvFile(path))
		t.Cleanup(func() { _ = os.Unsetenv("BWING_TEST_FRESH") })

		assert.Equal(t, "from-file", os.Getenv("BWING_TEST_FRESH"))
		assert.Equal(t, "from-env", os.Getenv("BWING_TEST_SET"))
	})

	t.Run("missing file is fine", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(""))
	})
}

func TestLoadError(t *testing.T) {
	err := &LoadError{Path: "bwing.yaml", Err: os.ErrPermission}
	assert.Equal(t, "config bwing.yaml: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)

	assert.Equal(t, "config: permission denied", (&LoadError{Err: os.ErrPermission}).Error())
}

func TestValidate_Backend(t *testing.T) {
	tests := []struct {
		name    string
		storage StorageConfig
		wantErr string
	}{
		{name: "default s3", storage: StorageConfig{Backend: BackendS3}},
		{name: "empty means s3", storage: StorageConfig{}},
		{name: "file with dir", storage: StorageConfig{Backend: BackendFile, BaseDir: "/srv/buckets"}},
		{name: "file without dir", storage: StorageConfig{Backend: BackendFile}, wantErr: "storage.base_dir is required"},
		{name: "unknown", storage: StorageConfig{Backend: "gcs"}, wantErr: `unknown storage.backend "gcs"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: tt.storage}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
