package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlake/geocol/pkg/config"
	"github.com/visionlake/geocol/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := config.Default("demo", "/data/warehouse")

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "/data/warehouse", cfg.Warehouse)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestTrackingPath(t *testing.T) {
	cfg := config.Default("demo", "/data/warehouse")
	assert.Equal(t, filepath.Join("/data/warehouse", "tracking.db"), cfg.TrackingPath())

	cfg.Tracking.Path = "/elsewhere/runs.db"
	assert.Equal(t, "/elsewhere/runs.db", cfg.TrackingPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SessionConfig)
	}{
		{"missing name", func(c *config.SessionConfig) { c.Name = "" }},
		{"missing warehouse", func(c *config.SessionConfig) { c.Warehouse = "" }},
		{"unknown provider", func(c *config.SessionConfig) { c.ObjectStore.Provider = "ftp" }},
		{"provider without bucket", func(c *config.SessionConfig) { c.ObjectStore.Provider = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default("demo", "/data/warehouse")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}

	cfg := config.Default("demo", "/data/warehouse")
	cfg.ObjectStore.Provider = "gcs"
	cfg.ObjectStore.Bucket = "test-bucket"
	require.NoError(t, cfg.Validate())
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("GEOCOL_TEST_WAREHOUSE", "/tmp/warehouse")

	path := filepath.Join(t.TempDir(), "session.yaml")
	content := `
name: ci-session
warehouse: ${GEOCOL_TEST_WAREHOUSE}
logging:
  level: debug
  encoding: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var cfg config.SessionConfig
	require.NoError(t, config.Load(path, &cfg))

	assert.Equal(t, "ci-session", cfg.Name)
	assert.Equal(t, "/tmp/warehouse", cfg.Warehouse)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
}

func TestLoadMissingEnvVarSubstitutesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	content := "name: s\nwarehouse: ${GEOCOL_DEFINITELY_UNSET_VAR}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var cfg config.SessionConfig
	require.NoError(t, config.Load(path, &cfg))
	assert.Empty(t, cfg.Warehouse)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")

	cfg := config.Default("roundtrip", "/data/warehouse")
	cfg.ObjectStore.Provider = "s3"
	cfg.ObjectStore.Bucket = "bucket"
	cfg.ObjectStore.Region = "us-west-2"
	require.NoError(t, config.Save(path, cfg))

	var got config.SessionConfig
	require.NoError(t, config.Load(path, &got))
	assert.Equal(t, *cfg, got)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg config.SessionConfig
	err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.Error(t, err)
}
