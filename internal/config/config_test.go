package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/classify"
)

func TestLoad(t *testing.T) {
	t.Run("missing file creates defaults on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "caltime.yaml")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", cfg.Timezone)
		assert.Equal(t, classify.DefaultPattern, cfg.CategoryRegex)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("round-trips through save", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "caltime.yaml")
		cfg := DefaultConfig()
		cfg.Timezone = "Europe/Warsaw"
		cfg.Sources = []SourceConfig{{ID: "work", URL: "https://example.com/work.ics", Name: "Work"}}
		require.NoError(t, Save(path, cfg))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Warsaw", loaded.Timezone)
		require.Len(t, loaded.Sources, 1)
		assert.Equal(t, "work", loaded.Sources[0].ID)
	})

	t.Run("partial file is normalized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "caltime.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timezone: UTC\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "UTC", cfg.Timezone)
		assert.Equal(t, classify.DefaultPattern, cfg.CategoryRegex)
		assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	})

	t.Run("empty path is an error", func(t *testing.T) {
		_, err := Load("")
		assert.Error(t, err)
	})
}
