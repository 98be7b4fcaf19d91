package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	cfg.SMTP.From = "me@example.com"
	cfg.SMTP.Username = "me@example.com"

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestLoadOverlaysDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9999
policy:
  auto_send: false
filters:
  extra_non_us_terms: ["atlantis"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.App.Port)
	assert.False(t, cfg.Policy.AutoSend)
	assert.Equal(t, []string{"atlantis"}, cfg.Filters.ExtraNonUSTerms)

	// Untouched sections keep defaults.
	assert.Equal(t, 120, cfg.Polling.CycleSeconds)
	assert.Equal(t, "gpt-4o-mini", cfg.Drafter.Model)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.App.Port = 0
	cfg.Policy.AutoSend = true
	cfg.SMTP.Host = ""
	cfg.Drafter.Model = ""
	cfg.Filters.ExtraNonUSTerms = []string{" London ", "london", "", "Paris"}

	out, res := NormalizeAndValidate(cfg)

	assert.False(t, res.OK())
	assert.Contains(t, res.Errors, "app.port must be 1..65535")
	assert.Contains(t, res.Errors, "policy.auto_send requires smtp.host and smtp.from")
	assert.Contains(t, res.Errors, "drafter.base_url and drafter.model are required")

	// Lists are trimmed and deduplicated case-insensitively.
	assert.Equal(t, []string{"London", "Paris"}, out.Filters.ExtraNonUSTerms)
}

func TestNormalizeWarnsOnNoSources(t *testing.T) {
	cfg := Default()
	cfg.Policy.AutoSend = false

	_, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.NotEmpty(t, res.Warnings)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := Default()
	cfg.Policy.AutoSend = false
	cfg.App.Port = 12345
	require.NoError(t, SaveAtomic(path, cfg))

	// A second save keeps a .bak of the previous file.
	cfg.App.Port = 23456
	require.NoError(t, SaveAtomic(path, cfg))
	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 23456, got.App.Port)
	assert.False(t, got.Policy.AutoSend)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("app:\n  port: 1234\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	got, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), got)

	cfg, err := Load(got)
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.App.Port)

	// Second call leaves the existing user copy alone.
	require.NoError(t, os.WriteFile(got, []byte("app:\n  port: 4321\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	cfg, err = Load(again)
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.App.Port)
}
