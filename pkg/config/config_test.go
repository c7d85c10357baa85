package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nika", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultChapterPage, cfg.ChapterPageSize)
	assert.Equal(t, "mangapill", cfg.DefaultSource)
	assert.Equal(t, DefaultErrorTTL, cfg.ErrorTTL.Duration)

	_, err = os.Stat(path)
	assert.NoError(t, err, "config file should be written on first load")

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ChapterPageSize, again.ChapterPageSize)
	assert.Equal(t, cfg.ErrorTTL, again.ErrorTTL)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
anilist_token = "lkjasdjklasjlkdasjlk"
chapter_page_size = 10
default_source = "mangadex"
error_ttl = "750ms"
epub = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lkjasdjklasjlkdasjlk", cfg.AnilistToken)
	assert.Equal(t, 10, cfg.ChapterPageSize)
	assert.Equal(t, "mangadex", cfg.DefaultSource)
	assert.Equal(t, 750*time.Millisecond, cfg.ErrorTTL.Duration)
	assert.True(t, cfg.EPUB)
	assert.Equal(t, DefaultConcurrency, cfg.MaxConcurrentDownloads, "unset keys keep defaults")
}

func TestLoadNormalizesInvalidPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("chapter_page_size = 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultChapterPage, cfg.ChapterPageSize)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("chapter_page_size = \"many\"\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("NIKA_CHAPTER_PAGE_SIZE", "50")
	t.Setenv("NIKA_SOURCE", "mangadex")
	t.Setenv("NIKA_ERROR_TTL", "2s")
	t.Setenv("NIKA_EPUB", "true")
	t.Setenv("NIKA_REQUESTS_PER_SECOND", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.ChapterPageSize)
	assert.Equal(t, "mangadex", cfg.DefaultSource)
	assert.Equal(t, 2*time.Second, cfg.ErrorTTL.Duration)
	assert.True(t, cfg.EPUB)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
}

func TestEnvOverrideInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("NIKA_CHAPTER_PAGE_SIZE", "lots")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrideInvalidRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("NIKA_REQUESTS_PER_SECOND", "fast")

	_, err := Load(path)
	assert.ErrorContains(t, err, "NIKA_REQUESTS_PER_SECOND")
}
