package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "tech.yml", `
url: "https://example.com/feed.xml"
category: "Technology"

settings:
  enabled: true

filters:
  - field: "title"
    includes:
      - "technology"
    excludes:
      - "spam"
`)

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())
	assert.Equal(t, 1, configCache.GetConfigCount())

	feedConfig, err := configCache.GetConfig("tech")
	require.NoError(t, err)

	assert.Equal(t, "tech", feedConfig.Name)
	assert.Equal(t, "https://example.com/feed.xml", feedConfig.URL)
	assert.Equal(t, "Technology", feedConfig.Category)
	assert.True(t, feedConfig.Settings.Enabled)
	require.Len(t, feedConfig.Filters, 1)
	assert.Equal(t, []string{"technology"}, feedConfig.Filters[0].Includes)
}

func TestConfigCacheMinimalConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "minimal.yml", `url: "  https://example.com/feed.xml  "`)

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())

	feedConfig, err := configCache.GetConfig("minimal")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/feed.xml", feedConfig.URL)
	assert.Empty(t, feedConfig.Category)
	assert.False(t, feedConfig.Settings.Enabled)
	assert.Empty(t, feedConfig.Filters)
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, configCache.Run())
	assert.Zero(t, configCache.GetConfigCount())

	require.NoError(t, NewConfigCache("").Run())
}

func TestConfigCacheValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing url",
			content: "category: Tech\n",
		},
		{
			name:    "relative url",
			content: "url: /feed.xml\n",
		},
		{
			name:    "unsupported scheme",
			content: "url: ftp://example.com/feed.xml\n",
		},
		{
			name: "unknown filter field",
			content: `
url: https://example.com/feed.xml
filters:
  - field: description
    includes: [go]
`,
		},
		{
			name: "filter without rules",
			content: `
url: https://example.com/feed.xml
filters:
  - field: title
`,
		},
		{
			name:    "malformed yaml",
			content: "url: [unterminated\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeFeedFile(t, tempDir, "broken.yml", tt.content)

			configCache := NewConfigCache(tempDir)
			assert.Error(t, configCache.Run())
			assert.Zero(t, configCache.GetConfigCount())
		})
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())

	_, err := configCache.GetConfig("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestConfigCacheLookupByURL(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "a.yml", "url: https://a.example.com/rss\nsettings:\n  enabled: true\n")
	writeFeedFile(t, tempDir, "b.yml", "url: https://b.example.com/rss\n")

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())

	feedConfig := configCache.GetConfigByURL("https://b.example.com/rss")
	require.NotNil(t, feedConfig)
	assert.Equal(t, "b", feedConfig.Name)

	assert.Nil(t, configCache.GetConfigByURL("https://c.example.com/rss"))
}

func TestConfigCacheEnabledURLs(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "zeta.yml", "url: https://zeta.example.com/rss\nsettings:\n  enabled: true\n")
	writeFeedFile(t, tempDir, "alpha.yml", "url: https://alpha.example.com/rss\nsettings:\n  enabled: true\n")
	writeFeedFile(t, tempDir, "off.yml", "url: https://off.example.com/rss\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())

	assert.Len(t, configCache.GetEnabledConfigs(), 2)
	assert.Equal(t, []string{
		"https://alpha.example.com/rss",
		"https://zeta.example.com/rss",
	}, configCache.EnabledURLs())
}

func TestConfigCacheEnabledURLsFollowReload(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "alpha.yml", "url: https://alpha.example.com/rss\nsettings:\n  enabled: true\n")

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())
	assert.Equal(t, []string{"https://alpha.example.com/rss"}, configCache.EnabledURLs())

	writeFeedFile(t, tempDir, "alpha.yml", "url: https://alpha.example.com/rss\nsettings:\n  enabled: false\n")
	writeFeedFile(t, tempDir, "beta.yml", "url: https://beta.example.com/rss\nsettings:\n  enabled: true\n")
	require.NoError(t, configCache.Run())

	assert.Equal(t, []string{"https://beta.example.com/rss"}, configCache.EnabledURLs())
}

func TestConfigCacheIgnoresOtherExtensions(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "feed.yml", "url: https://example.com/rss\n")
	writeFeedFile(t, tempDir, "notes.txt", "not a feed")
	writeFeedFile(t, tempDir, "other.yaml", "url: https://other.example.com/rss\n")

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())
	assert.Equal(t, 1, configCache.GetConfigCount())
}

func TestConfigCacheReloadReplacesSources(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "first.yml", "url: https://first.example.com/rss\n")

	configCache := NewConfigCache(tempDir)
	require.NoError(t, configCache.Run())
	require.Equal(t, 1, configCache.GetConfigCount())

	require.NoError(t, os.Remove(filepath.Join(tempDir, "first.yml")))
	writeFeedFile(t, tempDir, "second.yml", "url: https://second.example.com/rss\n")
	require.NoError(t, configCache.Run())

	_, err := configCache.GetConfig("first")
	assert.Error(t, err)
	_, err = configCache.GetConfig("second")
	assert.NoError(t, err)

	writeFeedFile(t, tempDir, "broken.yml", "category: x\n")
	assert.Error(t, configCache.Run())
	assert.Equal(t, 1, configCache.GetConfigCount())
}

func TestConfigCacheLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "single.yml", "url: https://single.example.com/rss\n")

	configCache := NewConfigCache(tempDir)
	feedConfig, err := configCache.LoadConfig("single")
	require.NoError(t, err)
	assert.Equal(t, "single", feedConfig.Name)
	assert.Equal(t, 1, configCache.GetConfigCount())

	_, err = configCache.LoadConfig("absent")
	assert.Error(t, err)
}
