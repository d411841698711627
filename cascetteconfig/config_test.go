package cascetteconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppliesCacheDirEnvOverride(t *testing.T) {
	t.Setenv(CacheDirEnvVar, "/tmp/custom-cascette-cache")
	cfg := Default()
	assert.Equal(t, "/tmp/custom-cascette-cache", cfg.CacheDir)
}

func TestDefaultFallsBackToUserCacheDir(t *testing.T) {
	require.NoError(t, os.Unsetenv(CacheDirEnvVar))
	cfg := Default()
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestLogVerbosityFromEnv(t *testing.T) {
	require.NoError(t, os.Unsetenv(LogVerbosityEnvVar))
	_, ok := LogVerbosityFromEnv()
	assert.False(t, ok)

	t.Setenv(LogVerbosityEnvVar, "3")
	level, ok := LogVerbosityFromEnv()
	require.True(t, ok)
	assert.Equal(t, 3, level)

	t.Setenv(LogVerbosityEnvVar, "not-a-number")
	_, ok = LogVerbosityFromEnv()
	assert.False(t, ok)
}

func TestIndexManagerConfigHonorsToggles(t *testing.T) {
	cfg := Default()
	cfg.MaxCacheEntries = 500
	cfg.RefreshInterval = 0

	imCfg := cfg.IndexManagerConfig(nil)
	assert.Equal(t, 500, imCfg.LookupCacheCapacity)
	assert.Equal(t, cfg.MaxConcurrentFiles, imCfg.MaxConcurrentFiles)

	cfg.EnableCaching = false
	cfg.EnableBackgroundUpdates = false
	imCfg = cfg.IndexManagerConfig(nil)
	assert.Equal(t, 0, imCfg.LookupCacheCapacity)
	assert.Equal(t, 0, int(imCfg.RefreshInterval))
}
