package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withDataDir points CENTERVIEW_DATA_DIR at a temp dir for the test.
func withDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CENTERVIEW_DATA_DIR", dir)
	return dir
}

func TestLoadMinimalDefaults(t *testing.T) {
	dir := withDataDir(t)

	cfg, err := LoadMinimal()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8265, cfg.Port)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "checkins.db"), cfg.DBPath)
	assert.Equal(t, 30, cfg.TrendWindowDays)
	assert.Equal(t, 5, cfg.LeaderboardLimit)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := withDataDir(t)
	writeFile(t, dir, `{"port": 9000, "leaderboard_limit": 10}`)

	cfg, err := LoadMinimal()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 10, cfg.LeaderboardLimit)
	// Untouched keys keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 30, cfg.TrendWindowDays)
}

func TestEnvOverridesDefaults(t *testing.T) {
	withDataDir(t)
	t.Setenv("CENTERVIEW_HOST", "0.0.0.0")
	t.Setenv("CENTERVIEW_PORT", "7777")

	cfg, err := LoadMinimal()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 7777, cfg.Port)
}

func TestFlagsOverrideEverything(t *testing.T) {
	dir := withDataDir(t)
	writeFile(t, dir, `{"port": 9000}`)

	base, err := Default()
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, base)
	require.NoError(t, fs.Parse([]string{"-port", "1234"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Port)
}

func TestInvalidLimitRejected(t *testing.T) {
	dir := withDataDir(t)
	writeFile(t, dir, `{"leaderboard_limit": 0}`)

	_, err := LoadMinimal()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaderboard_limit")
}

func TestMalformedFileRejected(t *testing.T) {
	dir := withDataDir(t)
	writeFile(t, dir, `{not json`)

	_, err := LoadMinimal()
	require.Error(t, err)
}

func TestReloadKeepsOverrides(t *testing.T) {
	dir := withDataDir(t)

	cfg, err := LoadMinimal()
	require.NoError(t, err)
	cfg.Host = "10.0.0.1" // simulates a flag override

	writeFile(t, dir, `{"trend_window_days": 7}`)
	next, err := cfg.reload()
	require.NoError(t, err)
	assert.Equal(t, 7, next.TrendWindowDays)
	assert.Equal(t, "10.0.0.1", next.Host)

	// A bad file leaves the previous config untouched.
	writeFile(t, dir, `{"trend_window_days": -1}`)
	same, err := cfg.reload()
	require.Error(t, err)
	assert.Equal(t, cfg, same)
}

func writeFile(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(
		filepath.Join(dir, "config.json"), []byte(content), 0o644,
	)
	require.NoError(t, err)
}
