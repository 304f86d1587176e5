package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questlog/internal/progression"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20*time.Second, cfg.AITimeout)
	assert.False(t, cfg.AutoSwitchTheme)
	assert.False(t, cfg.AIEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUESTLOG_DB_PATH", "/tmp/q.db")
	t.Setenv("QUESTLOG_ADDR", ":9000")
	t.Setenv("QUESTLOG_AUTO_SWITCH_THEME", "true")
	t.Setenv("QUESTLOG_AI_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/q.db", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.AutoSwitchTheme)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.True(t, cfg.AIEnabled())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("QUESTLOG_AI_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestProgressionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progression.yaml")
	yaml := "level_thresholds:\n  1: 0\n  2: 50\ntheme_unlocks:\n  1: cyberpunk\n  2: minimalist\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	eng, err := Config{ProgressionFile: path}.Progression()
	require.NoError(t, err)
	assert.Equal(t, 2, eng.MaxLevel())
	assert.Equal(t, 2, eng.LevelFor(50))
	assert.Equal(t, []progression.Theme{progression.ThemeCyberpunk, progression.ThemeMinimalist}, eng.UnlockedThemes(2))
}

func TestProgressionRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progression.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level_thresholds:\n  1: 10\n"), 0o644))

	_, err := Config{ProgressionFile: path}.Progression()
	var cfgErr *progression.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestProgressionDefault(t *testing.T) {
	eng, err := Config{}.Progression()
	require.NoError(t, err)
	assert.Equal(t, 10, eng.MaxLevel())
}

func TestNewLogger(t *testing.T) {
	log, err := Config{LogLevel: "debug"}.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = Config{LogLevel: "loud"}.NewLogger()
	assert.Error(t, err)
}
