package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AdvisoryMock, cfg.AdvisoryMode)
	assert.Equal(t, 5*time.Second, cfg.AdvisoryTimeout)
	assert.Equal(t, 1, cfg.AdvisoryRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.AdvisoryBackoff)
	assert.Equal(t, "dispatch.events", cfg.EventsChannel)
	assert.Equal(t, 10, cfg.ChatHistoryTurns)
	assert.False(t, cfg.SeedDemo)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nADVISORY_MODE=HTTP\nADVISORY_URL=http://advisor:8000\nSEED_DEMO=true\n"), 0o600))
	t.Setenv("ADVISORY_TIMEOUT", "750ms")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, AdvisoryHTTP, cfg.AdvisoryMode)
	assert.Equal(t, 750*time.Millisecond, cfg.AdvisoryTimeout)
	assert.True(t, cfg.SeedDemo)
}

func TestValidate(t *testing.T) {
	base := Config{AdvisoryMode: AdvisoryOff, AdvisoryTimeout: time.Second}
	assert.NoError(t, base.Validate())

	bad := base
	bad.AdvisoryMode = "magic"
	assert.Error(t, bad.Validate())

	bad = base
	bad.AdvisoryMode = AdvisoryHTTP
	assert.Error(t, bad.Validate())

	bad = base
	bad.AdvisoryMode = AdvisoryLLM
	assert.Error(t, bad.Validate())

	bad = base
	bad.AdvisoryRetries = -1
	assert.Error(t, bad.Validate())
}
