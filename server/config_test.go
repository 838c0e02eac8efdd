package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, 10, cfg.MaxShipsPerBattle)
	assert.Equal(t, DefaultRules(), cfg.Rules)
	assert.Equal(t, time.Second/30, cfg.TickDuration())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("NAVAL_TICKRATE", "60")
	t.Setenv("NAVAL_RULES_NAVAL", "false")
	t.Setenv("NAVAL_RULES_HIDEENEMYNAMES", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TickRate)
	assert.False(t, cfg.Rules.Naval)
	assert.True(t, cfg.Rules.HideEnemyNames)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naval.yaml")
	content := "tickRate: 20\nmaxTurns: 500\nrules:\n  fieldWidth: 1000\n  explosionLength: 9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.TickRate)
	assert.Equal(t, 500, cfg.MaxTurns)
	assert.Equal(t, 1000.0, cfg.Rules.FieldWidth)
	assert.Equal(t, 9, cfg.Rules.ExplosionLength)
	// Keys missing from the file keep their defaults
	assert.Equal(t, 600.0, cfg.Rules.FieldHeight)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("NAVAL_TICKRATE", "0")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigInvalidRules(t *testing.T) {
	t.Setenv("NAVAL_RULES_FIELDWIDTH", "-1")
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidRules)
}
