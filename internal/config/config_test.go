package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchNamedConstants(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 7777, cfg.RuntimePort)
	assert.Equal(t, 7778, cfg.EditorPort)
	assert.Equal(t, 12, cfg.MaxSnapshotDepth)
	assert.Equal(t, 2000, cfg.MaxNodeCount)
	assert.Equal(t, 2_000_000, cfg.MaxBase64Length)
}

func TestLoadAppliesFlagsOverDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-runtime-port=9000", "-quality=0.5"})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.RuntimePort)
	assert.Equal(t, 0.5, cfg.DefaultQuality)
	assert.Equal(t, 7778, cfg.EditorPort)
}

func TestLoadAppliesEnvOverDefaults(t *testing.T) {
	t.Setenv("BRIDGE_RUNTIME_PORT", "8123")
	t.Setenv("BRIDGE_CONSOLE_LOG", "/tmp/console.log")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.RuntimePort)
	assert.Equal(t, "/tmp/console.log", cfg.ConsoleLogPath)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BRIDGE_RUNTIME_PORT", "8123")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-runtime-port=9999"})
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.RuntimePort)
}

func TestLoadInvalidFlagReturnsError(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-max-nodes=notanumber"})
	assert.Error(t, err)
}
