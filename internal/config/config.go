// Package config holds the bridge's process-wide constants (spec.md §6)
// and a small defaults < environment < flags cascade, the way
// cmd/gasoline-cmd/config/loader.go layers its own configuration.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config is the full set of process-wide constants spec.md §6 names.
type Config struct {
	Host string // loopback only, never overridable to a remote address

	RuntimePort int
	EditorPort  int

	MaxSnapshotDepth int
	MaxNodeCount     int

	DefaultScreenshotWidth  int
	DefaultScreenshotHeight int
	DefaultQuality          float64
	MaxBase64Length         int

	MaxEventBuffer int

	ConsoleLogPath string
}

// Defaults mirrors spec.md §6's named constants.
func Defaults() Config {
	return Config{
		Host:                    "127.0.0.1",
		RuntimePort:             7777,
		EditorPort:              7778,
		MaxSnapshotDepth:        12,
		MaxNodeCount:            2000,
		DefaultScreenshotWidth:  800,
		DefaultScreenshotHeight: 600,
		DefaultQuality:          0.8,
		MaxBase64Length:         2_000_000,
		MaxEventBuffer:          200,
		ConsoleLogPath:          "",
	}
}

// Load layers environment variables over Defaults(), then flags registered
// on fs over the result. fs is typically flag.CommandLine; tests may pass
// a scratch FlagSet. args is the CLI argument slice (excluding argv[0]).
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Defaults()
	applyEnv(&cfg)

	fs.IntVar(&cfg.RuntimePort, "runtime-port", cfg.RuntimePort, "runtime bridge loopback port")
	fs.IntVar(&cfg.EditorPort, "editor-port", cfg.EditorPort, "editor bridge loopback port")
	fs.IntVar(&cfg.MaxSnapshotDepth, "max-depth", cfg.MaxSnapshotDepth, "default snapshot traversal depth bound")
	fs.IntVar(&cfg.MaxNodeCount, "max-nodes", cfg.MaxNodeCount, "snapshot traversal node-count cap")
	fs.Float64Var(&cfg.DefaultQuality, "quality", cfg.DefaultQuality, "default screenshot JPEG quality")
	fs.IntVar(&cfg.MaxBase64Length, "max-base64", cfg.MaxBase64Length, "byte budget for a base64-encoded screenshot")
	fs.StringVar(&cfg.ConsoleLogPath, "console-log", cfg.ConsoleLogPath, "path to the engine's rolling log file for GET /console")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BRIDGE_RUNTIME_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RuntimePort = n
		}
	}
	if v := os.Getenv("BRIDGE_EDITOR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EditorPort = n
		}
	}
	if v := os.Getenv("BRIDGE_CONSOLE_LOG"); v != "" {
		cfg.ConsoleLogPath = v
	}
}
