// Package config loads calcengine settings from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the complete application configuration
type Config struct {
	Log    LogConfig    `toml:"log"`
	Engine EngineConfig `toml:"engine"`
	MCP    MCPConfig    `toml:"mcp"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// EngineConfig holds execution settings
type EngineConfig struct {
	DefinitionsDir string `toml:"definitions_dir"`
	ArtifactsDir   string `toml:"artifacts_dir"`
	SaveRuns       bool   `toml:"save_runs"`
}

// MCPConfig holds MCP server settings
type MCPConfig struct {
	Host    string `toml:"host"`
	SSEPort int    `toml:"sse_port"` // 0 serves stdio
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config %s: unknown key %q", path, undecoded[0].String())
	}

	cfg.expandEnvVars()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can use.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.MCP.SSEPort < 0 || c.MCP.SSEPort > 65535 {
		return fmt.Errorf("invalid mcp sse_port %d", c.MCP.SSEPort)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Engine.ArtifactsDir == "" {
		c.Engine.ArtifactsDir = "."
	}
	if c.MCP.Host == "" {
		c.MCP.Host = "localhost"
	}
}

func (c *Config) expandEnvVars() {
	c.Engine.DefinitionsDir = os.ExpandEnv(c.Engine.DefinitionsDir)
	c.Engine.ArtifactsDir = os.ExpandEnv(c.Engine.ArtifactsDir)
}
