package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calcengine.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ".", cfg.Engine.ArtifactsDir)
	assert.False(t, cfg.Engine.SaveRuns)
	assert.Equal(t, "localhost", cfg.MCP.Host)
	assert.Equal(t, 0, cfg.MCP.SSEPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("CALC_HOME", "/srv/calc")
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[engine]
definitions_dir = "$CALC_HOME/definitions"
save_runs = true

[mcp]
sse_port = 8090
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/srv/calc/definitions", cfg.Engine.DefinitionsDir)
	assert.Equal(t, ".", cfg.Engine.ArtifactsDir)
	assert.True(t, cfg.Engine.SaveRuns)
	assert.Equal(t, "localhost", cfg.MCP.Host)
	assert.Equal(t, 8090, cfg.MCP.SSEPort)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "[log\nlevel ="},
		{"unknown key", "[engine]\nworkers = 4\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"bad format", "[log]\nformat = \"xml\"\n"},
		{"bad port", "[mcp]\nsse_port = 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
