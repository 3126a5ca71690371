package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, filepath.Join(cwd, defaultArtifact), cfg.Artifact)
	assert.Equal(t, "/knowledge-graph.json", cfg.ArtifactRoute)
	assert.Equal(t, "docs", cfg.DocsPrefix)
	assert.Empty(t, cfg.DocsDir)
	assert.False(t, cfg.Watch)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "embedded", cfg.WebAssetsMode)
}

func TestLoadConfig_WebAssets(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		args        []string
		mode        string
		staticDir   string
		errorSubstr string
	}{
		{name: "embedded by default", mode: "embedded"},
		{name: "off alias", args: []string{"-web-assets", "disabled"}, mode: "off"},
		{name: "fs resolves dir", args: []string{"-web-assets", "dir", "-static-dir", "build"}, mode: "fs", staticDir: filepath.Join(cwd, "build")},
		{name: "fs needs dir", args: []string{"-web-assets", "fs"}, errorSubstr: "requires static-dir"},
		{name: "unknown mode", args: []string{"-web-assets", "cdn"}, errorSubstr: "unsupported web-assets mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.args)
			if tt.errorSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, cfg.WebAssetsMode)
			assert.Equal(t, tt.staticDir, cfg.StaticDir)
		})
	}
}

func TestLoadConfig_AddrResolution(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "flag wins",
			args:     []string{"-addr", "0.0.0.0:9000"},
			envVars:  map[string]string{"DOCGRAPH_ADDR": "127.0.0.1:7000"},
			expected: "0.0.0.0:9000",
		},
		{
			name:     "addr env",
			envVars:  map[string]string{"DOCGRAPH_ADDR": "127.0.0.1:7000"},
			expected: "127.0.0.1:7000",
		},
		{
			name:     "port env",
			envVars:  map[string]string{"DOCGRAPH_PORT": "7100"},
			expected: "127.0.0.1:7100",
		},
		{
			name:     "addr env beats port env",
			envVars:  map[string]string{"DOCGRAPH_ADDR": "127.0.0.1:7000", "DOCGRAPH_PORT": "7100"},
			expected: "127.0.0.1:7000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Addr)
		})
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		errorSubstr string
	}{
		{name: "empty addr", args: []string{"-addr", " "}, errorSubstr: "addr cannot be empty"},
		{name: "empty artifact", args: []string{"-artifact", ""}, errorSubstr: "artifact cannot be empty"},
		{name: "bad log level", args: []string{"-log-level", "loud"}, errorSubstr: "invalid log level"},
		{name: "bad watch env", envVars: map[string]string{"DOCGRAPH_WATCH": "sometimes"}, errorSubstr: "invalid DOCGRAPH_WATCH"},
		{name: "cert without key", args: []string{"-tls-cert", "cert.pem"}, errorSubstr: "must be set together"},
		{name: "unknown flag", args: []string{"-poll-interval", "5s"}, errorSubstr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorSubstr)
		})
	}
}

func TestLoadConfig_RemoteTargetsAreNotResolved(t *testing.T) {
	for _, dsn := range []string{"sqlite://data/docgraph.db", "redis://localhost:6379/0?key=kg"} {
		cfg, err := LoadConfig([]string{"-artifact", dsn})
		require.NoError(t, err)
		assert.Equal(t, dsn, cfg.Artifact)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DOCGRAPH_DOCS_DIR", "/srv/docs")
	t.Setenv("DOCGRAPH_MANIFEST", "none")
	t.Setenv("DOCGRAPH_DOCS_PREFIX", "/handbook/")
	t.Setenv("DOCGRAPH_WATCH", "true")
	t.Setenv("DOCGRAPH_LOG_LEVEL", "debug")
	t.Setenv("DOCGRAPH_ARTIFACT_ROUTE", "/graph.json")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", cfg.DocsDir)
	assert.Equal(t, "none", cfg.Manifest)
	assert.Equal(t, "handbook", cfg.DocsPrefix)
	assert.True(t, cfg.Watch)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/graph.json", cfg.ArtifactRoute)
}
