package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serialbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	t.Setenv("SB_LIBS", "/opt/serialbox/lib")
	path := writeConfig(t, `
engine: cgo
library_paths: ["${SB_LIBS}", /usr/local/lib]
compression: zstd
log:
  level: debug
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cgo", cfg.Engine)
	assert.Equal(t, []string{"/opt/serialbox/lib", "/usr/local/lib"}, cfg.LibraryPaths)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, 1e-12, cfg.Compare.Tolerance)

	ec := cfg.EngineConfig()
	assert.Equal(t, cfg.LibraryPaths, ec.LibraryPaths)
	assert.Equal(t, "zstd", ec.Compression)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "compare:\n  tolerance: 0.001\n")
	t.Setenv(EnvVar, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Compare.Tolerance)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
compression: brotli
log:
  level: loud
  format: xml
compare:
  tolerance: -1
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	for _, part := range []string{"brotli", "loud", "xml", "tolerance"} {
		assert.Contains(t, err.Error(), part)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoggerFormats(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "info"

	var buf bytes.Buffer
	cfg.newLogger(&buf, false).Info("hello", "k", 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])

	buf.Reset()
	cfg.newLogger(&buf, true).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	cfg.newLogger(&buf, true).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
	l, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadFileJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serialbox.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
  // reference runs are noisy
  "compare": {"tolerance": 0.000001},
  /* logs go to a collector */
  "log": {"format": "json",},
}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-6, cfg.Compare.Tolerance)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "native", cfg.Engine)
}
