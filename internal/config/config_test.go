package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8081", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, int64(64<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	assert.Empty(t, cfg.Logs.Filename)
	assert.Equal(t, 25, cfg.Logs.MaxSizeMB)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2serv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
logLevel: debug
logFormat: json
maxUploadBytes: 1024
readTimeout: 3s
logs:
  filename: /var/log/l2serv.log
  maxBackups: 2
  compress: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "/var/log/l2serv.log", cfg.Logs.Filename)
	assert.Equal(t, 2, cfg.Logs.MaxBackups)
	assert.Equal(t, 25, cfg.Logs.MaxSizeMB)
	assert.True(t, cfg.Logs.Compress)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2serv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o644))

	t.Setenv("L2SERV_ADDR", ":7000")
	t.Setenv("L2SERV_LOG_LEVEL", "trace")
	t.Setenv("L2SERV_LOG_FORMAT", "json")
	t.Setenv("L2SERV_LOG_FILE", "decode.log")
	t.Setenv("L2SERV_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("L2SERV_READ_TIMEOUT", "1m")
	t.Setenv("L2SERV_WRITE_TIMEOUT", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "decode.log", cfg.Logs.Filename)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.WriteTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	for name, tc := range map[string]struct {
		key, value, want string
	}{
		"LogLevel":     {"L2SERV_LOG_LEVEL", "loud", "log level"},
		"LogFormat":    {"L2SERV_LOG_FORMAT", "xml", "log format"},
		"UploadSize":   {"L2SERV_MAX_UPLOAD_BYTES", "lots", "L2SERV_MAX_UPLOAD_BYTES"},
		"ZeroUpload":   {"L2SERV_MAX_UPLOAD_BYTES", "0", "max upload bytes"},
		"ReadTimeout":  {"L2SERV_READ_TIMEOUT", "soon", "L2SERV_READ_TIMEOUT"},
		"WriteTimeout": {"L2SERV_WRITE_TIMEOUT", "-1s", "timeouts"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2serv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
