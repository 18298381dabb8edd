package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wsr88d/internal/config"
)

func TestNew_Stderr(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"

	log, closer, err := New(cfg)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNew_RotatedFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.Logs.Filename = filepath.Join(t.TempDir(), "l2serv.log")

	log, closer, err := New(cfg)
	require.NoError(t, err)

	log.WithField("level3", true).Info("decoded")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(cfg.Logs.Filename)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &entry))
	assert.Equal(t, "decoded", entry["msg"])
	assert.Equal(t, true, entry["level3"])
}

func TestNew_BadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"

	_, _, err := New(cfg)
	assert.Error(t, err)
}
