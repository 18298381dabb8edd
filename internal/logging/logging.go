package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jddeal/go-wsr88d/internal/config"
)

// New builds the service logger. When a log file is configured output goes
// to stderr and to the rotated file.
func New(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Logs.Filename == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Logs.Filename,
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return log, rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
