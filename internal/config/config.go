package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the decode service settings. Values come from an optional
// YAML file and are then overridden by L2SERV_* environment variables.
type Config struct {
	Addr           string        `yaml:"addr"`
	LogLevel       string        `yaml:"logLevel"`
	LogFormat      string        `yaml:"logFormat"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	Logs           LogFile       `yaml:"logs"`
}

// LogFile configures log rotation. An empty Filename logs to stderr only.
type LogFile struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Addr:           "0.0.0.0:8081",
		LogLevel:       "info",
		LogFormat:      "text",
		MaxUploadBytes: 64 << 20,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		Logs: LogFile{
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
	}
}

// Load reads path, when it is not empty, on top of the defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := os.Getenv("L2SERV_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("L2SERV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("L2SERV_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("L2SERV_LOG_FILE"); v != "" {
		cfg.Logs.Filename = v
	}
	if v := os.Getenv("L2SERV_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.New("invalid L2SERV_MAX_UPLOAD_BYTES")
		}
		cfg.MaxUploadBytes = n
	}

	var err error
	if cfg.ReadTimeout, err = envDuration("L2SERV_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = envDuration("L2SERV_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// Validate checks every setting.
func (cfg *Config) Validate() error {
	if cfg.Addr == "" {
		return errors.New("addr is required")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return errors.New("read and write timeouts must be positive")
	}
	if cfg.Logs.MaxSizeMB <= 0 || cfg.Logs.MaxAgeDays < 0 || cfg.Logs.MaxBackups < 0 {
		return errors.New("invalid log rotation settings")
	}
	return nil
}
