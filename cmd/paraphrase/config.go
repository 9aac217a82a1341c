package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration file (~/.config/paraphrase/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// Generation runtime
	RuntimeURL      string         `yaml:"runtime_url"`
	Model           string         `yaml:"model"`
	Device          string         `yaml:"device"`
	Prefix          *string        `yaml:"prefix"`
	MaxLength       *int           `yaml:"max_length"`
	LoadAttempts    *int           `yaml:"load_attempts"`
	GenerateTimeout *time.Duration `yaml:"generate_timeout"`

	// Server
	ServerAddress string         `yaml:"server_address"`
	ReadTimeout   *time.Duration `yaml:"read_timeout"`
	Concurrency   *int           `yaml:"concurrency"`
	MaxBeams      *int           `yaml:"max_beams"`
	CORSOrigins   []string       `yaml:"cors_origins"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// flagState is the part of *cli.Command the config merge needs.
type flagState interface {
	IsSet(name string) bool
}

func configPath() string {
	if path := os.Getenv("PARAPHRASE_CONFIG"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "paraphrase", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLoggingConfig applies config file defaults to the logging flags.
func applyLoggingConfig(c flagState, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyHostConfig applies config file defaults to the generation runtime
// flags shared by serve and generate.
func applyHostConfig(c flagState, cfg Config) {
	if cfg.RuntimeURL != "" && !c.IsSet("runtime-url") {
		runtimeURL = cfg.RuntimeURL
	}
	if cfg.Model != "" && !c.IsSet("model") {
		modelName = cfg.Model
	}
	if cfg.Device != "" && !c.IsSet("device") {
		deviceName = cfg.Device
	}
	if cfg.Prefix != nil && !c.IsSet("prefix") {
		prefix = *cfg.Prefix
	}
	if cfg.MaxLength != nil && !c.IsSet("max-length") {
		maxLength = *cfg.MaxLength
	}
	if cfg.LoadAttempts != nil && !c.IsSet("load-attempts") {
		loadAttempts = *cfg.LoadAttempts
	}
	if cfg.GenerateTimeout != nil && !c.IsSet("generate-timeout") {
		generateTimeout = *cfg.GenerateTimeout
	}
}

type serveSettings struct {
	addr        string
	readTimeout time.Duration
	concurrency int
	maxBeams    int
	corsOrigins []string
}

// applyServeConfig applies config file defaults to serve command settings.
func applyServeConfig(c flagState, cfg Config, s *serveSettings) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		s.addr = cfg.ServerAddress
	}
	if cfg.ReadTimeout != nil && !c.IsSet("read-timeout") {
		s.readTimeout = *cfg.ReadTimeout
	}
	if cfg.Concurrency != nil && !c.IsSet("concurrency") {
		s.concurrency = *cfg.Concurrency
	}
	if cfg.MaxBeams != nil && !c.IsSet("max-beams") {
		s.maxBeams = *cfg.MaxBeams
	}
	if len(cfg.CORSOrigins) > 0 && !c.IsSet("cors-origin") {
		s.corsOrigins = cfg.CORSOrigins
	}
}
