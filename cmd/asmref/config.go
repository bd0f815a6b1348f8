package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hupe1980/asmref"
)

// config is read from ASMREF_* environment variables.
type config struct {
	LogLevel  string `env:"ASMREF_LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"ASMREF_LOG_FORMAT" envDefault:"text"`

	S3Region   string `env:"ASMREF_S3_REGION"`
	S3Endpoint string `env:"ASMREF_S3_ENDPOINT"`

	MinioEndpoint  string `env:"ASMREF_MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinioAccessKey string `env:"ASMREF_MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"ASMREF_MINIO_SECRET_KEY"`
	MinioSecure    bool   `env:"ASMREF_MINIO_SECURE"     envDefault:"true"`
	MinioRegion    string `env:"ASMREF_MINIO_REGION"`

	CacheBytes   int64 `env:"ASMREF_CACHE_BYTES"   envDefault:"268435456"`
	MemoryBytes  int64 `env:"ASMREF_MEMORY_BYTES"`
	MaxParallel  int   `env:"ASMREF_MAX_PARALLEL"  envDefault:"4"`
	IOLimitBytes int64 `env:"ASMREF_IO_LIMIT_BYTES"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return cfg, nil
}

func (c config) logger() (*asmref.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("ASMREF_LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "":
		return asmref.NewTextLogger(level), nil
	case "json":
		return asmref.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("ASMREF_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
}
