package main

import (
	"fmt"
	"strconv"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rocketbitz/safemem-go/boundary"
)

const (
	envLogLevel        = "SAFEMEM_LOG_LEVEL"
	envMetricsAddr     = "SAFEMEM_METRICS_ADDR"
	envScratchCapacity = "SAFEMEM_SCRATCH_CAPACITY"
	envScratchPool     = "SAFEMEM_SCRATCH_POOL"
)

// config is read from the environment once, when the library is loaded.
type config struct {
	LogLevel        string
	MetricsAddr     string
	ScratchCapacity datasize.ByteSize
	ScratchPool     int
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		LogLevel:        getenv(envLogLevel),
		MetricsAddr:     getenv(envMetricsAddr),
		ScratchCapacity: datasize.ByteSize(boundary.DefaultScratchCapacity),
		ScratchPool:     boundary.DefaultScratchPoolSize,
	}
	if v := getenv(envScratchCapacity); v != "" {
		if err := cfg.ScratchCapacity.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("%s: %w", envScratchCapacity, err)
		}
	}
	if v := getenv(envScratchPool); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("%s: invalid pool size %q", envScratchPool, v)
		}
		cfg.ScratchPool = n
	}
	return cfg, nil
}

// newLogger returns nil when no level is configured, leaving logging disabled.
func newLogger(level string) (*zap.SugaredLogger, error) {
	if level == "" {
		return nil, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envLogLevel, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar().Named("safemem"), nil
}
