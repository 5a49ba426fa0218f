package main

import (
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rocketbitz/safemem-go/boundary"
)

var runtimeOnce = sync.OnceValue(func() *boundary.Runtime {
	return newRuntime(os.Getenv)
})

func rt() *boundary.Runtime {
	return runtimeOnce()
}

// newRuntime never fails: configuration problems are reported on stderr and
// the library keeps working with defaults.
func newRuntime(getenv func(string) string) *boundary.Runtime {
	cfg, cfgErr := loadConfig(getenv)

	logger, logErr := newLogger(cfg.LogLevel)
	for _, err := range []error{cfgErr, logErr} {
		if err == nil {
			continue
		}
		if logger != nil {
			logger.Warnw("safemem configuration", "error", err)
		} else {
			os.Stderr.WriteString("safemem: configuration: " + err.Error() + "\n")
		}
	}

	rcfg := boundary.Config{
		ScratchCapacity: uintptr(cfg.ScratchCapacity.Bytes()),
		ScratchPoolSize: cfg.ScratchPool,
	}
	if logger != nil {
		rcfg.Logger = logger
	}

	if cfg.MetricsAddr != "" {
		metrics, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil && logger != nil {
			logger.Warnw("safemem metrics disabled", "addr", cfg.MetricsAddr, "error", err)
		}
		if metrics != nil {
			rcfg.Metrics = metrics
		}
	}

	return boundary.New(rcfg)
}

func serveMetrics(addr string, logger *zap.SugaredLogger) (*boundary.PrometheusMetrics, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := boundary.NewPrometheusMetrics(boundary.PrometheusMetricsOptions{Registerer: reg})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && logger != nil {
			logger.Warnw("safemem metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	return metrics, nil
}
