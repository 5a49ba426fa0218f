package boundary

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultScratchCapacity is the initial capacity of pooled escape scratch buffers.
	DefaultScratchCapacity uintptr = 4 << 10
	// DefaultScratchPoolSize is the number of idle scratch buffers retained.
	DefaultScratchPoolSize = 4
)

// Config controls the behaviour of a Runtime.
type Config struct {
	ScratchCapacity  uintptr
	ScratchPoolSize  int
	Logger           Logger
	StructuredLogger StructuredLogger
	Tracer           Tracer
	Metrics          MetricHook
}

// Runtime implements the boundary operations exposed to C callers. A single
// Runtime is shared by every caller thread; buffers and blocks themselves are
// not synchronized.
type Runtime struct {
	cfg              Config
	scratch          *ScratchPool
	logger           Logger
	structuredLogger StructuredLogger
	tracer           Tracer
	metrics          MetricHook
	stats            runtimeStats
	closed           atomic.Bool
}

// Logger provides printf-style debug logging hooks for the runtime.
type Logger interface {
	Debugf(format string, args ...any)
}

// StructuredLogger emits key/value pairs for structured logging backends.
type StructuredLogger interface {
	Debugw(msg string, keyvals ...any)
}

// Stats contains counters for boundary operations.
type Stats struct {
	BuffersCreated  uint64
	BuffersFreed    uint64
	AppendFailures  uint64
	BlocksAllocated uint64
	BlocksFreed     uint64
	BlocksResized   uint64
	BytesAllocated  uint64
	BytesFreed      uint64
	Escapes         uint64
	EscapeFailures  uint64
}

type runtimeStats struct {
	buffersCreated  atomic.Uint64
	buffersFreed    atomic.Uint64
	appendFailures  atomic.Uint64
	blocksAllocated atomic.Uint64
	blocksFreed     atomic.Uint64
	blocksResized   atomic.Uint64
	bytesAllocated  atomic.Uint64
	bytesFreed      atomic.Uint64
	escapes         atomic.Uint64
	escapeFailures  atomic.Uint64
}

// New constructs a Runtime. Zero-valued scratch settings fall back to the
// package defaults.
func New(cfg Config) *Runtime {
	if cfg.ScratchCapacity == 0 {
		cfg.ScratchCapacity = DefaultScratchCapacity
	}
	if cfg.ScratchPoolSize <= 0 {
		cfg.ScratchPoolSize = DefaultScratchPoolSize
	}

	structured := cfg.StructuredLogger
	if structured == nil {
		if logger, ok := cfg.Logger.(StructuredLogger); ok {
			structured = logger
		}
	}

	r := &Runtime{
		cfg:              cfg,
		scratch:          NewScratchPool(cfg.ScratchCapacity, cfg.ScratchPoolSize),
		logger:           cfg.Logger,
		structuredLogger: structured,
		tracer:           cfg.Tracer,
		metrics:          cfg.Metrics,
	}
	r.logEvent("runtime_started",
		logKV("scratch_capacity", humanize.IBytes(uint64(cfg.ScratchCapacity))),
		logKV("scratch_pool_size", cfg.ScratchPoolSize))
	return r
}

// Close releases pooled scratch buffers. Buffers and blocks handed to callers
// remain their responsibility.
func (r *Runtime) Close() error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.scratch.Close()
	r.logEvent("runtime_closed", logKV("stats", fmt.Sprintf("%+v", r.Stats())))
	return nil
}

// Stats returns a snapshot of operation counters.
func (r *Runtime) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	return Stats{
		BuffersCreated:  r.stats.buffersCreated.Load(),
		BuffersFreed:    r.stats.buffersFreed.Load(),
		AppendFailures:  r.stats.appendFailures.Load(),
		BlocksAllocated: r.stats.blocksAllocated.Load(),
		BlocksFreed:     r.stats.blocksFreed.Load(),
		BlocksResized:   r.stats.blocksResized.Load(),
		BytesAllocated:  r.stats.bytesAllocated.Load(),
		BytesFreed:      r.stats.bytesFreed.Load(),
		Escapes:         r.stats.escapes.Load(),
		EscapeFailures:  r.stats.escapeFailures.Load(),
	}
}

type logField struct {
	key   string
	value any
}

func logKV(key string, value any) logField {
	return logField{key: key, value: value}
}

func sizeKV(key string, size uintptr) logField {
	return logKV(key, humanize.IBytes(uint64(size)))
}

func (r *Runtime) logEvent(event string, fields ...logField) {
	if r == nil {
		return
	}
	if r.structuredLogger != nil {
		kv := make([]any, 0, len(fields)*2+2)
		kv = append(kv, "event", event)
		for _, field := range fields {
			if field.key == "" {
				continue
			}
			kv = append(kv, field.key, field.value)
		}
		r.structuredLogger.Debugw("safemem boundary", kv...)
		return
	}
	if r.logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString(event)
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(field.key)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(field.value))
	}
	r.logger.Debugf("safemem boundary %s", b.String())
}
