package boundary

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsOptions configures NewOTelMetrics.
type OTelMetricsOptions struct {
	MeterProvider          metric.MeterProvider
	Meter                  metric.Meter
	InstrumentationName    string
	InstrumentationVersion string
}

var _ MetricHook = (*OTelMetrics)(nil)

// OTelMetrics implements MetricHook using OpenTelemetry counters.
type OTelMetrics struct {
	meter            metric.Meter
	buffersCreated   metric.Int64Counter
	buffersReleased  metric.Int64Counter
	appendFailed     metric.Int64Counter
	blocksAllocated  metric.Int64Counter
	blocksReleased   metric.Int64Counter
	blockBytes       metric.Int64UpDownCounter
	blocksResized    metric.Int64Counter
	escapesCompleted metric.Int64Counter
	escapesFailed    metric.Int64Counter
}

// NewOTelMetrics constructs a MetricHook that emits OpenTelemetry measurements.
func NewOTelMetrics(opts OTelMetricsOptions) (*OTelMetrics, error) {
	meter := opts.Meter
	if meter == nil {
		provider := opts.MeterProvider
		if provider == nil {
			provider = otel.GetMeterProvider()
		}
		name := opts.InstrumentationName
		if name == "" {
			name = "github.com/rocketbitz/safemem-go/boundary"
		}
		meter = provider.Meter(name, metric.WithInstrumentationVersion(opts.InstrumentationVersion))
	}

	buffersCreated, err := meter.Int64Counter("safemem.buffer.created")
	if err != nil {
		return nil, err
	}
	buffersReleased, err := meter.Int64Counter("safemem.buffer.released")
	if err != nil {
		return nil, err
	}
	appendFailed, err := meter.Int64Counter("safemem.buffer.append_failed")
	if err != nil {
		return nil, err
	}
	blocksAllocated, err := meter.Int64Counter("safemem.block.allocated")
	if err != nil {
		return nil, err
	}
	blocksReleased, err := meter.Int64Counter("safemem.block.released")
	if err != nil {
		return nil, err
	}
	blockBytes, err := meter.Int64UpDownCounter("safemem.block.live_bytes", metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	blocksResized, err := meter.Int64Counter("safemem.block.resized")
	if err != nil {
		return nil, err
	}
	escapesCompleted, err := meter.Int64Counter("safemem.json.escape.completed")
	if err != nil {
		return nil, err
	}
	escapesFailed, err := meter.Int64Counter("safemem.json.escape.failed")
	if err != nil {
		return nil, err
	}

	return &OTelMetrics{
		meter:            meter,
		buffersCreated:   buffersCreated,
		buffersReleased:  buffersReleased,
		appendFailed:     appendFailed,
		blocksAllocated:  blocksAllocated,
		blocksReleased:   blocksReleased,
		blockBytes:       blockBytes,
		blocksResized:    blocksResized,
		escapesCompleted: escapesCompleted,
		escapesFailed:    escapesFailed,
	}, nil
}

// BufferCreated records a buffer handed out through the boundary.
func (o *OTelMetrics) BufferCreated(_ uintptr, attrs map[string]string) {
	o.buffersCreated.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
}

// BufferReleased records a buffer released through the boundary.
func (o *OTelMetrics) BufferReleased(attrs map[string]string) {
	o.buffersReleased.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
}

// AppendFailed counts rejected appends.
func (o *OTelMetrics) AppendFailed(_ error, attrs map[string]string) {
	o.appendFailed.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
}

// BlockAllocated records a raw block allocation and its size.
func (o *OTelMetrics) BlockAllocated(size uintptr, attrs map[string]string) {
	opt := metric.WithAttributes(otelAttrs(attrs)...)
	o.blocksAllocated.Add(context.Background(), 1, opt)
	o.blockBytes.Add(context.Background(), int64(size), opt)
}

// BlockReleased records a raw block release and its size.
func (o *OTelMetrics) BlockReleased(size uintptr, attrs map[string]string) {
	opt := metric.WithAttributes(otelAttrs(attrs)...)
	o.blocksReleased.Add(context.Background(), 1, opt)
	o.blockBytes.Add(context.Background(), -int64(size), opt)
}

// BlockResized records a raw block resize. Live bytes track the size delta
// under the block's origin so they net out against allocations and releases.
func (o *OTelMetrics) BlockResized(oldSize, newSize uintptr, attrs map[string]string) {
	o.blocksResized.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
	o.blockBytes.Add(context.Background(), int64(newSize)-int64(oldSize),
		metric.WithAttributes(otelAttrs(attrs, labelOrigin)...))
}

// EscapeCompleted records a successful escape.
func (o *OTelMetrics) EscapeCompleted(_, _ int, attrs map[string]string) {
	o.escapesCompleted.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
}

// EscapeFailed records a failed escape.
func (o *OTelMetrics) EscapeFailed(_ error, attrs map[string]string) {
	o.escapesFailed.Add(context.Background(), 1, metric.WithAttributes(otelAttrs(attrs)...))
}

var otelAttrKeys = []string{labelOrigin, labelDirection, labelPath, labelReason}

// otelAttrs converts attrs in a fixed key order, limited to keys when given.
func otelAttrs(attrs map[string]string, keys ...string) []attribute.KeyValue {
	if len(keys) == 0 {
		keys = otelAttrKeys
	}
	kvs := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		if v := attrs[key]; v != "" {
			kvs = append(kvs, attribute.String(key, v))
		}
	}
	return kvs
}
