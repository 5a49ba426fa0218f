package boundary

import "github.com/prometheus/client_golang/prometheus"

// PrometheusMetricsOptions configures NewPrometheusMetrics.
type PrometheusMetricsOptions struct {
	Registerer  prometheus.Registerer
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
}

var _ MetricHook = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements MetricHook using Prometheus counters.
type PrometheusMetrics struct {
	buffersCreated   *prometheus.CounterVec
	buffersReleased  *prometheus.CounterVec
	bufferBytes      *prometheus.CounterVec
	appendFailed     *prometheus.CounterVec
	blocksAllocated  *prometheus.CounterVec
	blocksReleased   *prometheus.CounterVec
	blockBytesAlloc  *prometheus.CounterVec
	blockBytesFreed  *prometheus.CounterVec
	blocksResized    *prometheus.CounterVec
	escapesCompleted *prometheus.CounterVec
	escapesFailed    *prometheus.CounterVec
	escapedBytes     *prometheus.CounterVec
}

var (
	noLabelKeys        = []string{}
	reasonLabelKeys    = []string{labelReason}
	originLabelKeys    = []string{labelOrigin}
	directionLabelKeys = []string{labelDirection}
	pathLabelKeys      = []string{labelPath}
)

// NewPrometheusMetrics constructs a MetricHook backed by Prometheus counters.
func NewPrometheusMetrics(opts PrometheusMetricsOptions) (*PrometheusMetrics, error) {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string, keys []string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: opts.ConstLabels,
		}, keys)
	}

	p := &PrometheusMetrics{
		buffersCreated:   counter("safemem_buffers_created_total", "Number of growable buffers created through the boundary", noLabelKeys),
		buffersReleased:  counter("safemem_buffers_released_total", "Number of growable buffers released through the boundary", noLabelKeys),
		bufferBytes:      counter("safemem_buffer_reserved_bytes_total", "Bytes reserved by growable buffers at creation", noLabelKeys),
		appendFailed:     counter("safemem_buffer_append_failed_total", "Number of rejected buffer appends", reasonLabelKeys),
		blocksAllocated:  counter("safemem_blocks_allocated_total", "Number of raw blocks allocated", originLabelKeys),
		blocksReleased:   counter("safemem_blocks_released_total", "Number of raw blocks released", originLabelKeys),
		blockBytesAlloc:  counter("safemem_block_allocated_bytes_total", "Bytes handed out as raw blocks", originLabelKeys),
		blockBytesFreed:  counter("safemem_block_released_bytes_total", "Bytes returned as raw blocks", originLabelKeys),
		blocksResized:    counter("safemem_blocks_resized_total", "Number of raw block resizes", directionLabelKeys),
		escapesCompleted: counter("safemem_json_escapes_total", "Number of successful JSON escapes", pathLabelKeys),
		escapesFailed:    counter("safemem_json_escape_failed_total", "Number of failed JSON escapes", reasonLabelKeys),
		escapedBytes:     counter("safemem_json_escaped_bytes_total", "Bytes written by successful JSON escapes", pathLabelKeys),
	}

	for _, vec := range []**prometheus.CounterVec{
		&p.buffersCreated, &p.buffersReleased, &p.bufferBytes, &p.appendFailed,
		&p.blocksAllocated, &p.blocksReleased, &p.blockBytesAlloc, &p.blockBytesFreed,
		&p.blocksResized, &p.escapesCompleted, &p.escapesFailed, &p.escapedBytes,
	} {
		registered, err := registerCounterVec(reg, *vec)
		if err != nil {
			return nil, err
		}
		*vec = registered
	}

	return p, nil
}

func (p *PrometheusMetrics) BufferCreated(capacity uintptr, attrs map[string]string) {
	p.buffersCreated.With(labels(attrs, noLabelKeys...)).Inc()
	p.bufferBytes.With(labels(attrs, noLabelKeys...)).Add(float64(capacity))
}

func (p *PrometheusMetrics) BufferReleased(attrs map[string]string) {
	p.buffersReleased.With(labels(attrs, noLabelKeys...)).Inc()
}

func (p *PrometheusMetrics) AppendFailed(_ error, attrs map[string]string) {
	p.appendFailed.With(labels(attrs, reasonLabelKeys...)).Inc()
}

func (p *PrometheusMetrics) BlockAllocated(size uintptr, attrs map[string]string) {
	labs := labels(attrs, originLabelKeys...)
	p.blocksAllocated.With(labs).Inc()
	p.blockBytesAlloc.With(labs).Add(float64(size))
}

func (p *PrometheusMetrics) BlockReleased(size uintptr, attrs map[string]string) {
	labs := labels(attrs, originLabelKeys...)
	p.blocksReleased.With(labs).Inc()
	p.blockBytesFreed.With(labs).Add(float64(size))
}

func (p *PrometheusMetrics) BlockResized(oldSize, newSize uintptr, attrs map[string]string) {
	p.blocksResized.With(labels(attrs, directionLabelKeys...)).Inc()
	switch labs := labels(attrs, originLabelKeys...); {
	case newSize > oldSize:
		p.blockBytesAlloc.With(labs).Add(float64(newSize - oldSize))
	case newSize < oldSize:
		p.blockBytesFreed.With(labs).Add(float64(oldSize - newSize))
	}
}

func (p *PrometheusMetrics) EscapeCompleted(_, outputLen int, attrs map[string]string) {
	labs := labels(attrs, pathLabelKeys...)
	p.escapesCompleted.With(labs).Inc()
	p.escapedBytes.With(labs).Add(float64(outputLen))
}

func (p *PrometheusMetrics) EscapeFailed(_ error, attrs map[string]string) {
	p.escapesFailed.With(labels(attrs, reasonLabelKeys...)).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

func labels(attrs map[string]string, keys ...string) prometheus.Labels {
	labs := make(prometheus.Labels, len(keys))
	for _, key := range keys {
		labs[key] = attrs[key]
	}
	return labs
}
