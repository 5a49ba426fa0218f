package boundary

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rocketbitz/safemem-go/mem"
)

func TestPrometheusMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewPrometheusMetrics(PrometheusMetricsOptions{Registerer: reg})
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}
	r := newTestRuntime(t, Config{Metrics: metrics})

	h := r.BufferNew(0)
	r.BufferAppend(h, nil, 4)
	r.BufferFree(h)

	ptr := r.RawAlloc(100)
	ptr = r.RawRealloc(ptr, 100, 200)
	r.RawFree(ptr, 200)

	if n, _ := escapeString(t, r, "line\n", 64); n < 0 {
		t.Fatalf("EscapeJSON failed: %d", n)
	}
	if n, _ := escapeString(t, r, "line\n", 2); n >= 0 {
		t.Fatalf("expected EscapeJSON failure")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := map[string]float64{
		"safemem_buffers_created_total":       1,
		"safemem_buffers_released_total":      1,
		"safemem_buffer_reserved_bytes_total": float64(mem.MinCapacity),
		"safemem_buffer_append_failed_total":  1,
		"safemem_blocks_allocated_total":      1,
		"safemem_blocks_released_total":       1,
		"safemem_block_allocated_bytes_total": 200,
		"safemem_block_released_bytes_total":  200,
		"safemem_blocks_resized_total":        1,
		"safemem_json_escapes_total":          1,
		"safemem_json_escape_failed_total":    1,
		"safemem_json_escaped_bytes_total":    6,
	}

	for name, want := range cases {
		if got := findCounterValue(mfs, name); got != want {
			t.Fatalf("unexpected counter %s: got %v want %v", name, got, want)
		}
	}

	if got := findLabelValue(mfs, "safemem_buffer_append_failed_total", labelReason); got != "null_argument" {
		t.Fatalf("unexpected append failure reason %q", got)
	}
	if got := findLabelValue(mfs, "safemem_blocks_resized_total", labelDirection); got != "grow" {
		t.Fatalf("unexpected resize direction %q", got)
	}
}

func TestPrometheusMetricsResizeBytesMatchStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewPrometheusMetrics(PrometheusMetricsOptions{Registerer: reg})
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}
	r := newTestRuntime(t, Config{Metrics: metrics})

	ptr := r.RawAlloc(64)
	ptr = r.RawRealloc(ptr, 64, 512)
	ptr = r.RawRealloc(ptr, 512, 128)
	r.RawFree(ptr, 128)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	stats := r.Stats()
	if got := findCounterValue(mfs, "safemem_block_allocated_bytes_total"); got != float64(stats.BytesAllocated) || got != 512 {
		t.Fatalf("allocated bytes %v, stats %d", got, stats.BytesAllocated)
	}
	if got := findCounterValue(mfs, "safemem_block_released_bytes_total"); got != float64(stats.BytesFreed) || got != 512 {
		t.Fatalf("released bytes %v, stats %d", got, stats.BytesFreed)
	}
	if got := findLabelValue(mfs, "safemem_block_released_bytes_total", labelOrigin); got != originRaw {
		t.Fatalf("unexpected origin %q", got)
	}
}

func TestPrometheusMetricsReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetrics(PrometheusMetricsOptions{Registerer: reg}); err != nil {
		t.Fatalf("first NewPrometheusMetrics: %v", err)
	}
	if _, err := NewPrometheusMetrics(PrometheusMetricsOptions{Registerer: reg}); err != nil {
		t.Fatalf("second NewPrometheusMetrics should reuse collectors: %v", err)
	}
}

func findCounterValue(mfs []*dto.MetricFamily, name string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.Metric {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

func findLabelValue(mfs []*dto.MetricFamily, name, label string) string {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label {
					return lp.GetValue()
				}
			}
		}
	}
	return ""
}
