package boundary

import "fmt"

const (
	labelOrigin    = "origin"
	labelDirection = "direction"
	labelPath      = "path"
	labelReason    = "reason"
)

const (
	originRaw     = "raw"
	originAligned = "aligned"
	originCString = "cstring"

	pathDirect  = "direct"
	pathEscaped = "escaped"
)

// MetricHook captures boundary telemetry events.
type MetricHook interface {
	BufferCreated(capacity uintptr, attrs map[string]string)
	BufferReleased(attrs map[string]string)
	AppendFailed(err error, attrs map[string]string)
	BlockAllocated(size uintptr, attrs map[string]string)
	BlockReleased(size uintptr, attrs map[string]string)
	BlockResized(oldSize, newSize uintptr, attrs map[string]string)
	EscapeCompleted(inputLen, outputLen int, attrs map[string]string)
	EscapeFailed(err error, attrs map[string]string)
}

func metricAttrs(fields ...logField) map[string]string {
	attrs := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		attrs[field.key] = fmt.Sprint(field.value)
	}
	return attrs
}

func resizeDirection(oldSize, newSize uintptr) string {
	switch {
	case newSize > oldSize:
		return "grow"
	case newSize < oldSize:
		return "shrink"
	default:
		return "same"
	}
}

func (r *Runtime) metricBufferCreated(capacity uintptr) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.BufferCreated(capacity, metricAttrs())
}

func (r *Runtime) metricBufferReleased() {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.BufferReleased(metricAttrs())
}

func (r *Runtime) metricAppendFailed(err error) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.AppendFailed(err, metricAttrs(logKV(labelReason, failureReason(err))))
}

func (r *Runtime) metricBlockAllocated(origin string, size uintptr) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.BlockAllocated(size, metricAttrs(logKV(labelOrigin, origin)))
}

func (r *Runtime) metricBlockReleased(origin string, size uintptr) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.BlockReleased(size, metricAttrs(logKV(labelOrigin, origin)))
}

func (r *Runtime) metricBlockResized(origin string, oldSize, newSize uintptr) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.BlockResized(oldSize, newSize, metricAttrs(
		logKV(labelOrigin, origin),
		logKV(labelDirection, resizeDirection(oldSize, newSize)),
	))
}

func (r *Runtime) metricEscapeCompleted(path string, inputLen, outputLen int) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.EscapeCompleted(inputLen, outputLen, metricAttrs(logKV(labelPath, path)))
}

func (r *Runtime) metricEscapeFailed(err error) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.EscapeFailed(err, metricAttrs(logKV(labelReason, failureReason(err))))
}
