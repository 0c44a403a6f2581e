package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a Go runtime snapshot at the end of a run
type RuntimeMetrics struct {
	goRoutines    metric.Int64Gauge
	memoryUsage   metric.Int64Gauge
	memorySystem  metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge
}

// RuntimeStats holds one runtime snapshot
type RuntimeStats struct {
	GoRoutines    int64
	MemoryUsage   int64
	MemorySystem  int64
	GCCount       uint32
	ProcessUptime time.Duration
}

// NewRuntimeMetrics creates the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"analysis_runtime_goroutines",
		metric.WithDescription("Number of goroutines when the run finished"),
	)
	if err != nil {
		return nil, err
	}

	memoryUsage, err := meter.Int64Gauge(
		"analysis_runtime_heap_alloc",
		metric.WithDescription("Heap bytes allocated when the run finished"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"analysis_runtime_memory_system",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"analysis_runtime_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	processUptime, err := meter.Float64Gauge(
		"analysis_runtime_uptime",
		metric.WithDescription("Wall time since the run started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines:    goRoutines,
		memoryUsage:   memoryUsage,
		memorySystem:  memorySystem,
		gcCount:       gcCount,
		processUptime: processUptime,
	}, nil
}

// Collect reads the runtime statistics and records them
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		MemoryUsage:   int64(memStats.Alloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		ProcessUptime: time.Since(startTime),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.memoryUsage.Record(ctx, stats.MemoryUsage)
	rm.memorySystem.Record(ctx, stats.MemorySystem)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.processUptime.Record(ctx, stats.ProcessUptime.Seconds())

	return stats
}

// LogValue renders the snapshot as a slog group
func (s *RuntimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("goroutines", s.GoRoutines),
		slog.Int64("heap_alloc_mb", s.MemoryUsage/1024/1024),
		slog.Int64("memory_system_mb", s.MemorySystem/1024/1024),
		slog.Any("gc_cycles", s.GCCount),
		slog.Duration("uptime", s.ProcessUptime),
	)
}
