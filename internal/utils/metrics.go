package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.operationTimes[operationName]; !exists {
		mc.operationTimes[operationName] = make([]int64, 0)
	}
	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

// Snapshot summarises collected metrics for the health endpoint.
type Snapshot struct {
	Requests   uint64                   `json:"requests"`
	Errors     uint64                   `json:"errors"`
	UptimeSecs float64                  `json:"uptimeSeconds"`
	Operations map[string]OperationStat `json:"operations"`
}

type OperationStat struct {
	Count    int   `json:"count"`
	AvgNanos int64 `json:"avgNanos"`
}

func (mc *MetricsCollector) GetSnapshot() Snapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	ops := make(map[string]OperationStat, len(mc.operationTimes))
	for name, times := range mc.operationTimes {
		var total int64
		for _, t := range times {
			total += t
		}
		stat := OperationStat{Count: len(times)}
		if stat.Count > 0 {
			stat.AvgNanos = total / int64(stat.Count)
		}
		ops[name] = stat
	}

	return Snapshot{
		Requests:   mc.requestCount,
		Errors:     mc.errorCount,
		UptimeSecs: time.Since(mc.systemStartTime).Seconds(),
		Operations: ops,
	}
}
