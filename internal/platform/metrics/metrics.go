package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter names used by the domain services.
const (
	PayrollRunsCompleted = "payrollRunsCompleted"
	PayrollRunsFailed    = "payrollRunsFailed"
	PayslipsEmailed      = "payslipsEmailed"
	AIRequests           = "aiRequests"
	AIFailures           = "aiFailures"
	ImportRecordsSaved   = "importRecordsSaved"
	ImportRecordsSkipped = "importRecordsSkipped"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu       sync.Mutex
	counters map[string]*uint64
}

func New() *Collector {
	return &Collector{counters: map[string]*uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Add increments a named domain counter. A nil Collector ignores the call.
func (c *Collector) Add(name string, delta int) {
	if c == nil || delta <= 0 {
		return
	}
	atomic.AddUint64(c.counter(name), uint64(delta))
}

func (c *Collector) Inc(name string) {
	c.Add(name, 1)
}

func (c *Collector) counter(name string) *uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.counters[name]; ok {
		return v
	}
	v := new(uint64)
	c.counters[name] = v
	return v
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	out := map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, v := range c.counters {
		out[name] = atomic.LoadUint64(v)
	}
	return out
}
