// Package metrics reports counters and timings for vault operations.
//
// Usage:
//
//	metrics.SetAppName("myFancyApp")
//	metrics.Reporter, _ = metrics.NewDataDogMetricsReporter("statsd:8125")
//	defer metrics.Close()
//	...
//	metrics.Count("vault.encrypt", 1, map[string]string{"result": "ok"}, 1.0)
package metrics

import "sync"

var Reporter MetricsReporter

var (
	tagsMu      sync.RWMutex
	defaultTags map[string]string
)

func init() {
	resetReporter()
	resetDefaultTags()
}

type MetricsReporter interface {
	Count(name string, value int64, tags map[string]string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags map[string]string, rate float64) error
	Close() error
}

// SetAppName adds a "app:<name>" tag to each metric
func SetAppName(appName string) {
	tagsMu.Lock()
	defer tagsMu.Unlock()
	defaultTags["app"] = appName
}

func resetDefaultTags() {
	tagsMu.Lock()
	defer tagsMu.Unlock()
	defaultTags = make(map[string]string, 1)
}

func resetReporter() {
	Reporter = &NoopMetricsReporter{}
}

func Count(name string, value int64, tags map[string]string, rate float64) error {
	return Reporter.Count(name, value, withDefaultTags(tags), rate)
}

func TimeInMilliseconds(name string, value float64, tags map[string]string, rate float64) error {
	return Reporter.TimeInMilliseconds(name, value, withDefaultTags(tags), rate)
}

// Close closes the backend connection cleanly
func Close() error {
	return Reporter.Close()
}

// Time is a shorthand for TimeInMilliseconds for easy code block instrumentation
//
// Usage:
//
//	t := metrics.Time("vault.decrypt.time", nil, 1.0)
//	defer t.Done()
//	...
//	t.SetTags(map[string]string{"result": "error"}) // totally optional
func Time(name string, tags map[string]string, rate float64) *Timer {
	t := &Timer{name: name, rate: rate}
	t.SetTags(tags)
	t.Start()
	return t
}

func withDefaultTags(tags map[string]string) map[string]string {
	tagsMu.RLock()
	defer tagsMu.RUnlock()
	result := make(map[string]string, len(tags)+len(defaultTags))
	for k, v := range defaultTags {
		result[k] = v
	}
	for k, v := range tags {
		result[k] = v
	}
	return result
}
