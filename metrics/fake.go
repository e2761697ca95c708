package metrics

import "sync"

type Metric struct {
	Name string
	Tags map[string]string
	Rate float64
}

type IntMetric struct {
	Metric
	Value int64
}

type FloatMetric struct {
	Metric
	Value float64
}

// FakeMetricsReporter records every metric it receives. It's meant for tests.
type FakeMetricsReporter struct {
	mu      sync.Mutex
	counts  []*IntMetric
	timings []*FloatMetric
}

func NewFakeMetricsReporter() *FakeMetricsReporter {
	return &FakeMetricsReporter{}
}

func (r *FakeMetricsReporter) Count(name string, value int64, tags map[string]string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, &IntMetric{Metric{name, tags, rate}, value})
	return nil
}

func (r *FakeMetricsReporter) TimeInMilliseconds(name string, value float64, tags map[string]string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings = append(r.timings, &FloatMetric{Metric{name, tags, rate}, value})
	return nil
}

func (r *FakeMetricsReporter) Close() error {
	return nil
}

// Counts returns the recorded counts named name, oldest first.
func (r *FakeMetricsReporter) Counts(name string) []*IntMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*IntMetric
	for _, m := range r.counts {
		if m.Name == name {
			result = append(result, m)
		}
	}
	return result
}

// Timings returns the recorded timings named name, oldest first.
func (r *FakeMetricsReporter) Timings(name string) []*FloatMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*FloatMetric
	for _, m := range r.timings {
		if m.Name == name {
			result = append(result, m)
		}
	}
	return result
}

// LastCount returns the most recent count, or nil.
func (r *FakeMetricsReporter) LastCount() *IntMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.counts) == 0 {
		return nil
	}
	return r.counts[len(r.counts)-1]
}
