package metrics

import (
	"fmt"
	"strings"

	"github.com/DataDog/datadog-go/statsd"
)

type DataDogMetricsReporter struct {
	client *statsd.Client
}

// NewDataDogMetricsReporter returns a reporter sending to the statsd agent at
// addr. Every metric name is prefixed with namespace, if not empty.
func NewDataDogMetricsReporter(addr, namespace string) (*DataDogMetricsReporter, error) {
	var opts []statsd.Option
	if namespace != "" {
		opts = append(opts, statsd.WithNamespace(namespace))
	}
	c, err := statsd.New(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create statsd client: %v", err)
	}
	return &DataDogMetricsReporter{c}, nil
}

func (c *DataDogMetricsReporter) Count(name string, value int64, tags map[string]string, rate float64) error {
	return c.client.Count(name, value, convertTags(tags), rate)
}

func (c *DataDogMetricsReporter) TimeInMilliseconds(name string, value float64, tags map[string]string, rate float64) error {
	return c.client.TimeInMilliseconds(name, value, convertTags(tags), rate)
}

func (c *DataDogMetricsReporter) Close() error {
	return c.client.Close()
}

// converts from {"TagName":"TagValue"} to ["tagname:tagvalue"]
func convertTags(tags map[string]string) []string {
	result := make([]string, 0, len(tags))
	for k, v := range tags {
		k := strings.ToLower(strings.TrimSpace(k))
		v := strings.ToLower(strings.TrimSpace(v))
		result = append(result, fmt.Sprintf("%s:%s", k, v))
	}
	return result
}
