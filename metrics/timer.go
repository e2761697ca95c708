package metrics

import "time"

// Timer reports the time between Start and Done.
type Timer struct {
	start time.Time
	name  string
	tags  map[string]string
	rate  float64
}

func (t *Timer) Start() {
	t.start = time.Now()
}

func (t *Timer) Done() {
	milliseconds := float64(time.Since(t.start).Nanoseconds()) / float64(time.Millisecond)
	TimeInMilliseconds(t.name, milliseconds, t.tags, t.rate)
}

func (t *Timer) SetTags(tags map[string]string) {
	if t.tags == nil {
		t.tags = make(map[string]string, 2)
	}
	for k, v := range tags {
		t.tags[k] = v
	}
}
