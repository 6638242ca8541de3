package monthlog

import "time"

// A MetricsClient allows to instrument components code and communicate the
// metrics to the configured metrics backend.
//
// New metrics backends must implement this interface and register their
// description as a MetricsDesc in Components.Metrics. A client implementing
// io.Closer is closed at the end of the run.
type MetricsClient interface {
	// Gauge sets the value of a metric of type gauge.
	Gauge(name string, value float64)

	// RawCount sets the current value of a counter, which can only
	// increase.
	RawCount(name string, value int64)

	// DeltaCountWithTags increments a counter by delta and associates the
	// increment with a set of tags.
	DeltaCountWithTags(name string, delta int64, tags []string)

	// Duration adds a duration to a metric of type histogram.
	Duration(name string, value time.Duration)
}

var _ MetricsClient = NopMetrics{}

// NopMetrics implements a MetricsClient that does nothing.
type NopMetrics struct{}

func (NopMetrics) Gauge(name string, value float64)                           {}
func (NopMetrics) RawCount(name string, value int64)                          {}
func (NopMetrics) DeltaCountWithTags(name string, delta int64, tags []string) {}
func (NopMetrics) Duration(name string, value time.Duration)                  {}
