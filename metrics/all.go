// Package metrics lists the metrics clients available to monthlog.
package metrics

import (
	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/metrics/datadog"
)

// All is the list of all metrics client supported by monthlog.
var All = []monthlog.MetricsDesc{
	datadog.Desc,
}
