// Package datadog provides types and functions to export metrics
// and logs to Datadog via a statds client.
package datadog

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"

	"github.com/monthlog/monthlog"
)

// Desc describes the Datadog metrics client inteface.
var Desc = monthlog.MetricsDesc{
	Name:   "Datadog",
	Config: &Config{},
	New:    newClient,
	Help:   "Datadog sends the run metrics, and optionally the log entries, to a dogstatsd agent over UDP.",
}

// Config is the configuration of the Datadog metrics client.
type Config struct {
	Prefix   string   `help:"Prefix of all metric names" default:"monthlog."`
	Host     string   `help:"Address of the dogstatsd agent (UDP)" default:"127.0.0.1:8125"`
	Tags     []string `help:"Tags attached to all metrics"`
	SendLogs bool     `help:"Forward log entries (warning level and above) as statsd events"`
}

// Client allows to instrument code and export the metrics to a dogstatds client.
type Client struct {
	dog      *statsd.Client
	basetags []string

	mu       sync.Mutex
	counters map[string]int64

	hooks log.LevelHooks // logrus hooks to restore on Close, if SendLogs
}

// newClient creates a Client that pushes to the datadog server using
// the dogstatsd format. All exported metrics will have a name prepended with
// the given prefix and will be tagged with the provided set of tags.
func newClient(icfg interface{}) (monthlog.MetricsClient, error) {
	cfg := icfg.(*Config)

	if cfg.Prefix == "" {
		cfg.Prefix = "monthlog."
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1:8125"
	}

	dog, err := statsd.New(cfg.Host, statsd.WithNamespace(cfg.Prefix))
	if err != nil {
		return nil, fmt.Errorf("can't create datadog metrics client: %s", err)
	}

	dd := &Client{
		dog:      dog,
		basetags: cfg.Tags,
		counters: make(map[string]int64),
	}

	if cfg.SendLogs {
		dd.hooks = make(log.LevelHooks)
		for lvl, hooks := range log.StandardLogger().Hooks {
			dd.hooks[lvl] = append([]log.Hook(nil), hooks...)
		}
		log.AddHook(NewHook(log.WarnLevel, dog, cfg.Host, cfg.Tags))
	}

	return dd, nil
}

// Gauge sets the value of a metric of type gauge. A Gauge represents a
// single numerical data point that can arbitrarily go up and down.
func (c *Client) Gauge(name string, value float64) {
	c.dog.Gauge(name, value, c.basetags, 1)
}

// RawCount sets the value of a metric of type counter. A counter is a
// cumulative metrics that can only increase. RawCount sets the current
// value of the counter.
func (c *Client) RawCount(name string, value int64) {
	c.mu.Lock()
	delta := value - c.counters[name]

	if delta < 0 {
		delta = 0
	}
	c.counters[name] = value
	c.mu.Unlock()

	c.dog.Count(name, delta, c.basetags, 1)
}

// DeltaCountWithTags increments the value of a metric or type counter and
// associates that value with a set of tags.
func (c *Client) DeltaCountWithTags(name string, delta int64, tags []string) {
	all := make([]string, 0, len(tags)+len(c.basetags))
	all = append(all, c.basetags...)
	all = append(all, tags...)
	c.dog.Count(name, delta, all, 1)
}

// Duration adds a duration to a metric of type histogram.
//
// In Datadog, this is shown as a 'Timer', an implementation of an 'Histogram'
// DogStatsd  metric type, on which percentiles, mean and other info are calculated.
// see https://docs.datadoghq.com/developers/dogstatsd/data_types/#timers
func (c *Client) Duration(name string, value time.Duration) {
	c.dog.TimeInMilliseconds(name, float64(value/time.Millisecond), c.basetags, 1)
}

// Close flushes the pending metrics and closes the connection to the agent.
func (c *Client) Close() error {
	if c.hooks != nil {
		log.StandardLogger().ReplaceHooks(c.hooks)
		c.hooks = nil
	}
	return c.dog.Close()
}
