package datadog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"
)

type hook struct {
	levels []log.Level
	client statsd.ClientInterface
	tags   []string
	host   string
}

// NewHook returns a Logrus hook that forwards log entries as events to a
// statsd client, such as the datadog-agent.
//
// Log entries with a level higher than level are discarded.
// host is used to fill the Hostname field of statsd events, its purpose it NOT
// to serve as configuring the stats connection (the client must already be
// configured).
// tags is a list of tags to include with all events.
func NewHook(level log.Level, client statsd.ClientInterface, host string, tags []string) log.Hook {
	levels := make([]log.Level, level+1)
	copy(levels[:level+1], log.AllLevels)

	return &hook{
		client: client,
		levels: levels,
		tags:   tags,
		host:   host,
	}
}

func (h *hook) Levels() []log.Level {
	return h.levels
}

func (h *hook) Fire(ent *log.Entry) error {
	// Format the statsd event message as message + fields as k=v, sorted by key:
	// example "this is message k1=v1 k2=v2 k3=v3"
	keys := make([]string, 0, len(ent.Data))
	for k := range ent.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := strings.Builder{}
	buf.WriteString(ent.Message)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, ent.Data[k])
	}

	return h.client.Event(&statsd.Event{
		Tags:           h.tags,
		Timestamp:      ent.Time,
		SourceTypeName: "monthlog",
		AlertType:      levelToAlertType(ent.Level),
		Text:           "event text",
		Title:          buf.String(),
		Hostname:       h.host,
	})
}

func levelToAlertType(level log.Level) statsd.EventAlertType {
	switch level {
	case log.PanicLevel, log.FatalLevel, log.ErrorLevel:
		return statsd.Error
	case log.WarnLevel:
		return statsd.Warning
	}
	return statsd.Info
}
