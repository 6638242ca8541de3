package monthlog

import (
	"time"

	"github.com/bmizerany/perks/quantile"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// Quantiles of the record lengths reported by Stats.
var statsQuantiles = []float64{0.5, 0.9, 0.99}

// Stats gathers statistics about a single run.
type Stats struct {
	Keyword      string
	LinesRead    int
	DatasetLines int
	ReadBytes    int64
	WrittenBytes int64
	Duration     time.Duration

	report  *Report
	lengths *quantile.Stream
	longest int
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{lengths: quantile.NewTargeted(statsQuantiles...)}
}

// AddLines accounts for the lines read from the input.
func (s *Stats) AddLines(lines []string) {
	s.LinesRead += len(lines)
	for _, l := range lines {
		s.lengths.Insert(float64(len(l)))
		if len(l) > s.longest {
			s.longest = len(l)
		}
	}
}

// SetReport records the report that has been produced.
func (s *Stats) SetReport(rep *Report) { s.report = rep }

// LengthQuantile returns the q-quantile of the line lengths, 0 when no
// line has been added.
func (s *Stats) LengthQuantile(q float64) float64 {
	if s.lengths.Count() == 0 {
		return 0
	}
	return s.lengths.Query(q)
}

// Fields returns the stats as logrus fields.
func (s *Stats) Fields() log.Fields {
	f := log.Fields{
		"keyword":       s.Keyword,
		"lines_read":    s.LinesRead,
		"dataset_lines": s.DatasetLines,
		"read":          humanize.Bytes(uint64(s.ReadBytes)),
		"written":       humanize.Bytes(uint64(s.WrittenBytes)),
		"duration":      s.Duration.String(),
		"len_p50":       s.LengthQuantile(0.5),
		"len_p99":       s.LengthQuantile(0.99),
		"len_max":       s.longest,
	}
	if s.report != nil {
		f["records"] = s.report.NumRecords()
	}
	return f
}

// Log logs the stats as a single entry.
func (s *Stats) Log(entry *log.Entry) {
	entry.WithFields(s.Fields()).Info("report done")
}

// Publish sends the stats to the metrics client.
func (s *Stats) Publish(m MetricsClient) {
	m.RawCount("lines_read", int64(s.LinesRead))
	m.RawCount("dataset_lines", int64(s.DatasetLines))
	m.RawCount("bytes_read", s.ReadBytes)
	m.RawCount("bytes_written", s.WrittenBytes)
	m.Duration("run_duration", s.Duration)
	m.Gauge("line_length.p50", s.LengthQuantile(0.5))
	m.Gauge("line_length.p90", s.LengthQuantile(0.9))
	m.Gauge("line_length.p99", s.LengthQuantile(0.99))

	if s.report == nil {
		return
	}
	for _, sec := range s.report.Sections {
		for _, g := range [...]Group{sec.M, sec.R} {
			if g.Len() == 0 {
				continue
			}
			tags := []string{"month:" + sec.Month.Label, "type:" + string(g.Type)}
			m.DeltaCountWithTags("report_records", int64(g.Len()), tags)
		}
	}
}
