/*
Package monthlog produces monthly reports out of log-like text files.

The first line of the input is a header whose second space-separated field
is the dataset keyword: the following lines containing that keyword form the
dataset. The dataset is sorted by the date embedded in each record (a
"-DD-MM-" fragment) and reported month by month, grouping records by their
type flag (" M " or " R ") and listing the last field of each of them.

The pipeline steps (ReadLines, SelectDataset, SortByDate, NewReport) are
plain functions over slices of lines. Main chains them between an Input and
an Output component, optionally followed by an Upload, all described by a
Config. Components live in their respective packages (monthlog/input,
monthlog/output, monthlog/upload and monthlog/metrics).
*/
package monthlog

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Main reads the records at src, and writes their monthly report to dst,
// using the components described by cfg.
//
// A failed run is logged by Main itself, before the metrics client is
// closed, so that clients forwarding logs see the error.
func Main(cfg *Config, src, dst string) (err error) {
	start := time.Now()
	runID := uuid.New().String()
	ctxlog := log.WithFields(log.Fields{"run": runID})

	var metrics MetricsClient = NopMetrics{}
	defer func() {
		if err != nil {
			ctxlog.WithError(err).Error("report failed")
		}
		if c, ok := metrics.(io.Closer); ok {
			c.Close()
		}
	}()

	if cfg.Metrics.desc != nil {
		m, err := cfg.Metrics.desc.New(cfg.Metrics.DecodedConfig)
		if err != nil {
			return fmt.Errorf("error creating metrics client %q: %w", cfg.Metrics.Name, err)
		}
		metrics = m
	}

	params := func(dcfg interface{}) ComponentParams {
		return ComponentParams{DecodedConfig: dcfg, Metrics: metrics, RunID: runID}
	}

	in, err := cfg.Input.desc.New(InputParams{params(cfg.Input.DecodedConfig)})
	if err != nil {
		return fmt.Errorf("error creating input %q: %w", cfg.Input.Name, err)
	}

	out, err := cfg.Output.desc.New(OutputParams{params(cfg.Output.DecodedConfig)})
	if err != nil {
		return fmt.Errorf("error creating output %q: %w", cfg.Output.Name, err)
	}

	var upl Upload
	if cfg.Upload.desc != nil {
		upl, err = cfg.Upload.desc.New(UploadParams{params(cfg.Upload.DecodedConfig)})
		if err != nil {
			return fmt.Errorf("error creating upload %q: %w", cfg.Upload.Name, err)
		}
	}

	ctxlog.WithFields(log.Fields{"src": src, "dst": dst}).Debug("opening input and output")

	r, err := in.Open(src)
	if err != nil {
		return &InputOpenError{Path: src, Err: err}
	}
	defer r.Close()

	closed := false
	defer func() {
		if !closed {
			out.Close()
		}
	}()
	if err := out.Open(dst); err != nil {
		return &OutputOpenError{Path: dst, Err: err}
	}

	stats := NewStats()

	lines, err := ReadLines(r)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", src, err)
	}
	stats.AddLines(lines)

	keyword, records, err := SelectDataset(lines)
	if err != nil {
		return err
	}
	stats.Keyword = keyword
	stats.DatasetLines = len(records)
	ctxlog.WithFields(log.Fields{"keyword": keyword, "records": len(records)}).Debug("dataset selected")

	sorted, err := SortByDate(records)
	if err != nil {
		return err
	}

	rep := NewReport(sorted)
	stats.SetReport(rep)
	if err := out.Write(rep); err != nil {
		return fmt.Errorf("error writing report to %s: %w", dst, err)
	}

	closed = true
	path, err := out.Close()
	if err != nil {
		return fmt.Errorf("error closing %s: %w", dst, err)
	}

	if upl != nil && path != "" {
		if err := upl.Upload(path); err != nil {
			return fmt.Errorf("error uploading %s: %w", path, err)
		}
		ctxlog.WithFields(log.Fields{"path": path}).Info("report uploaded")
	}

	stats.ReadBytes = in.Stats().NumReadBytes
	stats.WrittenBytes = out.Stats().NumWrittenBytes
	stats.Duration = time.Since(start)
	stats.Log(ctxlog)
	stats.Publish(metrics)

	return nil
}
