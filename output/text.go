package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v3"
	log "github.com/sirupsen/logrus"
	zstd "github.com/valyala/gozstd"

	"github.com/monthlog/monthlog"
)

const textHelpMsg = `This output writes the report as text into the file named on the command line.
The file is compressed with gzip, Zstandard or LZ4 when its name ends with .gz,
.zst (or .zstd) or .lz4 respectively, otherwise it's written as plain text.
Existing files are truncated.
`

// TextDesc describes the Text output.
var TextDesc = monthlog.OutputDesc{
	Name:   "Text",
	New:    NewText,
	Config: &TextConfig{},
	Help:   textHelpMsg,
}

// TextConfig holds the configuration of the Text output.
type TextConfig struct {
	ZstdCompressionLevel int `help:"zstd compression level, ranging from 1 (best speed) to 19 (best compression)." default:"3"`
	ZstdWindowLog        int `help:"Enable zstd long distance matching. Increase memory usage for both compressor/decompressor. If more than 27 the decompressor requires special treatment. 0:disabled." default:"0"`
	GzipCompressionLevel int `help:"gzip compression level, ranging from 1 (best speed) to 9 (best compression)." default:"1"`
}

func (cfg *TextConfig) fillDefaults() {
	if cfg.ZstdCompressionLevel == 0 {
		cfg.ZstdCompressionLevel = 3
	}
	if cfg.GzipCompressionLevel == 0 {
		cfg.GzipCompressionLevel = gzip.BestSpeed
	}
}

const textChunkBuffer = 128 * 1024

// Text is an output writing the report as text.
type Text struct {
	Cfg *TextConfig

	path    string
	fd      *os.File
	writer  *bufio.Writer
	cwriter io.WriteCloser // nil when not compressing

	nbytes   int64
	nrecords int64
}

// NewText returns a Text output.
func NewText(cfg monthlog.OutputParams) (monthlog.Output, error) {
	if cfg.DecodedConfig == nil {
		cfg.DecodedConfig = &TextConfig{}
	}
	dcfg := cfg.DecodedConfig.(*TextConfig)
	dcfg.fillDefaults()

	if dcfg.ZstdCompressionLevel < 1 || dcfg.ZstdCompressionLevel > 19 {
		return nil, fmt.Errorf("ZstdCompressionLevel out of range: %d", dcfg.ZstdCompressionLevel)
	}
	if dcfg.GzipCompressionLevel < gzip.BestSpeed || dcfg.GzipCompressionLevel > gzip.BestCompression {
		return nil, fmt.Errorf("GzipCompressionLevel out of range: %d", dcfg.GzipCompressionLevel)
	}

	return &Text{Cfg: dcfg}, nil
}

// Open creates (or truncates) the file at name.
func (t *Text) Open(name string) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	t.writer = bufio.NewWriterSize(&countingWriter{w: fd, n: &t.nbytes}, textChunkBuffer)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gz":
		t.cwriter, err = gzip.NewWriterLevel(t.writer, t.Cfg.GzipCompressionLevel)
	case ".zst", ".zstd":
		t.cwriter = zstd.NewWriterParams(t.writer, &zstd.WriterParams{
			CompressionLevel: t.Cfg.ZstdCompressionLevel,
			WindowLog:        t.Cfg.ZstdWindowLog,
		})
	case ".lz4":
		t.cwriter = lz4.NewWriter(t.writer)
	}
	if err != nil {
		t.writer, t.cwriter = nil, nil
		fd.Close()
		return err
	}

	// Close only releases what Open fully set up.
	t.path = name
	t.fd = fd

	log.WithFields(log.Fields{"f": "Text.Open", "path": name}).Debug("output file created")
	return nil
}

// Write writes the textual rendition of rep.
func (t *Text) Write(rep *monthlog.Report) error {
	var w io.Writer = t.writer
	if t.cwriter != nil {
		w = t.cwriter
	}
	if _, err := rep.WriteTo(w); err != nil {
		return err
	}
	atomic.StoreInt64(&t.nrecords, int64(rep.NumRecords()))
	return nil
}

// Close flushes and closes the output file and returns its path.
func (t *Text) Close() (string, error) {
	if t.fd == nil {
		return "", nil
	}

	var errs []error
	if t.cwriter != nil {
		if err := t.cwriter.Close(); err != nil {
			errs = append(errs, err)
		}
		if zw, ok := t.cwriter.(*zstd.Writer); ok {
			zw.Release()
		}
	}
	if err := t.writer.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := t.fd.Close(); err != nil {
		errs = append(errs, err)
	}
	t.fd = nil

	if len(errs) != 0 {
		return "", fmt.Errorf("can't close %s: %v", t.path, errs[0])
	}
	return t.path, nil
}

// Stats returns the output stats.
func (t *Text) Stats() monthlog.OutputStats {
	return monthlog.OutputStats{
		NumWrittenBytes: atomic.LoadInt64(&t.nbytes),
		NumRecords:      atomic.LoadInt64(&t.nrecords),
	}
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	atomic.AddInt64(cw.n, int64(n))
	return n, err
}
