package input

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v3"
	"github.com/valyala/gozstd"
)

// Magic numbers of the supported compression formats.
const (
	gzipHeader = "\x1f\x8b"
	zstdHeader = "\x28\xb5\x2f\xfd"
	lz4Header  = "\x04\x22\x4d\x18"
)

// Decompress returns an io.ReadCloser reading the decompressed content of r,
// whether r is compressed or not. gzip, zstd and lz4 (frame format) are
// detected from their magic number; any other content is forwarded as is.
//
// Closing the returned reader releases the decompressor, not r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	var hdr [4]byte
	n, err := io.ReadFull(r, hdr[:])
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		// Too short to be compressed.
		return io.NopCloser(bytes.NewReader(hdr[:n])), nil
	case err != nil:
		return nil, fmt.Errorf("can't read header: %v", err)
	}

	// Give the header back to whoever reads next.
	full := io.MultiReader(bytes.NewReader(hdr[:]), r)

	switch {
	case bytes.HasPrefix(hdr[:], []byte(gzipHeader)):
		zr, err := gzip.NewReader(full)
		if err != nil {
			return nil, fmt.Errorf("gzip: %v", err)
		}
		return zr, nil
	case bytes.Equal(hdr[:], []byte(zstdHeader)):
		zr := gozstd.NewReader(full)
		return &readCloser{Reader: zr, close: func() error { zr.Release(); return nil }}, nil
	case bytes.Equal(hdr[:], []byte(lz4Header)):
		return io.NopCloser(lz4.NewReader(full)), nil
	}

	return io.NopCloser(full), nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc *readCloser) Close() error { return rc.close() }
