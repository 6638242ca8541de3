package input

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v3"
	"github.com/valyala/gozstd"
)

const lorem = `H KEY header
a-15-01-2021 M KEY lorem
b-20-02-2021 R KEY ipsum
c-28-03-2021 M other dolor
`

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	return gozstd.Compress(nil, []byte(s))
}

func lz4ed(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		name string
		data func(*testing.T, string) []byte
	}{
		{name: "plain", data: func(_ *testing.T, s string) []byte { return []byte(s) }},
		{name: "gzip", data: gzipped},
		{name: "zstd", data: zstded},
		{name: "lz4", data: lz4ed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decompress(bytes.NewReader(tt.data(t, lorem)))
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			defer r.Close()

			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("couldn't read all: %v", err)
			}
			if string(got) != lorem {
				t.Errorf("got %q, want %q", got, lorem)
			}
		})
	}
}

func TestDecompressShort(t *testing.T) {
	for _, s := range []string{"", "0", "ab", "\x1f\x8b"} {
		r, err := Decompress(strings.NewReader(s))
		if err != nil {
			t.Fatalf("Decompress(%q) error = %v", s, err)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != s {
			t.Errorf("got b = %q, want %q", b, s)
		}
	}
}

func TestDecompressCorruptedGzip(t *testing.T) {
	// gzip magic number followed by garbage.
	_, err := Decompress(strings.NewReader("\x1f\x8bgarbage, not gzip at all"))
	if err == nil {
		t.Fatalf("Decompress() succeeded, want error")
	}
}
