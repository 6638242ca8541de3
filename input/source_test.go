package input

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/testutil"
)

func newSource(t *testing.T) *Source {
	t.Helper()

	in, err := NewSource(monthlog.InputParams{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return in.(*Source)
}

func readAll(t *testing.T, s *Source, name string) string {
	t.Helper()

	r, err := s.Open(name)
	if err != nil {
		t.Fatalf("Open(%q): %v", name, err)
	}
	defer r.Close()

	buf, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(buf)
}

func TestSourceDefaults(t *testing.T) {
	s := newSource(t)
	if s.Cfg.Region != "us-west-2" {
		t.Errorf("Region = %q, want us-west-2", s.Cfg.Region)
	}
}

func TestSourceLocalFile(t *testing.T) {
	defer testutil.DisableLogging()()

	dir := t.TempDir()
	plain := testutil.WriteFile(t, dir, "in.log", []byte(lorem))
	gz := testutil.WriteFile(t, dir, "in.log.gz", gzipped(t, lorem))
	zst := testutil.WriteFile(t, dir, "compressed-without-extension", zstded(t, lorem))

	for _, name := range []string{plain, gz, zst, "file://" + plain} {
		t.Run(filepath.Base(name), func(t *testing.T) {
			s := newSource(t)
			if got := readAll(t, s, name); got != lorem {
				t.Errorf("got %q, want %q", got, lorem)
			}

			fi, err := os.Stat(strings.TrimPrefix(name, "file://"))
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Stats().NumReadBytes; got != fi.Size() {
				t.Errorf("NumReadBytes = %d, want %d", got, fi.Size())
			}
		})
	}
}

func TestSourceLocalFileWithoutAWS(t *testing.T) {
	defer testutil.DisableLogging()()

	dir := t.TempDir()
	t.Setenv("AWS_SDK_LOAD_CONFIG", "1")
	t.Setenv("AWS_PROFILE", "no-such-profile")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "missing-config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "missing-credentials"))

	plain := testutil.WriteFile(t, dir, "in.log", []byte(lorem))

	s := newSource(t)
	if got := readAll(t, s, plain); got != lorem {
		t.Errorf("got %q, want %q", got, lorem)
	}
	if s.svc != nil {
		t.Errorf("S3 client created for a local input")
	}
}

func TestSourceMissingFile(t *testing.T) {
	s := newSource(t)

	_, err := s.Open(filepath.Join(t.TempDir(), "missing.log"))
	if !os.IsNotExist(err) {
		t.Errorf("Open() error = %v, want a not exist error", err)
	}
}

func TestSourceStdin(t *testing.T) {
	defer testutil.DisableLogging()()
	defer func(r io.Reader) { stdin = r }(stdin)
	stdin = strings.NewReader(lorem)

	s := newSource(t)
	if got := readAll(t, s, "-"); got != lorem {
		t.Errorf("got %q, want %q", got, lorem)
	}
}

func TestSourceHTTP(t *testing.T) {
	defer testutil.DisableLogging()()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/in.log":
			io.WriteString(w, lorem)
		case "/in.log.lz4":
			w.Write(lz4ed(t, lorem))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newSource(t)
	for _, name := range []string{"/in.log", "/in.log.lz4"} {
		if got := readAll(t, s, ts.URL+name); got != lorem {
			t.Errorf("%s: got %q, want %q", name, got, lorem)
		}
	}

	if _, err := s.Open(ts.URL + "/missing"); err == nil {
		t.Errorf("Open() succeeded on a 404, want error")
	}
}

func TestSourceS3(t *testing.T) {
	defer testutil.DisableLogging()()

	svc, ops, params := testutil.MockS3Service(&testutil.MockS3{
		Objects: map[string][]byte{
			"bucket/path/to/in.log.gz": gzipped(t, lorem),
		},
	})

	s := newSource(t)
	s.SetS3API(svc)

	if got := readAll(t, s, "s3://bucket/path/to/in.log.gz"); got != lorem {
		t.Errorf("got %q, want %q", got, lorem)
	}

	if _, err := s.Open("s3://bucket/missing"); err == nil {
		t.Errorf("Open() succeeded on a missing object, want error")
	}

	if len(*ops) != 2 || (*ops)[0] != "GetObject" {
		t.Fatalf("ops = %v, want 2 GetObject", *ops)
	}
	in := (*params)[0].(*s3.GetObjectInput)
	if aws.StringValue(in.Bucket) != "bucket" || aws.StringValue(in.Key) != "path/to/in.log.gz" {
		t.Errorf("GetObject bucket, key = %q, %q", aws.StringValue(in.Bucket), aws.StringValue(in.Key))
	}
}

func TestSourceUnknownScheme(t *testing.T) {
	s := newSource(t)
	if _, err := s.Open("ftp://host/file"); err == nil {
		t.Errorf("Open() succeeded with an unknown scheme, want error")
	}
}

func TestSourceBadRegion(t *testing.T) {
	cfg := &SourceConfig{Region: "nowhere-1"}
	if _, err := NewSource(monthlog.InputParams{ComponentParams: monthlog.ComponentParams{DecodedConfig: cfg}}); err == nil {
		t.Errorf("NewSource() succeeded with an unknown region, want error")
	}
}
