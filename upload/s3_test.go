package upload

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/testutil"
)

func newTestS3(t *testing.T, cfg *S3Config, mock *testutil.MockS3) (*S3, *[]string, *[]interface{}, *testutil.MockMetrics) {
	t.Helper()

	if err := cfg.fillDefaults(); err != nil {
		t.Fatal(err)
	}

	svc, ops, params := testutil.MockS3Service(mock)
	mi, _ := testutil.MockMetricsDesc.New(nil)
	m := mi.(*testutil.MockMetrics)

	u := newS3(cfg, svc, monthlog.ComponentParams{RunID: "run-1234", Metrics: m})
	u.backoff.Min = time.Millisecond
	u.backoff.Max = 5 * time.Millisecond
	return u, ops, params, m
}

func TestS3Upload(t *testing.T) {
	defer testutil.DisableLogging()()

	const content = "jan\nM 1: apple \nfeb\n"
	path := testutil.WriteFile(t, t.TempDir(), "report.txt", []byte(content))

	tests := []struct {
		name    string
		cfg     *S3Config
		wantKey string
	}{
		{
			name:    "default prefix",
			cfg:     &S3Config{Bucket: "my-bucket"},
			wantKey: "report.txt",
		},
		{
			name:    "prefix",
			cfg:     &S3Config{Bucket: "my-bucket", Prefix: "reports/2021/"},
			wantKey: "reports/2021/report.txt",
		},
		{
			name:    "absolute prefix",
			cfg:     &S3Config{Bucket: "my-bucket", Prefix: "/reports/2021"},
			wantKey: "reports/2021/report.txt",
		},
		{
			name:    "rate limited",
			cfg:     &S3Config{Bucket: "my-bucket", Prefix: "reports", MaxBytesPerSec: 1 << 20},
			wantKey: "reports/report.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ops, params, _ := newTestS3(t, tt.cfg, nil)

			if err := u.Upload(path); err != nil {
				t.Fatalf("Upload() error = %v", err)
			}

			if len(*ops) != 1 || (*ops)[0] != "PutObject" {
				t.Fatalf("ops = %v, want [PutObject]", *ops)
			}

			in := (*params)[0].(*s3.PutObjectInput)
			if got := aws.StringValue(in.Bucket); got != "my-bucket" {
				t.Errorf("bucket = %q, want my-bucket", got)
			}
			if got := aws.StringValue(in.Key); got != tt.wantKey {
				t.Errorf("key = %q, want %q", got, tt.wantKey)
			}
			if got := aws.StringValue(in.Metadata["Run-Id"]); got != "run-1234" {
				t.Errorf("run id metadata = %q, want run-1234", got)
			}
			if in.Body == nil {
				t.Errorf("nil body")
			}

			stats := u.Stats()
			if stats.NumProcessedFiles != 1 || stats.NumErrorFiles != 0 || stats.NumAttempts != 1 {
				t.Errorf("stats = %+v", stats)
			}
		})
	}
}

func TestS3UploadRetries(t *testing.T) {
	defer testutil.DisableLogging()()

	path := testutil.WriteFile(t, t.TempDir(), "report.txt", []byte("jan\n"))

	t.Run("succeeds after failures", func(t *testing.T) {
		u, ops, _, _ := newTestS3(t, &S3Config{Bucket: "b", Retries: 3}, &testutil.MockS3{FailFirst: 2})

		if err := u.Upload(path); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if len(*ops) != 3 {
			t.Errorf("got %d requests, want 3", len(*ops))
		}
		if got := u.Stats().NumAttempts; got != 3 {
			t.Errorf("NumAttempts = %d, want 3", got)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		u, ops, _, m := newTestS3(t, &S3Config{Bucket: "b", Retries: 2}, &testutil.MockS3{FailFirst: -1})

		err := u.Upload(path)
		if err == nil || !strings.Contains(err.Error(), "giving up after 2 attempts") {
			t.Fatalf("Upload() error = %v, want giving up error", err)
		}
		if len(*ops) != 2 {
			t.Errorf("got %d requests, want 2", len(*ops))
		}

		stats := u.Stats()
		if stats.NumProcessedFiles != 1 || stats.NumErrorFiles != 1 || stats.NumAttempts != 2 {
			t.Errorf("stats = %+v", stats)
		}

		want := []string{"delta|name=upload.s3.errors|value=1|tags=bucket:b"}
		if got := m.PublishedMetrics("delta"); strings.Join(got, "\n") != strings.Join(want, "\n") {
			t.Errorf("metrics = %v, want %v", got, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		u, ops, _, _ := newTestS3(t, &S3Config{Bucket: "b", Retries: 1}, nil)

		if err := u.Upload(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Fatalf("Upload() succeeded, want error")
		}
		if len(*ops) != 0 {
			t.Errorf("got %d requests, want 0", len(*ops))
		}
	})
}

func TestS3ConfigDefaults(t *testing.T) {
	cfg := &S3Config{Bucket: "b"}
	if err := cfg.fillDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "us-east-1" || cfg.Prefix != "/" || cfg.Retries != 3 {
		t.Errorf("defaults = %+v", cfg)
	}

	if err := (&S3Config{Bucket: "b", Retries: -1}).fillDefaults(); err == nil {
		t.Errorf("fillDefaults() succeeded with negative retries, want error")
	}
}

func TestNewS3BadRegion(t *testing.T) {
	cfg := &S3Config{Bucket: "b", Region: "nowhere-1"}
	if _, err := NewS3(monthlog.UploadParams{ComponentParams: monthlog.ComponentParams{DecodedConfig: cfg}}); err == nil {
		t.Errorf("NewS3() succeeded with an unknown region, want error")
	}
}
