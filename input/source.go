package input

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"

	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/awsutils"
)

// SourceDesc describes the Source input.
var SourceDesc = monthlog.InputDesc{
	Name:   "Source",
	New:    NewSource,
	Config: &SourceConfig{},
	Help: "This input reads the log file named on the command line. The name can be:\n\n" +
		"  * A local file path on the filesystem\n" +
		"  * \"-\": the log file is read from stdin\n" +
		"  * A S3 URL (s3://bucket/key): the object is downloaded\n" +
		"  * A HTTP/HTTPS URL: the file at that URL is downloaded\n\n" +
		"Gzip, zstd and lz4 compressed files are decompressed on the fly, whatever their name.\n",
}

var stdin io.Reader = os.Stdin // for tests

// SourceConfig holds the configuration of the Source input.
type SourceConfig struct {
	Region string `help:"AWS Region for fetching from S3" default:"us-west-2"`
}

func (cfg *SourceConfig) fillDefaults() {
	if cfg.Region == "" {
		cfg.Region = "us-west-2"
	}
}

// Source is an input reading a single file, local or remote.
type Source struct {
	Cfg *SourceConfig

	svc    s3iface.S3API
	client *http.Client
	nread  int64
}

// NewSource returns a Source input.
func NewSource(cfg monthlog.InputParams) (monthlog.Input, error) {
	if cfg.DecodedConfig == nil {
		cfg.DecodedConfig = &SourceConfig{}
	}
	dcfg := cfg.DecodedConfig.(*SourceConfig)
	dcfg.fillDefaults()
	if err := awsutils.CheckRegion(dcfg.Region); err != nil {
		return nil, err
	}

	return &Source{
		Cfg:    dcfg,
		client: http.DefaultClient,
	}, nil
}

// s3API returns the S3 client, creating the AWS session on first use.
func (s *Source) s3API() (s3iface.S3API, error) {
	if s.svc != nil {
		return s.svc, nil
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(s.Cfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("can't create aws session: %v", err)
	}
	s.svc = s3.New(sess)
	return s.svc, nil
}

// SetS3API allows to replace the S3API, for tests.
func (s *Source) SetS3API(api s3iface.S3API) {
	s.svc = api
}

// Open opens the file designated by name and returns a reader over its
// decompressed content.
func (s *Source) Open(name string) (io.ReadCloser, error) {
	raw, err := s.open(name)
	if err != nil {
		return nil, err
	}

	zr, err := Decompress(&countingReader{r: raw, n: &s.nread})
	if err != nil {
		raw.Close()
		return nil, err
	}

	return &readCloser{
		Reader: zr,
		close: func() error {
			zr.Close()
			return raw.Close()
		},
	}, nil
}

func (s *Source) open(name string) (io.ReadCloser, error) {
	ctxlog := log.WithFields(log.Fields{"f": "Source.open", "name": name})

	if name == "-" {
		ctxlog.Debug("reading from stdin")
		return io.NopCloser(stdin), nil
	}

	u, err := url.Parse(name)
	if err != nil {
		// NOTE: raw paths are parsed with u.Scheme=""
		return nil, err
	}

	switch u.Scheme {
	case "", "file":
		path := name
		if u.Scheme == "file" {
			path = u.Path
		}
		return os.Open(path)
	case "s3":
		svc, err := s.s3API()
		if err != nil {
			return nil, err
		}
		resp, err := svc.GetObject(&s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return nil, err
		}
		ctxlog.WithField("size", aws.Int64Value(resp.ContentLength)).Debug("downloading from S3")
		return resp.Body, nil
	case "http", "https":
		resp, err := s.client.Get(name)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("unknown scheme: %q", u.Scheme)
}

// Stats returns the input stats.
func (s *Source) Stats() monthlog.InputStats {
	return monthlog.InputStats{
		NumReadBytes: atomic.LoadInt64(&s.nread),
	}
}

type countingReader struct {
	r io.Reader
	n *int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	atomic.AddInt64(cr.n, int64(n))
	return n, err
}
