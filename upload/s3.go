// Package upload provides the components shipping the report file once it
// has been written.
package upload

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/jpillora/backoff"
	"github.com/juju/ratelimit"
	log "github.com/sirupsen/logrus"

	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/awsutils"
)

// All is the list of all uploads.
var All = []monthlog.UploadDesc{
	S3Desc,
}

// S3Desc describes the S3 upload.
var S3Desc = monthlog.UploadDesc{
	Name:   "S3",
	New:    NewS3,
	Config: &S3Config{},
	Help: "S3 uploads the file written by the output to s3://Bucket/Prefix/<file name>.\n" +
		"The upload is retried with an exponential backoff, and the run id is attached to the object metadata.\n",
}

// S3Config holds the configuration for the S3 uploader.
type S3Config struct {
	Region         string             `help:"S3 region to upload to" default:"us-east-1"`
	Bucket         string             `help:"S3 bucket to upload to" required:"true"`
	Prefix         string             `help:"Prefix on the destination bucket" default:"/"`
	Retries        int                `help:"Number of attempts before giving up an upload" default:"3"`
	MaxBytesPerSec monthlog.SizeBytes `help:"Upload bandwidth limit, 0 means unlimited (e.g 512KB, 10MiB)" default:"0"`
}

func (cfg *S3Config) fillDefaults() error {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "/"
	}

	if err := awsutils.CheckRegion(cfg.Region); err != nil {
		return err
	}

	if cfg.Retries < 0 {
		return fmt.Errorf("Retries: invalid number: %v", cfg.Retries)
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}

	return nil
}

// S3 is an upload sending files to S3.
type S3 struct {
	Cfg *S3Config

	uploader *s3manager.Uploader
	backoff  *backoff.Backoff
	runID    string
	metrics  monthlog.MetricsClient

	totaln    int64
	totalerr  int64
	attemptsn int64
}

// NewS3 returns a S3 upload.
func NewS3(cfg monthlog.UploadParams) (monthlog.Upload, error) {
	if cfg.DecodedConfig == nil {
		cfg.DecodedConfig = &S3Config{}
	}
	dcfg := cfg.DecodedConfig.(*S3Config)
	if err := dcfg.fillDefaults(); err != nil {
		return nil, fmt.Errorf("upload.s3: %v", err)
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(dcfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("upload.s3: can't create aws session: %v", err)
	}

	return newS3(dcfg, s3.New(sess), cfg.ComponentParams), nil
}

func newS3(cfg *S3Config, svc s3iface.S3API, params monthlog.ComponentParams) *S3 {
	m := params.Metrics
	if m == nil {
		m = monthlog.NopMetrics{}
	}
	return &S3{
		Cfg:      cfg,
		uploader: s3manager.NewUploaderWithClient(svc),
		backoff:  awsutils.NewBackoff(500*time.Millisecond, 30*time.Second),
		runID:    params.RunID,
		metrics:  m,
	}
}

// Upload uploads the file at fpath, retrying on failure.
func (u *S3) Upload(fpath string) error {
	ctxlog := log.WithFields(log.Fields{"f": "S3.Upload", "filepath": fpath})

	atomic.AddInt64(&u.totaln, 1)
	u.backoff.Reset()

	var err error
	for i := 0; i < u.Cfg.Retries; i++ {
		if i != 0 {
			d := u.backoff.Duration()
			ctxlog.WithError(err).WithFields(log.Fields{"retry#": i, "wait": d}).Warn("failed upload")
			time.Sleep(d)
		}

		atomic.AddInt64(&u.attemptsn, 1)
		start := time.Now()
		if err = u.uploadFile(fpath); err == nil {
			u.metrics.Duration("upload.s3.duration", time.Since(start))
			return nil
		}
	}

	atomic.AddInt64(&u.totalerr, 1)
	u.metrics.DeltaCountWithTags("upload.s3.errors", 1, []string{"bucket:" + u.Cfg.Bucket})
	return fmt.Errorf("giving up after %d attempts: %v", u.Cfg.Retries, err)
}

// Key returns the S3 key fpath is uploaded to. Keys never start with a
// slash, whatever the prefix.
func (u *S3) Key(fpath string) string {
	// force forwarding slash path as AWS key
	return strings.TrimLeft(path.Join(u.Cfg.Prefix, filepath.Base(fpath)), "/")
}

func (u *S3) uploadFile(fpath string) error {
	file, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer file.Close()

	var body io.Reader = file
	if u.Cfg.MaxBytesPerSec > 0 {
		rate := float64(u.Cfg.MaxBytesPerSec)
		body = ratelimit.Reader(file, ratelimit.NewBucketWithRate(rate, int64(u.Cfg.MaxBytesPerSec)))
	}

	key := u.Key(fpath)
	in := &s3manager.UploadInput{
		Bucket: aws.String(u.Cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if u.runID != "" {
		in.Metadata = map[string]*string{"Run-Id": aws.String(u.runID)}
	}

	result, err := u.uploader.Upload(in)
	if err != nil {
		return fmt.Errorf("error uploading %s to s3://%s/%s: %v", fpath, u.Cfg.Bucket, key, err)
	}

	log.WithFields(log.Fields{"filepath": fpath, "dst": result.Location}).Info("uploaded")
	return nil
}

// Stats returns the upload stats.
func (u *S3) Stats() monthlog.UploadStats {
	return monthlog.UploadStats{
		NumProcessedFiles: atomic.LoadInt64(&u.totaln),
		NumErrorFiles:     atomic.LoadInt64(&u.totalerr),
		NumAttempts:       atomic.LoadInt64(&u.attemptsn),
	}
}
