package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/awstesting/unit"
	"github.com/aws/aws-sdk-go/service/s3"
)

// MockS3 customizes the responses of the service returned by MockS3Service.
type MockS3 struct {
	// Objects holds the content of the objects served by GetObject, by
	// "bucket/key".
	Objects map[string][]byte

	// FailFirst is the number of requests answered with an error before
	// the service starts to succeed. Negative means all requests fail.
	FailFirst int
}

// MockS3Service returns a mocked s3.S3 service which records all operations
// related to Upload and GetObject S3 API calls.
//
// Once all interactions with the returned service have ended, and not before
// that, ops and params can be accessed. ops and params will hold the list of
// AWS S3 API calls and their parameters. For instance, if ops[0] is "PutObject"
// then params[0] is a *s3.PutObjectInput.
func MockS3Service(mock *MockS3) (svc *s3.S3, ops *[]string, params *[]interface{}) {
	const respMsg = `<?xml version="1.0" encoding="UTF-8"?>
	<CompleteMultipartUploadOutput>
	   <Location>mockValue</Location>
	   <Bucket>mockValue</Bucket>
	   <Key>mockValue</Key>
	   <ETag>mockValue</ETag>
	</CompleteMultipartUploadOutput>`

	if mock == nil {
		mock = &MockS3{}
	}

	var m sync.Mutex

	ops = &[]string{}
	params = &[]interface{}{}

	nreq := 0
	partNum := 0
	svc = s3.New(unit.Session)
	svc.Handlers.Unmarshal.Clear()
	svc.Handlers.UnmarshalMeta.Clear()
	svc.Handlers.UnmarshalError.Clear()
	svc.Handlers.Send.Clear()
	svc.Handlers.Send.PushBack(func(r *request.Request) {
		m.Lock()
		defer m.Unlock()

		*ops = append(*ops, r.Operation.Name)
		*params = append(*params, r.Params)

		nreq++
		if mock.FailFirst < 0 || nreq <= mock.FailFirst {
			r.HTTPResponse = &http.Response{
				StatusCode: 500,
				Body:       io.NopCloser(strings.NewReader("")),
			}
			r.Error = fmt.Errorf("mocked failure #%d", nreq)
			r.Retryable = aws.Bool(false)
			return
		}

		r.HTTPResponse = &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(bytes.NewReader([]byte(respMsg))),
		}

		switch data := r.Data.(type) {
		case *s3.CreateMultipartUploadOutput:
			data.UploadId = aws.String("UPLOAD-ID")
		case *s3.UploadPartOutput:
			partNum++
			data.ETag = aws.String(fmt.Sprintf("ETAG%d", partNum))
		case *s3.CompleteMultipartUploadOutput:
			data.Location = aws.String("https://location")
			data.VersionId = aws.String("VERSION-ID")
		case *s3.PutObjectOutput:
			data.VersionId = aws.String("VERSION-ID")
		case *s3.GetObjectOutput:
			in := r.Params.(*s3.GetObjectInput)
			buf, ok := mock.Objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
			if !ok {
				r.HTTPResponse.StatusCode = 404
				r.Error = fmt.Errorf("NoSuchKey: %s/%s", aws.StringValue(in.Bucket), aws.StringValue(in.Key))
				r.Retryable = aws.Bool(false)
				return
			}
			data.ContentLength = aws.Int64(int64(len(buf)))
			data.Body = io.NopCloser(bytes.NewReader(buf))
		}
	})

	return svc, ops, params
}
