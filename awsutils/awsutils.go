// Package awsutils provides aws-specific types and functions shared by the
// components talking to S3.
package awsutils

import (
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

// S3 regions, from https://docs.aws.amazon.com/general/latest/gr/s3.html
var regions = map[string]struct{}{
	"us-east-1":      {},
	"us-east-2":      {},
	"us-west-1":      {},
	"us-west-2":      {},
	"af-south-1":     {},
	"ap-east-1":      {},
	"ap-south-1":     {},
	"ap-south-2":     {},
	"ap-northeast-1": {},
	"ap-northeast-2": {},
	"ap-northeast-3": {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-southeast-3": {},
	"ap-southeast-4": {},
	"ca-central-1":   {},
	"eu-central-1":   {},
	"eu-central-2":   {},
	"eu-west-1":      {},
	"eu-west-2":      {},
	"eu-west-3":      {},
	"eu-south-1":     {},
	"eu-south-2":     {},
	"eu-north-1":     {},
	"il-central-1":   {},
	"me-central-1":   {},
	"me-south-1":     {},
	"sa-east-1":      {},
}

// CheckRegion returns an error if region is not a known S3 region.
func CheckRegion(region string) error {
	if _, ok := regions[region]; !ok {
		return fmt.Errorf("unknown aws region %q", region)
	}
	return nil
}

// NewBackoff returns an exponential backoff counter with jitter enabled,
// waiting between min and max.
func NewBackoff(min, max time.Duration) *backoff.Backoff {
	return &backoff.Backoff{
		Min:    min,
		Max:    max,
		Factor: 2,
		Jitter: true,
	}
}
