package config

import (
	"fmt"

	"github.com/scalescape/expire"
)

const (
	AWS = "aws"
	GCS = "gcs"
)

// Run is the configuration of a single expiry pass. It is built once from the
// command line and not modified afterwards.
type Run struct {
	Bucket        string
	RetentionDays uint64
	DryRun        bool
	Endpoint      string
	Region        string
	Provider      string
	PathStyle     bool
	AllPages      bool
	Confirm       bool
	Pushgateway   string
}

func (r Run) Valid() error {
	if r.Bucket == "" {
		return fmt.Errorf("%w: bucket", expire.ErrInvalidConfiguration)
	}
	if r.Endpoint == "" {
		return expire.ErrMissingEndpoint
	}
	switch r.Provider {
	case AWS, GCS:
	default:
		return fmt.Errorf("%q: %w", r.Provider, expire.ErrInvalidProvider)
	}
	return nil
}
