package expire

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingEndpoint      = errors.New("no endpoint specified")
	ErrInvalidRetention     = errors.New("invalid number of days to subtract")
	ErrInvalidProvider      = errors.New("invalid storage provider")
	ErrMissingLastModified  = errors.New("object does not have a last modified metadata entry")
	ErrBucketNotFound       = errors.New("bucket not found")
)
