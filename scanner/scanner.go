package scanner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/scalescape/expire"
	"github.com/scalescape/expire/store/cloud"
)

type storeI interface {
	ListObject(ctx context.Context, bucket string, allPages bool) (cloud.Listing, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Observer is told about every object the pass looks at.
type Observer interface {
	ObjectScanned()
	ObjectExpired()
	ObjectDeleted()
}

type nopObserver struct{}

func (nopObserver) ObjectScanned() {}
func (nopObserver) ObjectExpired() {}
func (nopObserver) ObjectDeleted() {}

type Request struct {
	Bucket   string
	Days     uint64
	Cutoff   time.Time
	DryRun   bool
	AllPages bool
}

type Summary struct {
	Scanned   int
	Expired   int
	Deleted   int
	Truncated bool
}

type Service struct {
	store storeI
	out   io.Writer
	obs   Observer
	log   zerolog.Logger
}

// Expire lists the bucket once and deletes every object last modified before
// req.Cutoff, in listing order. The first error stops the pass; objects
// already handled stay handled.
func (s Service) Expire(ctx context.Context, req Request) (Summary, error) {
	var sum Summary
	listing, err := s.store.ListObject(ctx, req.Bucket, req.AllPages)
	if err != nil {
		return sum, err
	}
	sum.Truncated = listing.Truncated
	if listing.Truncated {
		s.log.Warn().Msgf("listing truncated, only the first %d objects are examined; pass --all-pages to scan the whole bucket", len(listing.Objects))
	}
	s.log.Debug().Msgf("examining %d objects older than %s", len(listing.Objects), req.Cutoff.Format(time.RFC3339))

	for _, obj := range listing.Objects {
		if obj.LastModified == nil {
			return sum, fmt.Errorf("%s: %w", obj.Key, expire.ErrMissingLastModified)
		}
		sum.Scanned++
		s.obs.ObjectScanned()
		if !expire.Expired(*obj.LastModified, req.Cutoff) {
			continue
		}
		sum.Expired++
		s.obs.ObjectExpired()
		fmt.Fprintf(s.out, "%s is older than %d days, deleting...\n", obj.Key, req.Days)
		if !req.DryRun {
			if err := s.store.DeleteObject(ctx, req.Bucket, obj.Key); err != nil {
				return sum, err
			}
			sum.Deleted++
			s.obs.ObjectDeleted()
		}
		// printed in dry-run mode as well, so both modes report the same lines
		fmt.Fprintf(s.out, "%s deleted\n", obj.Key)
	}
	return sum, nil
}

func NewService(st storeI, out io.Writer, obs Observer, log zerolog.Logger) Service {
	if obs == nil {
		obs = nopObserver{}
	}
	return Service{store: st, out: out, obs: obs, log: log}
}
