package google

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"github.com/scalescape/expire"
	"github.com/scalescape/expire/store/cloud"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// pageSize matches the largest page the S3 ListObjectsV2 call returns.
const pageSize = 1000

type StorageClient struct {
	*storage.Client
}

type Config struct {
	Endpoint           string
	ServiceAccountFile string
}

// ListObject lists the bucket. Unless allPages is set only one page of
// pageSize objects is read.
func (s StorageClient) ListObject(ctx context.Context, bucket string, allPages bool) (cloud.Listing, error) {
	iter := s.Client.Bucket(bucket).Objects(ctx, nil)
	if !allPages {
		var attrs []*storage.ObjectAttrs
		next, err := iterator.NewPager(iter, pageSize, "").NextPage(&attrs)
		if err != nil {
			return cloud.Listing{}, fmt.Errorf("failed to get object list: %w", classify(err))
		}
		objs := make([]cloud.Object, len(attrs))
		for i, a := range attrs {
			objs[i] = toObject(a)
		}
		log.Trace().Msgf("list of objects from bucket: %s length: %d", bucket, len(objs))
		return cloud.Listing{Objects: objs, Truncated: next != ""}, nil
	}

	var listing cloud.Listing
	for {
		attrs, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return cloud.Listing{}, fmt.Errorf("failed to iterate object list: %w", classify(err))
		}
		listing.Objects = append(listing.Objects, toObject(attrs))
	}
	log.Trace().Msgf("list of objects from bucket: %s length: %d", bucket, len(listing.Objects))
	return listing, nil
}

func (s StorageClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.Client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, bucket, classify(err))
	}
	return nil
}

func toObject(attrs *storage.ObjectAttrs) cloud.Object {
	o := cloud.Object{Key: attrs.Name, Bucket: attrs.Bucket}
	if !attrs.Updated.IsZero() {
		updated := attrs.Updated
		o.LastModified = &updated
	}
	return o
}

func classify(err error) error {
	if errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %w", expire.ErrBucketNotFound, err)
	}
	return err
}

func NewStore(ctx context.Context, cfg Config) (StorageClient, error) {
	opts := []option.ClientOption{option.WithEndpoint(cfg.Endpoint)}
	if cfg.ServiceAccountFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return StorageClient{}, fmt.Errorf("error creating gcp storage client: %w", err)
	}
	log.Info().Str("endpoint", cfg.Endpoint).Msg("created gcs storage client")
	return StorageClient{Client: client}, nil
}
