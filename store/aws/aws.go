package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
	"github.com/scalescape/expire"
	"github.com/scalescape/expire/config"
	"github.com/scalescape/expire/store/cloud"
)

// DefaultRegion is used when neither the caller nor the SDK default chain
// supplies a region.
const DefaultRegion = "us-east-1"

type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type StorageClient struct {
	client s3API
	region string
}

type Config struct {
	Endpoint    string
	Region      string
	PathStyle   bool
	Credentials config.AWSCredentials
}

func (s StorageClient) Region() string {
	return s.region
}

// ListObject lists the bucket. Unless allPages is set only the first page
// returned by the service is read.
func (s StorageClient) ListObject(ctx context.Context, bucket string, allPages bool) (cloud.Listing, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if !allPages {
		resp, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return cloud.Listing{}, fmt.Errorf("failed to get object list: %w", classify(err))
		}
		objs := toObjects(bucket, resp.Contents)
		log.Trace().Msgf("list of objects from bucket: %s length: %d", bucket, len(objs))
		return cloud.Listing{Objects: objs, Truncated: aws.ToBool(resp.IsTruncated)}, nil
	}

	var listing cloud.Listing
	pages := s3.NewListObjectsV2Paginator(s.client, input)
	for pages.HasMorePages() {
		resp, err := pages.NextPage(ctx)
		if err != nil {
			return cloud.Listing{}, fmt.Errorf("failed to get object list: %w", classify(err))
		}
		listing.Objects = append(listing.Objects, toObjects(bucket, resp.Contents)...)
		log.Trace().Msgf("listed page from bucket: %s total: %d", bucket, len(listing.Objects))
	}
	return listing, nil
}

func (s StorageClient) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, bucket, classify(err))
	}
	return nil
}

func toObjects(bucket string, items []types.Object) []cloud.Object {
	objs := make([]cloud.Object, len(items))
	for i, item := range items {
		objs[i] = cloud.Object{Key: aws.ToString(item.Key), LastModified: item.LastModified, Bucket: bucket}
	}
	return objs
}

// classify marks missing-bucket errors, including the bare API error codes
// returned by S3-compatible servers that the SDK cannot map to a type.
func classify(err error) error {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %w", expire.ErrBucketNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return fmt.Errorf("%w: %w", expire.ErrBucketNotFound, err)
	}
	return err
}

// LoadConfig resolves the SDK configuration. The region is taken from cfg,
// then from the SDK default chain, and falls back to DefaultRegion.
func LoadConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if err := cfg.Credentials.Valid(); err == nil {
		cp := credentials.NewStaticCredentialsProvider(cfg.Credentials.AccessKeyID, cfg.Credentials.SecretAccessKey, cfg.Credentials.SessionToken)
		opts = append(opts, awsconfig.WithCredentialsProvider(cp))
	}
	acfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if acfg.Region == "" {
		acfg.Region = DefaultRegion
	}
	return acfg, nil
}

func NewStore(ctx context.Context, cfg Config) (StorageClient, error) {
	acfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return StorageClient{}, err
	}
	cli := s3.NewFromConfig(acfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.PathStyle
	})
	log.Info().Str("region", acfg.Region).Str("endpoint", cfg.Endpoint).Msg("resolved storage region")
	return StorageClient{client: cli, region: acfg.Region}, nil
}
