package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/scalescape/expire/config"
	"github.com/scalescape/expire/store/aws"
	"github.com/scalescape/expire/store/cloud"
	"github.com/scalescape/expire/store/google"
)

type objectStore interface {
	ListObject(ctx context.Context, bucket string, allPages bool) (cloud.Listing, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

func newStore(ctx context.Context, cfg config.Run) (objectStore, error) {
	switch cfg.Provider {
	case config.GCS:
		gcfg, err := config.LoadGoogle()
		if err != nil && !errors.Is(err, config.ErrInvalidGoogleCreds) {
			return nil, err
		}
		if err != nil {
			log.Debug().Msgf("no service account file configured, using default google credentials")
		}
		st, err := google.NewStore(ctx, google.Config{Endpoint: cfg.Endpoint, ServiceAccountFile: gcfg.ApplicationCredentials})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		creds, err := config.LoadAWSCredentials()
		if err != nil {
			return nil, err
		}
		st, err := aws.NewStore(ctx, aws.Config{
			Endpoint:    cfg.Endpoint,
			Region:      cfg.Region,
			PathStyle:   cfg.PathStyle,
			Credentials: creds,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}
