package main

import (
	"fmt"

	"github.com/scalescape/expire/config"
	"github.com/urfave/cli/v2"
)

func parseRunConfig(cctx *cli.Context) (config.Run, error) {
	cfg := config.Run{
		Bucket:        cctx.String("bucket"),
		RetentionDays: cctx.Uint64("days"),
		DryRun:        cctx.Bool("dry-run"),
		Endpoint:      cctx.String("endpoint"),
		Region:        cctx.String("region"),
		Provider:      cctx.String("provider"),
		PathStyle:     cctx.Bool("path-style"),
		AllPages:      cctx.Bool("all-pages"),
		Confirm:       cctx.Bool("confirm"),
		Pushgateway:   cctx.String("pushgateway"),
	}
	if err := cfg.Valid(); err != nil {
		return config.Run{}, fmt.Errorf("invalid flag: %w", err)
	}
	return cfg, nil
}
