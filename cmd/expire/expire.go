package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog"
	"github.com/scalescape/expire"
	"github.com/scalescape/expire/config"
	"github.com/scalescape/expire/monitor"
	"github.com/scalescape/expire/scanner"
	"github.com/urfave/cli/v2"
)

type storeFactory func(ctx context.Context, cfg config.Run) (objectStore, error)

type ExpireCommand struct {
	newStore storeFactory
	confirm  func(cfg config.Run) (bool, error)
	now      func() time.Time
	out      io.Writer
	log      zerolog.Logger
}

func NewApp(ec *ExpireCommand) *cli.App {
	return &cli.App{
		Name:    "expire",
		Usage:   "delete bucket objects older than a number of days, for storage providers without lifecycle policies",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "bucket", Aliases: []string{"b"},
				Usage:    "name of the bucket",
				Required: true,
			},
			&cli.Uint64Flag{
				Name: "days", Aliases: []string{"d"},
				Usage:    "delete objects last modified more than this many days ago",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "look for, but do not delete objects",
			},
			&cli.StringFlag{
				Name: "endpoint", Aliases: []string{"e"},
				Usage:   "storage service endpoint",
				EnvVars: []string{"AWS_ENDPOINT"},
			},
			&cli.StringFlag{
				Name: "region", Aliases: []string{"r"},
				Usage:   "storage service region",
				EnvVars: []string{"AWS_DEFAULT_REGION"},
			},
			&cli.StringFlag{
				Name: "provider", Aliases: []string{"p"},
				Usage:   "storage provider [aws|gcs]",
				Value:   config.AWS,
				EnvVars: []string{"EXPIRE_PROVIDER"},
			},
			&cli.BoolFlag{
				Name:    "path-style",
				Usage:   "use path-style bucket addressing",
				EnvVars: []string{"AWS_S3_FORCE_PATH_STYLE"},
			},
			&cli.BoolFlag{
				Name:  "all-pages",
				Usage: "examine every listing page instead of only the first",
			},
			&cli.BoolFlag{
				Name:  "confirm",
				Usage: "ask before deleting",
			},
			&cli.StringFlag{
				Name:    "pushgateway",
				Usage:   "push run metrics to this prometheus pushgateway",
				EnvVars: []string{"EXPIRE_PUSHGATEWAY"},
			},
			&cli.StringFlag{
				Name: "level", Aliases: []string{"l"},
				Usage:       "set log level",
				DefaultText: "info",
				Action: func(ctx *cli.Context, v string) error {
					level := zerolog.InfoLevel
					if lev, err := zerolog.ParseLevel(v); err == nil {
						level = lev
					}
					zerolog.SetGlobalLevel(level)
					return nil
				},
			},
		},
		Action: ec.run,
	}
}

func (c *ExpireCommand) run(cctx *cli.Context) error {
	cfg, err := parseRunConfig(cctx)
	if err != nil {
		return err
	}
	cutoff, err := expire.Cutoff(c.now(), cfg.RetentionDays)
	if err != nil {
		return err
	}
	log := c.log.With().Str("bucket", cfg.Bucket).Str("provider", cfg.Provider).Logger()
	log.Debug().Msgf("expiring objects last modified before %s", cutoff.Format(time.RFC3339))

	if cfg.Confirm && !cfg.DryRun {
		ok, err := c.confirm(cfg)
		if err != nil {
			return err
		}
		if !ok {
			log.Info().Msgf("aborted, nothing deleted")
			return nil
		}
	}

	st, err := c.newStore(cctx.Context, cfg)
	if err != nil {
		return err
	}
	rec := monitor.NewRecorder(cfg.Bucket)
	svc := scanner.NewService(st, c.out, rec, log)
	req := scanner.Request{
		Bucket:   cfg.Bucket,
		Days:     cfg.RetentionDays,
		Cutoff:   cutoff,
		DryRun:   cfg.DryRun,
		AllPages: cfg.AllPages,
	}
	sum, err := svc.Expire(cctx.Context, req)
	rec.Finish(c.now())
	if cfg.Pushgateway != "" {
		if perr := rec.Push(cctx.Context, cfg.Pushgateway); perr != nil {
			log.Error().Msgf("%v", perr)
		}
	}
	if err != nil {
		return err
	}
	log.Info().Int("scanned", sum.Scanned).Int("expired", sum.Expired).Int("deleted", sum.Deleted).
		Bool("dry_run", cfg.DryRun).Msg("expiry pass complete")
	return nil
}

func askConfirmation(cfg config.Run) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Delete objects older than %d days from %s?", cfg.RetentionDays, cfg.Bucket),
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return ok, nil
}
