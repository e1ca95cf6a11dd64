package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	}))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cli.VersionPrinter = VersionDisplay

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &ExpireCommand{
		newStore: newStore,
		confirm:  askConfirmation,
		now:      time.Now,
		out:      os.Stdout,
		log:      log.With().Str("cmd", "expire").Logger(),
	}
	if err := NewApp(cmd).RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal().Msgf("error: %v", err)
	}
}

func VersionDisplay(cc *cli.Context) {
	fmt.Printf("expire %s (%s)\n", version, commit) //nolint
}
