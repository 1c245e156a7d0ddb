package main

import (
	"context"
	"errors"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"twin/internal/cli"
	"twin/internal/config"
	"twin/internal/voice"
	"twin/internal/voice/native"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cli.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli.ExitOK
		}
		return cli.ExitUsage
	}

	config.SetupLogger(os.Stderr, opts.LogLevel)

	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		log.Warn("Failed to load env file", "path", opts.EnvFile, "err", err)
	}

	// SIGINT is left to the voice recorder, which ends the current take.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	app.NewVoice = func(cfg voice.Config) cli.Voice {
		return voice.New(cfg, native.Engines())
	}

	return app.Run(ctx, opts)
}
