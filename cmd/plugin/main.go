package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"twitchDeck/internal/app/runtime"
	"twitchDeck/internal/infrastructure/config"
	"twitchDeck/internal/infrastructure/logging"
	"twitchDeck/internal/infrastructure/metrics"
	sqlitestorage "twitchDeck/internal/infrastructure/persistence/sqlite"
	sd "twitchDeck/internal/interface/streamdeck"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Los argumentos del host son lo único fatal.
	params, err := sd.ParsePluginArgs(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// El host descarta stdout, así que los logs van a un archivo.
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		} else {
			defer f.Close()
			out = f
		}
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat, out)

	slog.Info("plugin: starting",
		"uuid", params.UUID,
		"port", params.Port,
		"host_version", params.Info.Application.Version,
		"plugin_version", params.Info.Plugin.Version)

	store, err := sqlitestorage.NewStore(cfg.DatabasePath)
	if err != nil {
		slog.Error("plugin: history disabled", "error", err)
	}
	if store != nil {
		defer store.Close()
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("plugin: metrics server", "error", err)
			}
		}()
	}

	deps := runtime.Deps{
		Config:  cfg,
		Clock:   clockwork.NewRealClock(),
		Metrics: m,
	}
	if store != nil {
		deps.Store = store
	}
	rt := runtime.New(ctx, deps)
	rt.Start()
	defer rt.Stop()

	client, err := sd.NewClient(sd.RolePlugin, params, rt.Handlers(), sd.Options{
		OnClose: func(err error) {
			if err != nil {
				slog.Error("plugin: host connection closed", "error", err)
			}
			stop()
		},
	})
	if err != nil {
		return err
	}
	rt.Attach(client)

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("plugin: exiting", "error", err)
	}
	slog.Info("plugin: stopped")
	return nil
}
