// gridwatchd is the Envoy monitoring agent daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtxerr/gridwatch/internal/collector"
	"github.com/xtxerr/gridwatch/internal/envoy"
	"github.com/xtxerr/gridwatch/internal/loader"
	"github.com/xtxerr/gridwatch/internal/logging"
	"github.com/xtxerr/gridwatch/internal/metrics"
	"github.com/xtxerr/gridwatch/internal/series"
	"github.com/xtxerr/gridwatch/internal/server"
	"github.com/xtxerr/gridwatch/internal/state"
	"github.com/xtxerr/gridwatch/internal/tasks"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "gridwatch.yaml", "config file path")
	listen := flag.String("listen", "", "listen address (overrides config)")
	envoyURL := flag.String("envoy-url", "", "Envoy base URL (overrides config)")
	token := flag.String("token", "", "Envoy API token (or GRIDWATCH_TOKEN env)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "log as JSON")
	flag.Parse()

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		// A missing file is fine; flags and environment carry enough to run.
		if errors.Is(err, fs.ErrNotExist) {
			cfg = loader.DefaultConfig()
		} else {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI overrides
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *envoyURL != "" {
		cfg.Envoy.URL = *envoyURL
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logJSON {
		cfg.Logging.JSON = true
	}

	// Token from flag, env, or config
	if *token != "" {
		cfg.Envoy.Token = *token
	}
	if cfg.Envoy.Token == "" {
		cfg.Envoy.Token = os.Getenv("GRIDWATCH_TOKEN")
	}
	if cfg.Envoy.Token == "" {
		fmt.Fprintln(os.Stderr, "an Envoy API token is required (use -token, GRIDWATCH_TOKEN, or envoy.token)")
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(level, cfg.Logging.JSON)
	log := logging.Component("main")

	log.Info("gridwatchd starting", "version", Version, "envoy", cfg.Envoy.URL)

	// Wire the components: the bundle and tracker are the only shared
	// state, handed explicitly to the collector and the server.
	client, err := envoy.NewClient(envoy.Config{
		BaseURL:            cfg.Envoy.URL,
		Token:              cfg.Envoy.Token,
		InsecureSkipVerify: cfg.Envoy.InsecureSkipVerify,
		Timeout:            cfg.Envoy.Timeout.Duration(),
	})
	if err != nil {
		log.Error("create envoy client", "error", err)
		os.Exit(1)
	}

	bundle := series.NewBundle(series.Config{
		Metrics:   collector.MetricNames(),
		Retention: cfg.Series.Retention.Duration(),
	})
	tracker := state.NewTracker()
	instruments := metrics.NewSet()

	col := collector.New(collector.Config{
		Client:  client,
		Bundle:  bundle,
		Tracker: tracker,
		Metrics: instruments,
	})

	srv := server.New(&server.Config{
		Listen:  cfg.Listen,
		Bundle:  bundle,
		Tracker: tracker,
		Stats:   col.Stats(),
		Metrics: instruments,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grp := tasks.NewGroup(ctx)
	grp.Start(tasks.Task{
		Name:     "poll-status",
		Interval: cfg.Poll.StatusInterval.Duration(),
		Run:      col.PollStatus,
	})
	grp.Start(tasks.Task{
		Name:     "poll-inventory",
		Interval: cfg.Poll.InventoryInterval.Duration(),
		Run:      col.PollInventory,
	})
	grp.Start(tasks.Task{
		Name:     "retention",
		Interval: cfg.Series.MaintenanceInterval.Duration(),
		Run: func(ctx context.Context) error {
			bundle.RetainRecent()
			return nil
		},
	})
	grp.Go(srv.Run)

	if err := grp.Wait(); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
