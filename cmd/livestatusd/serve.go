package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/livestatus/pkg/config"
	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/feed"
	"github.com/cuemby/livestatus/pkg/livestatus"
	"github.com/cuemby/livestatus/pkg/log"
	"github.com/cuemby/livestatus/pkg/metrics"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the livestatus server",
	Long: `Run the livestatus server.

State is built from the configured feed sources: a replay file applied at
start, a TCP listener accepting JSON-line records, and a monitoring log
file followed for log lines. Flags override values from --config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// The config file may set logging; flags given explicitly win
		level, _ := cmd.Flags().GetString("log-level")
		jsonOut, _ := cmd.Flags().GetBool("log-json")
		if !cmd.Flags().Changed("log-level") {
			level = cfg.Log.Level
		}
		if !cmd.Flags().Changed("log-json") {
			jsonOut = cfg.Log.JSON
		}
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: lvl, JSONOutput: jsonOut})

		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to YAML config file")
	serveCmd.Flags().String("listen", "", "TCP address for queries (default "+config.DefaultListen+")")
	serveCmd.Flags().String("socket", "", "Unix socket path for queries")
	serveCmd.Flags().String("feed-listen", "", "TCP address accepting JSON-line feed records")
	serveCmd.Flags().String("feed-file", "", "JSON-line feed file replayed at start")
	serveCmd.Flags().String("tail-log", "", "Monitoring log file to follow")
	serveCmd.Flags().String("metrics-listen", "", "Address for /metrics and /health (default "+config.DefaultMetricsListen+")")
	serveCmd.Flags().String("pnp-path", "", "PNP4Nagios perfdata directory")
	serveCmd.Flags().String("log-archive", "", "BoltDB file archiving the log table")
	serveCmd.Flags().Int("max-log-events", 0, "Maximum log events kept in memory (0 = unbounded)")
}

// loadConfig reads --config (if any) and applies explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	for flag, dst := range map[string]*string{
		"listen":         &cfg.Listen,
		"socket":         &cfg.Socket,
		"feed-listen":    &cfg.Feed.Listen,
		"feed-file":      &cfg.Feed.File,
		"tail-log":       &cfg.Feed.TailLog,
		"metrics-listen": &cfg.Metrics.Listen,
		"pnp-path":       &cfg.PnpPath,
		"log-archive":    &cfg.LogArchive,
	} {
		if flags.Changed(flag) {
			*dst, _ = flags.GetString(flag)
		}
	}
	if flags.Changed("max-log-events") {
		cfg.MaxLogEvents, _ = flags.GetInt("max-log-events")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(cfg *config.Config) error {
	logger := log.WithComponent("livestatusd")

	metrics.SetVersion(Version)
	metrics.RegisterComponent("store", false, "starting")
	metrics.RegisterComponent("feed", false, "starting")
	metrics.RegisterComponent("livestatus", false, "starting")

	var logStore store.LogStore = store.NewMemoryLogStore(cfg.MaxLogEvents)
	if cfg.LogArchive != "" {
		archive, err := store.NewBoltLogStore(cfg.LogArchive, cfg.MaxLogEvents)
		if err != nil {
			return err
		}
		logStore = archive
	}

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	st := store.New(store.WithLogStore(logStore), store.WithBroker(broker))
	defer st.Close()
	metrics.UpdateComponent("store", true, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go trackFeed(ctx, broker)

	// Feed sources
	consumer := feed.NewConsumer(st)
	if cfg.Feed.File != "" {
		if _, err := consumer.ReplayFile(ctx, cfg.Feed.File); err != nil {
			return err
		}
	}
	if cfg.Feed.Listen != "" {
		listener := feed.NewListener(consumer, cfg.Feed.Listen)
		if err := listener.Start(ctx); err != nil {
			return err
		}
		defer listener.Stop()
	}
	if cfg.Feed.TailLog != "" {
		go func() {
			if err := consumer.TailLog(ctx, cfg.Feed.TailLog, false); err != nil {
				logger.Error().Err(err).Msg("Log tail stopped")
			}
		}()
	}
	metrics.UpdateComponent("feed", true, "")

	// Query server
	engine := livestatus.NewEngine(st, &livestatus.EngineConfig{PnpPath: cfg.PnpPath})
	server := livestatus.NewServer(engine, &livestatus.Config{
		ListenAddr: cfg.Listen,
		SocketPath: cfg.Socket,
	})
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()
	metrics.UpdateComponent("livestatus", true, "")

	// Metrics
	collector := metrics.NewCollector(st)
	collector.Start()
	defer collector.Stop()

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           metrics.NewMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	logger.Info().
		Str("listen", cfg.Listen).
		Str("socket", cfg.Socket).
		Str("metrics", cfg.Metrics.Listen).
		Msg("livestatusd is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		logger.Info().Msg("Shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Metrics server shutdown failed")
	}
	return runErr
}

// trackFeed reflects the latest store notification in the feed health
// component
func trackFeed(ctx context.Context, broker *events.Broker) {
	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub:
			if !ok {
				return
			}
			msg := fmt.Sprintf("last event %s %s", n.Type, n.Key)
			if n.Rejected {
				msg += " rejected: " + n.Message
			}
			metrics.UpdateComponent("feed", true, msg)
		}
	}
}
