package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/internal/api"
	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/refresh"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/cache"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		store, err := dataset.LoadDir(cfg.DataDir)
		if err != nil {
			return err
		}
		log.WithField("fingerprint", store.Fingerprint()).Info("Datasets loaded")

		redisClient := cache.NewClient(cfg, log)
		defer redisClient.Close()
		if err := redisClient.Ping(cmd.Context()); err != nil {
			log.WithError(err).Warn("Redis unreachable, score cache degrades to misses")
		}

		registry := prometheus.NewRegistry()
		metrics := api.NewMetrics(registry)

		var gatherer prometheus.Gatherer
		if cfg.MetricsEnabled {
			gatherer = registry
		}

		state := api.NewState(
			store,
			scoring.NewEngine(log),
			strategy.NewRegistry(),
			api.NewScoreCache(redisClient, cfg.CacheTTL, log),
			metrics,
			log,
		)

		scheduler := refresh.New(log)
		err = scheduler.Schedule(cfg.RefreshCron, func() error {
			fresh, err := dataset.LoadDir(cfg.DataDir)
			if err != nil {
				return err
			}
			state.SwapStore(fresh)
			return nil
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()

		router := api.NewRouter(api.NewHandler(state), metrics, gatherer, log)
		server := api.New(cfg, log, router)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			log.WithField("signal", sig.String()).Info("Shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT)")

	rootCmd.AddCommand(serveCmd)
}
