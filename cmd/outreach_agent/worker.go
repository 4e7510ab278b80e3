package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/pipeline"
	"github.com/jonathan/outreach-pipeline/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline stages against the event bus",
	Long:  "Subscribe the query parsing and variation generation stages to NATS and serve health, metrics, job status and intake over HTTP until interrupted.",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireWorker(); err != nil {
		return err
	}
	log := zap.S().Named("worker")
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	adapter, closeAdapter, err := newAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAdapter()

	events, err := bus.Connect(cfg.NATSURL,
		bus.WithQueue(cfg.NATSQueue),
		bus.WithHandlerTimeout(cfg.HandlerTimeout),
	)
	if err != nil {
		return err
	}
	defer events.Close()

	queryStage := pipeline.NewQueryStage(database, adapter, events, pipeline.WithSmartDorks(cfg.SmartDorks))
	variationStage := pipeline.NewVariationStage(database, adapter, events, pipeline.WithReadyStatus(cfg.EmailReadyStatus))
	if err := pipeline.NewOrchestrator(queryStage, variationStage).Register(events); err != nil {
		return err
	}

	httpServer := server.New(server.Config{Addr: cfg.MetricsAddr}, database, events)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			log.Errorw("http server stopped", "error", err)
		}
	}()

	log.Infow("worker started", "nats", cfg.NATSURL, "queue", cfg.NATSQueue, "http", cfg.MetricsAddr)
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
