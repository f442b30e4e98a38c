package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/company-management/internal/assetstore"
	"github.com/frahmantamala/company-management/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools",
	Long:  `Start and manage background worker pools.`,
}

var assetWorkerCmd = &cobra.Command{
	Use:   "assets",
	Short: "Start the asset cleanup worker pool",
	Long:  `Start the asset cleanup worker pool for background deletion of replaced logo assets`,
	Run: func(cmd *cobra.Command, args []string) {
		startAssetWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
)

func startAssetWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	store, err := assetstore.NewS3Store(context.Background(), config.Storage, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize asset store: %v\n", err)
		os.Exit(1)
	}

	cleanupConfig := assetstore.CleanupConfig{
		MaxWorkers:   getIntFlag(maxWorkers, config.Storage.CleanupWorker),
		JobQueueSize: getIntFlag(jobQueueSize, config.Storage.CleanupQueue),
	}

	log.Info("starting asset cleanup worker",
		"max_workers", cleanupConfig.MaxWorkers,
		"job_queue_size", cleanupConfig.JobQueueSize,
		"bucket", config.Storage.Bucket)

	pool := assetstore.NewCleanupPool(store, cleanupConfig, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("asset cleanup worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down asset cleanup worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("asset cleanup worker shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	assetWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	assetWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")

	workerCmd.AddCommand(assetWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
