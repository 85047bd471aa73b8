package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/config"
)

var (
	workerMode bool
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Run media storage related commands",
}

var mediaPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored media files no longer referenced by any picture",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"media_prune",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.MediaPruneInterval },
			func(s *service.GalleryService, ctx context.Context) error {
				removed, err := s.RunMediaPruneBatch(ctx)
				if err != nil {
					return err
				}
				logrus.WithField("removed", removed).Info("media_prune_batch")
				return nil
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaPruneCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.GalleryService, ctx context.Context) error,
) {
	cfg, services, cleanup := mustCreateServices()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), services.gallery, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(services.gallery, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	galleryService *service.GalleryService,
	fn func(s *service.GalleryService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(galleryService, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(galleryService, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
