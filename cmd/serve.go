package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rebk-studio/ms-go-studio/app/cache"
	"github.com/rebk-studio/ms-go-studio/app/controller"
	"github.com/rebk-studio/ms-go-studio/app/mailer"
	"github.com/rebk-studio/ms-go-studio/app/media"
	"github.com/rebk-studio/ms-go-studio/app/repository"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server exposing the gallery, staff, and webhook endpoints.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, services, cleanup := mustCreateServices()
	defer cleanup()

	webhookController := controller.NewWebhookController(services.payments)
	galleryController := controller.NewGalleryController(services.gallery, services.galleryCache)

	e := setupHTTPServer(cfg, webhookController, galleryController, services.users)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	webhookController *controller.WebhookController,
	galleryController *controller.GalleryController,
	userRepo *repository.UserRepository,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", webhookController.Health)

	gallery := e.Group("/gallery")
	gallery.GET("", galleryController.Menu)
	gallery.GET("/albums/:slug", galleryController.Album)
	gallery.GET("/images", galleryController.Images)

	staff := e.Group("/staff", controller.StaffGate(userRepo, cfg.App.PermissionDeniedURL))
	staff.GET("/albums", galleryController.ListCategories)
	staff.POST("/albums", galleryController.SaveCategories)
	staff.POST("/albums/:id", galleryController.UpdateCategory)

	webhooks := e.Group("/webhooks")
	webhooks.POST("/paypal/ipn", webhookController.PaypalIPN)

	return e
}

// galleryCacheOrNil keeps a disabled cache out of the service's interface
// value; a typed nil pointer would defeat its nil check.
func galleryCacheOrNil(c *cache.GalleryCache) interface{ Flush(ctx context.Context) } {
	if c == nil {
		return nil
	}
	return c
}

type appServices struct {
	payments     *service.PaymentService
	gallery      *service.GalleryService
	users        *repository.UserRepository
	galleryCache *cache.GalleryCache
}

func mustCreateServices() (*config.Config, *appServices, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	orderRepo := repository.NewOrderRepository(db)
	txnRepo := repository.NewOrderTransactionRepository(db)
	notificationRepo := repository.NewPaymentNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	imageRepo := repository.NewImageRepository(db)

	var mailSender mailer.Sender
	if cfg.Mail.SMTPHost != "" {
		mailSender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		mailSender = mailer.NewLogSender()
	}

	var rdb *redis.Client
	var galleryCache *cache.GalleryCache
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		galleryCache = cache.NewGalleryCache(rdb, cfg.Redis.CacheTTL)
	}

	mediaStore := media.NewStore(cfg.Media.Root)

	paymentService := service.NewPaymentService(
		orderRepo,
		txnRepo,
		notificationRepo,
		activityRepo,
		userRepo,
		voucherRepo,
		mailSender,
		cfg.Mail,
	)
	galleryService := service.NewGalleryService(
		categoryRepo,
		imageRepo,
		activityRepo,
		mediaStore,
		galleryCacheOrNil(galleryCache),
	)

	cleanup := func() {
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	services := &appServices{
		payments:     paymentService,
		gallery:      galleryService,
		users:        userRepo,
		galleryCache: galleryCache,
	}

	return cfg, services, cleanup
}
