package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/anjiri1684/travel_agency/configs"
	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/database"
	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/handlers"
	"github.com/anjiri1684/travel_agency/jobs"
	"github.com/anjiri1684/travel_agency/logging"
	"github.com/anjiri1684/travel_agency/notifications"
	"github.com/anjiri1684/travel_agency/payments"
	"github.com/anjiri1684/travel_agency/routes"
	"github.com/anjiri1684/travel_agency/services"
	"github.com/anjiri1684/travel_agency/storage"
	"github.com/anjiri1684/travel_agency/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "travel-agency-api"})

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	if err := database.SeedAdmin(ctx, db, cfg, log); err != nil {
		log.WithError(err).Error("Failed to seed admin user")
	}
	if err := database.SeedSettings(ctx, db, cfg); err != nil {
		log.WithError(err).Error("Failed to seed payment settings")
	}

	users := database.NewUserRepository(db)
	packages := database.NewPackageRepository(db)
	bookings := database.NewBookingRepository(db)
	ledger := database.NewPaymentRepository(db)
	forms := database.NewFormRepository(db)
	settingsRepo := database.NewSettingRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)

	settingsCache := services.NewSettingsCache(settingsRepo, cfg.SettingsTTL, log)

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	publisher, closePublishers := buildPublishers(ctx, cfg, log, hub, settingsCache)
	defer closePublishers()

	mailer := notifications.NewMailer(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, log)

	store, err := storage.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Object storage setup failed")
	}
	if store == nil {
		log.Warn("No object storage configured, vouchers will only be served on demand")
	}

	var renderer services.VoucherRenderer = services.PDFRenderer{}
	if cfg.PDFRenderer == "chromedp" {
		chrome, err := services.NewChromeRenderer(cfg.VoucherTemplate)
		if err != nil {
			log.WithError(err).Fatal("Failed to load voucher template")
		}
		renderer = chrome
	}

	authSvc := services.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL, log)
	packageSvc := services.NewPackageService(packages, log)
	bookingSvc := services.NewBookingService(bookings, packages, settingsCache, publisher, mailer, log)
	voucherSvc := services.NewVoucherService(bookings, renderer, store, settingsCache, mailer, log)
	paymentSvc := services.NewPaymentService(bookings, ledger, payments.NewRazorpayClient(cfg.GatewayBaseURL),
		settingsCache, publisher, mailer, voucherSvc, log)
	formSvc := services.NewFormService(forms, settingsCache, publisher, mailer, log)
	settingsSvc := services.NewSettingsService(settingsRepo, settingsCache, publisher, log)
	analyticsSvc := services.NewAnalyticsService(analyticsRepo, packages, users)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Add("expire-pending", jobs.ExpirySchedule, jobs.NewExpiryJob(bookings, settingsCache, publisher, log)); err != nil {
		log.WithError(err).Fatal("Failed to schedule expiry job")
	}
	if err := scheduler.Add("trip-reminders", jobs.ReminderSchedule, jobs.NewReminderJob(bookings, mailer, log)); err != nil {
		log.WithError(err).Fatal("Failed to schedule reminder job")
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:       cfg.AppName,
		CaseSensitive: true,
		StrictRouting: false,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  errorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Razorpay-Signature, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition, X-Request-Id",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))

	var signer handlers.UploadSigner
	if cs, ok := store.(*storage.CloudinaryStore); ok {
		signer = cs
	} else if cfg.CloudinaryURL != "" {
		cs, err := storage.NewCloudinaryStore(cfg.CloudinaryURL, "travel_agency")
		if err != nil {
			log.WithError(err).Error("Cloudinary upload signing disabled")
		} else {
			signer = cs
		}
	}

	routes.Setup(app, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, log),
		Packages: handlers.NewPackageHandler(packageSvc, log),
		Bookings: handlers.NewBookingHandler(bookingSvc, voucherSvc, log),
		Payments: handlers.NewPaymentHandler(paymentSvc, log),
		Forms:    handlers.NewFormHandler(formSvc, log),
		Admin:    handlers.NewAdminHandler(analyticsSvc, settingsSvc, log),
		Uploads:  handlers.NewUploadHandler(signer, log),
		LiveFeed: handlers.NewLiveFeedHandler(hub, log),
	}, routes.Options{
		JWTSecret:     cfg.JWTSecret,
		FormRateLimit: cfg.FormRateLimit,
		FormWindow:    time.Minute,
	})

	go func() {
		log.WithField("port", cfg.Port).Info("Server is running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// buildPublishers wires the event fan-out. With Redis configured, events travel through
// pub/sub so every instance's admin feed and settings cache sees them.
func buildPublishers(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger, hub *websocket.Hub, cache services.SettingsProvider) (events.Publisher, func()) {
	var (
		publishers []events.Publisher
		closers    []func() error
	)

	var client *redis.Client
	if cfg.RedisURL != "" {
		c, err := events.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Error("Redis unavailable, events stay local to this instance")
		} else {
			client = c
			closers = append(closers, c.Close)
		}
	}

	if client != nil {
		publishers = deliveryPublishers(ctx, events.NewRedisPublisher(client, events.DefaultChannel),
			func(handle func(events.Event)) error {
				return events.Subscribe(ctx, client, events.DefaultChannel, log, handle)
			}, hub, cache, log)
	} else {
		publishers = deliveryPublishers(ctx, nil, nil, hub, cache, log)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.WithError(err).Error("Kafka publisher disabled")
		} else {
			publishers = append(publishers, kafka)
			closers = append(closers, kafka.Close)
		}
	}

	return events.Multi(publishers...), func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.WithError(err).Warn("Failed to close event publisher")
			}
		}
	}
}

// deliveryPublishers decides how events reach this instance's admin feed and settings cache.
// With a live bus subscription every instance, this one included, is fed from the bus. Without
// a bus, or when subscribing fails, events are also delivered locally.
func deliveryPublishers(ctx context.Context, bus events.Publisher, subscribe func(func(events.Event)) error, hub events.Publisher, cache services.SettingsProvider, log logrus.FieldLogger) []events.Publisher {
	local := []events.Publisher{hub, events.PublisherFunc(func(_ context.Context, e events.Event) error {
		if e.Type == events.SettingsChanged {
			cache.Invalidate()
		}
		return nil
	})}
	if bus == nil {
		return local
	}

	err := subscribe(func(e events.Event) {
		if e.Type == events.SettingsChanged {
			cache.Invalidate()
			return
		}
		if err := hub.Publish(ctx, e); err != nil {
			log.WithError(err).Warn("Failed to forward event to live feed")
		}
	})
	if err != nil {
		log.WithError(err).Error("Event subscription failed, delivering events locally")
		return append([]events.Publisher{bus}, local...)
	}
	return []events.Publisher{bus}
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		errCode := apperrors.CodeInternal

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
			errCode = strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(code), " ", "_"))
		}
		if code >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"request_id": c.Locals("requestid"),
				"path":       c.Path(),
				"method":     c.Method(),
			}).WithError(err).Error("Unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{"error": message, "code": errCode})
	}
}
