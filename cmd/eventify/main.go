package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventify/internal/auth"
	authapi "eventify/internal/auth/api"
	"eventify/internal/checkout"
	checkoutapi "eventify/internal/checkout/api"
	checkoutredis "eventify/internal/checkout/redis"
	"eventify/internal/config"
	"eventify/internal/database/migrations"
	"eventify/internal/events"
	eventsapi "eventify/internal/events/api"
	eventsdb "eventify/internal/events/db"
	"eventify/internal/kafka"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/notify"
	notifyapi "eventify/internal/notify/api"
	"eventify/internal/payments/storage"
	qrapi "eventify/internal/qr/api"
	"eventify/internal/registration"
	registrationapi "eventify/internal/registration/api"
	registrationdb "eventify/internal/registration/db"
	"eventify/internal/users"
	"eventify/internal/wallet"
	walletapi "eventify/internal/wallet/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *sql.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")
	return sqldb
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Eventify initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	sqldb := connectPostgres(cfg.Database, log)
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	if err := migrations.Run(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	log.Info("DATABASE", "Schema migrations applied")

	paymentStore, err := storage.NewPostgreSQLStore(sqldb, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Payment storage init failed: %v", err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))
	} else {
		log.Info("KAFKA", "Kafka disabled, event publishing off")
	}

	processor, err := checkout.NewStripeProcessor(cfg.Stripe, log)
	if err != nil {
		log.Fatal("STRIPE", fmt.Sprintf("Stripe initialization failed: %v", err))
	}

	userDB := &users.DB{Bun: bunDB}
	rsvpDB := &registrationdb.DB{Bun: bunDB}
	eventStore := &eventsdb.DB{Bun: bunDB}
	notifier := &notify.Notifier{Bun: bunDB}
	mailer := notify.NewEmailSender(cfg.Email, log)
	dispatcher := notify.NewDispatcher(log)
	ledger := &wallet.Ledger{Bun: bunDB}

	eventService := events.NewService(eventStore, log)

	registrationService := &registration.Service{
		Events:     eventStore,
		RSVPs:      rsvpDB,
		Users:      userDB,
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Notifier:   notifier,
		Logger:     log,
	}

	checkoutService := &checkout.Service{
		Events:     eventStore,
		RSVPs:      rsvpDB,
		Users:      userDB,
		Payments:   paymentStore,
		Processor:  processor,
		Lock:       checkoutredis.NewLock(redisClient),
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Notifier:   notifier,
		Logger:     log,
		Cfg:        cfg,
	}
	if producer != nil {
		registrationService.Publisher = producer
		checkoutService.Publisher = producer
	}

	authHandler := authapi.NewHandler(userDB, cfg.JWT, log)
	eventHandler := eventsapi.NewHandler(eventService, log)
	registrationHandler := registrationapi.NewHandler(registrationService, log)
	checkoutHandler := checkoutapi.NewHandler(checkoutService, log)
	notifyHandler := notifyapi.NewHandler(notifier, log)
	qrHandler := qrapi.NewHandler(rsvpDB, eventStore, log)
	walletHandler := walletapi.NewHandler(ledger, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Post("/api/v1/auth/register", authHandler.Register)
	r.Post("/api/v1/auth/login", authHandler.Login)
	r.Get("/api/v1/events", eventHandler.ListEvents)
	r.Get("/api/v1/qr/validate/{rsvpId}", qrHandler.Validate)

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWT))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/auth/me", authHandler.Me)
			r.Get("/wallet", walletHandler.Balance)

			r.Route("/events", func(r chi.Router) {
				r.Post("/", eventHandler.CreateEvent)
				r.Get("/{eventId}", eventHandler.GetEvent)
				r.Put("/{eventId}", eventHandler.UpdateEvent)
				r.Delete("/{eventId}", eventHandler.DeleteEvent)

				r.Post("/{eventId}/register", registrationHandler.Register)
				r.Delete("/{eventId}/register", registrationHandler.Cancel)
				r.Post("/{eventId}/checkout", checkoutHandler.StartCheckout)
				r.Get("/{eventId}/ticket", qrHandler.Ticket)
			})

			r.Get("/registrations", registrationHandler.ListMine)
			r.Get("/payments", checkoutHandler.ListMyPayments)
			r.Get("/payments/success", checkoutHandler.PaymentSuccess)
			r.Get("/payments/cancel", checkoutHandler.PaymentCancel)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifyHandler.List)
				r.Get("/unread", notifyHandler.UnreadCount)
				r.Put("/read", notifyHandler.MarkAllRead)
				r.Put("/{notificationId}/read", notifyHandler.MarkRead)
				r.Delete("/{notificationId}", notifyHandler.Delete)
			})

			// --- Admin Routes ---
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Get("/events/pending", eventHandler.ListPending)
				r.Put("/events/{eventId}/approve", eventHandler.ApproveEvent)
				r.Put("/events/{eventId}/reject", eventHandler.RejectEvent)
				r.Put("/events/approve-all", eventHandler.ApproveAll)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Eventify running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Eventify shutdown complete")
	}
}
