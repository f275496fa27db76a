package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/pitstop/garage-bookings/internal/database"
	"github.com/pitstop/garage-bookings/internal/handlers"
	"github.com/pitstop/garage-bookings/internal/notify"
	"github.com/pitstop/garage-bookings/internal/repository"
	"github.com/pitstop/garage-bookings/internal/service"
	"github.com/pitstop/garage-bookings/pkg/config"
	"github.com/pitstop/garage-bookings/pkg/events"
	"github.com/pitstop/garage-bookings/pkg/logger"
	mw "github.com/pitstop/garage-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := database.Initialize(ctx, db); err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Event bus: NATS when configured, otherwise an in-process bus so
	// notification intents still reach the notify consumer.
	var bus events.EventBus
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		bus = natsBus
	} else {
		bus = events.NewLocalEventBus()
	}
	defer bus.Close()

	var notifier notify.Notifier
	if cfg.Notify.DevMode {
		notifier = notify.NewLogNotifier()
	} else {
		msNotifier, err := notify.NewMailerSendNotifier(
			cfg.Notify.MailerSendKey, cfg.Notify.FromName, cfg.Notify.FromEmail)
		if err != nil {
			logger.Error("Failed to configure mailer", "error", err)
			os.Exit(1)
		}
		notifier = msNotifier
	}
	if err := notify.NewConsumer(notifier).Start(bus); err != nil {
		logger.Error("Failed to start notify consumer", "error", err)
		os.Exit(1)
	}

	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	bookingService := service.NewBookingService(bookingRepo, userRepo, bus)
	authService := service.NewAuthService(userRepo, cfg)

	h := handlers.New(bookingService, authService, db, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting garage bookings server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
