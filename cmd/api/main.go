package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sonusk4/consult-sub001/internal/api"
	"github.com/Sonusk4/consult-sub001/internal/auth"
	"github.com/Sonusk4/consult-sub001/internal/booking"
	"github.com/Sonusk4/consult-sub001/internal/config"
	"github.com/Sonusk4/consult-sub001/internal/db"
	"github.com/Sonusk4/consult-sub001/internal/ledger"
	"github.com/Sonusk4/consult-sub001/internal/logger"
	"github.com/Sonusk4/consult-sub001/internal/metrics"
	"github.com/Sonusk4/consult-sub001/internal/notify"
	"github.com/Sonusk4/consult-sub001/internal/payments"
	"github.com/Sonusk4/consult-sub001/internal/realtime"
	"github.com/Sonusk4/consult-sub001/internal/repository/postgres"
	"github.com/Sonusk4/consult-sub001/internal/services"
	"github.com/Sonusk4/consult-sub001/internal/slots"
	"github.com/Sonusk4/consult-sub001/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		15*time.Minute, 7*24*time.Hour)

	userSvc := services.NewUserService(repos.Users)
	ledgerSvc := ledger.NewService(repos.Ledger)
	slotReg := slots.NewRegistry(repos.Slots)
	bookingSvc := booking.NewService(repos.Bookings, repos.Users, wp)
	paymentSvc := payments.NewService(repos.PaymentOrders, cfg.PaymentWebhookSecret, wp)

	hub := realtime.NewHub(bookingSvc, repos.Messages, tm)
	bookingSvc.SetBroadcaster(hub)
	go hub.Run()
	defer hub.Stop()

	if cfg.AMQPURL != "" {
		notifier, err := notify.NewAMQP(cfg.AMQPURL, cfg.NotifyExchange)
		if err != nil {
			log.Error("amqp connect", "err", err)
			os.Exit(1)
		}
		defer notifier.Close()
		bookingSvc.SetNotifier(notifier)
		paymentSvc.SetNotifier(notifier)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:      cfg,
		TM:       tm,
		Users:    userSvc,
		Ledger:   ledgerSvc,
		Slots:    slotReg,
		Bookings: bookingSvc,
		Payments: paymentSvc,
		Messages: repos.Messages,
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
