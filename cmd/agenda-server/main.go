package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/app"
	"github.com/agendamed/agenda/internal/config"
	"github.com/agendamed/agenda/internal/notify"
	"github.com/agendamed/agenda/internal/repository"
	"github.com/agendamed/agenda/internal/server"
	"github.com/agendamed/agenda/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool)
	if err != nil {
		logger.Fatal("init migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	migrator.Close()

	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)

	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	if cfg.RedisAddr != "" {
		rn := notify.NewRedisNotifier(cfg.RedisAddr, hub, logger)
		defer rn.Close()
		go rn.Listen(ctx)
		notifier = rn
		logger.Info("redis notifier enabled", zap.String("addr", cfg.RedisAddr))
	}

	schedule := service.NewScheduleService(slotRepo, bookingRepo, notifier, logger)
	bookings := service.NewBookingService(slotRepo, bookingRepo, notifier, logger)
	templates := service.NewTemplateService(templateRepo, slotRepo, schedule, notifier, logger)
	replication := service.NewReplicationService(slotRepo, schedule, logger)
	deletion := service.NewDeletionService(slotRepo, bookingRepo, notifier, logger)

	handler := server.NewHandler(schedule, bookings, templates, replication, deletion, logger)
	e := server.New(handler, pool, logger)

	go func() {
		logger.Info("starting agenda server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := e.Start(cfg.HTTPAddr); err != nil {
			logger.Info("http server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server", zap.Error(err))
	}
	logger.Info("agenda server stopped")
}
