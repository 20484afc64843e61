package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/token-ledger/backend/internal/catalog"
	"github.com/token-ledger/backend/internal/config"
	"github.com/token-ledger/backend/internal/db"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("worker started with the memory store, it will not see API state")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store backend", zap.Error(err))
	}
	defer backend.Close()

	var publisher events.Publisher = events.NewLogPublisher(log)
	if backend.Redis != nil {
		publisher = events.NewRedisPublisher(backend.Redis, cfg.RedisPrefix)
	}

	clock := clockwork.NewRealClock()
	ledger, err := services.NewLedger(backend.Store, publisher, cfg, catalog.Default(), clock, log)
	if err != nil {
		log.Fatal("failed to build ledger", zap.Error(err))
	}

	sched, err := newScheduler(ctx, clock, ledger.Installments, cfg, log)
	if err != nil {
		log.Fatal("failed to create scheduler", zap.Error(err))
	}
	sched.Start()
	log.Info("worker started",
		zap.Duration("reminder_interval", cfg.ReminderInterval),
		zap.Duration("reminder_window", cfg.ReminderWindow),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	cancel()
	if err := sched.Shutdown(); err != nil {
		log.Error("scheduler shutdown failed", zap.Error(err))
	}
}

// reminderSender is the part of the installment ledger the worker drives.
type reminderSender interface {
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

// newScheduler registers the installment reminder scan. Runs never overlap:
// a slow scan pushes the next one back instead of stacking up.
func newScheduler(ctx context.Context, clock clockwork.Clock, installments reminderSender, cfg *config.Config, log *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(cronLogger{log.Sugar()}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.ReminderInterval),
		gocron.NewTask(func() {
			runReminders(ctx, installments, cfg, log)
		}),
		gocron.WithName("installment-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	return sched, nil
}

func runReminders(ctx context.Context, installments reminderSender, cfg *config.Config, log *zap.Logger) {
	sent, err := installments.SendReminders(ctx, cfg.ReminderWindow)
	if err != nil {
		log.Error("installment reminder scan failed", zap.Error(err))
		return
	}
	if sent > 0 {
		log.Info("installment reminders sent", zap.Int("count", sent))
	}
}

// cronLogger adapts zap to gocron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l cronLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
func (l cronLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l cronLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
