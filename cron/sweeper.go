package cron

import (
	"context"
	"log"
	"time"

	"coachbook/config"
	bookingRepo "coachbook/database/repository/booking"
	"coachbook/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypePendingSweep = "booking:sweep_pending"

// InitPendingSweeper runs the async worker that reconciles orphaned pending
// bookings: records created to reserve a slot whose payment never completed
// and whose compensating cancellation failed. The saga never retries a failed
// cancellation itself; this sweep is where orphans get released.
func InitPendingSweeper(repo bookingRepo.BookingRepository, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweeperDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePendingSweep, handlePendingSweep(repo, logger))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypePendingSweep, nil)); err != nil {
		log.Fatalf("[PendingSweeper] failed to register sweep schedule: %v", err)
	}

	go func() {
		log.Println("[PendingSweeper] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[PendingSweeper] failed to start worker: %v", err)
		}
	}()
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[PendingSweeper] failed to start scheduler: %v", err)
		}
	}()
}

func handlePendingSweep(repo bookingRepo.BookingRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		ttl := time.Duration(config.AppConfig.PendingBookingTTLMinutes) * time.Minute
		cutoff := time.Now().UTC().Add(-ttl)

		stale, err := repo.FindStalePending(ctx, cutoff)
		if err != nil {
			logger.Error("pending sweep query failed", zap.Error(err))
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		cancelled := 0
		for _, b := range stale {
			if b.Status != models.BookingStatusPending {
				continue
			}
			if err := repo.Cancel(ctx, b.ID); err != nil {
				logger.Error("failed to cancel orphaned pending booking",
					zap.String("bookingId", b.ID), zap.Error(err))
				continue
			}
			cancelled++
		}

		logger.Info("pending sweep complete",
			zap.Int("stale", len(stale)),
			zap.Int("cancelled", cancelled),
		)
		return nil
	}
}
