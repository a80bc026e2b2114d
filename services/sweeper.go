package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bookmarket/logger"
)

// Expirer is implemented by ReservationService.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// Sweeper periodically expires pending reservations whose pickup deadline
// has passed. Without it nothing expires a reservation on its own; main only
// starts one when RESERVATION_SWEEP_SCHEDULE is set.
type Sweeper struct {
	cron    *cron.Cron
	expirer Expirer
}

// NewSweeper schedules the sweep with a standard five-field cron spec or a
// descriptor such as "@every 1h".
func NewSweeper(schedule string, expirer Expirer) (*Sweeper, error) {
	log := cronLogger{logger.L().Sugar().Named("sweeper")}
	s := &Sweeper{
		cron: cron.New(cron.WithChain(
			cron.Recover(log),
			cron.SkipIfStillRunning(log),
		)),
		expirer: expirer,
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() { s.cron.Start() }

// Stop waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Sweep runs one pass.
func (s *Sweeper) Sweep() {
	n, err := s.expirer.ExpireOverdue(context.Background())
	if err != nil {
		logger.L().Error("reservation sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.L().Info("expired overdue reservations", zap.Int64("count", n))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
