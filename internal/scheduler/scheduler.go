// Package scheduler runs the background detection-and-dispatch loop
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/metrics"
	"github.com/pharmez/medimate/internal/notify"
	"github.com/pharmez/medimate/internal/reminder"
)

// Detector finds reminders due at a wall-clock instant
type Detector interface {
	FindDue(now time.Time) ([]reminder.Reminder, error)
}

// Dispatcher delivers a notification for one due reminder
type Dispatcher interface {
	Dispatch(ctx context.Context, r *reminder.Reminder, slot string) notify.Result
}

// Config holds loop settings
type Config struct {
	DispatchTimeout time.Duration // per-dispatch deadline
	MaxConcurrent   int           // concurrent dispatches per cycle
}

// Loop is the process-wide reminder loop. It has exactly two states,
// Stopped and Running: Start moves it to Running, Stop back to Stopped.
// The tick fires on the minute boundary, matching the minute-resolution
// due matching, and the loop is the sole writer of sent-notification
// side effects.
type Loop struct {
	config     Config
	detector   Detector
	dispatcher Dispatcher
	logger     *zap.Logger
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc

	mu      sync.RWMutex
	running bool
}

// New creates a new scheduler loop
func New(cfg Config, detector Detector, dispatcher Dispatcher, logger *zap.Logger) *Loop {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		config:     cfg,
		detector:   detector,
		dispatcher: dispatcher,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins ticking once per minute
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("scheduler already running")
	}

	l.cron = cron.New()
	if _, err := l.cron.AddFunc("* * * * *", l.runCycle); err != nil {
		return fmt.Errorf("failed to schedule reminder cycle: %w", err)
	}
	l.cron.Start()
	l.running = true

	l.logger.Info("Reminder scheduler started",
		zap.Duration("dispatch_timeout", l.config.DispatchTimeout),
		zap.Int("max_concurrent", l.config.MaxConcurrent),
	)
	return nil
}

// Stop halts the loop. An in-flight cycle is allowed to finish (every
// dispatch carries its own deadline); no new cycle begins afterwards.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	c := l.cron
	l.mu.Unlock()

	<-c.Stop().Done()
	l.cancel()
	l.logger.Info("Reminder scheduler stopped")
}

// IsRunning reports whether the loop is in the Running state
func (l *Loop) IsRunning() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.running
}

// runCycle performs one detection-and-dispatch cycle. Any panic or store
// error is contained here so the loop survives to the next tick.
func (l *Loop) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panic in reminder cycle", zap.Any("recover", r))
		}
	}()

	start := time.Now()
	defer func() {
		metrics.CyclesTotal.Inc()
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	now := time.Now()
	slot := now.Format(reminder.SlotLayout)

	due, err := l.detector.FindDue(now)
	if err != nil {
		l.logger.Error("Failed to find due reminders", zap.Error(err))
		return
	}
	metrics.RemindersDue.Set(float64(len(due)))
	if len(due) == 0 {
		return
	}

	// Bounded concurrency so one slow SMTP conversation cannot delay
	// the rest of the batch past the minute window
	sem := make(chan struct{}, l.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i := range due {
		wg.Add(1)
		sem <- struct{}{}

		go func(r *reminder.Reminder) {
			defer wg.Done()
			defer func() { <-sem }()
			l.dispatchOne(r, slot)
		}(&due[i])
	}

	wg.Wait()
}

func (l *Loop) dispatchOne(r *reminder.Reminder, slot string) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("Panic dispatching reminder",
				zap.String("reminder_id", r.ID),
				zap.Any("recover", rec),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(l.ctx, l.config.DispatchTimeout)
	defer cancel()

	result := l.dispatcher.Dispatch(ctx, r, slot)
	switch result.Status {
	case notify.StatusSent:
		l.logger.Info("Dose reminder sent",
			zap.String("reminder_id", r.ID),
			zap.String("medicine", r.MedicineName),
			zap.String("slot", slot),
		)
	case notify.StatusSkipped:
		l.logger.Debug("Dose reminder skipped",
			zap.String("reminder_id", r.ID),
			zap.String("reason", result.Reason),
		)
	case notify.StatusFailed:
		// Failures are logged and abandoned; no retry within the cycle
		l.logger.Error("Dose reminder dispatch failed",
			zap.String("reminder_id", r.ID),
			zap.String("medicine", r.MedicineName),
			zap.Error(result.Err),
		)
	}
}
