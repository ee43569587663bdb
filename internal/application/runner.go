// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package application orchestrates package operations: it drives the
// coordinator state machine with real pollers and exposes results to the CLI
// and TUI.
package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/flowdeck/flowdeck/internal/domain"
)

// Timings configures the runner's polling cadence.
type Timings struct {
	StatusInterval   time.Duration
	HealthInterval   time.Duration
	SettleDelay      time.Duration
	OperationTimeout time.Duration
}

// DefaultTimings returns the standard polling cadence.
func DefaultTimings() Timings {
	return Timings{
		StatusInterval:   3 * time.Second,
		HealthInterval:   2 * time.Second,
		SettleDelay:      domain.DefaultSettleDelay,
		OperationTimeout: domain.DefaultOperationTimeout,
	}
}

// Update is one observable step of a running operation. The final update of
// a run carries the outcome; intermediate ones report phase and elapsed time.
type Update struct {
	Phase        domain.Phase
	Operation    domain.Operation
	Elapsed      time.Duration
	Notification *domain.NotificationEvent
	Outcome      *domain.Outcome
}

// Runner executes one package operation at a time. It owns the tickers, the
// in-process installing flag and the cross-process lock; the coordinator
// inside stays pure and is only ever touched from the run goroutine.
type Runner struct {
	packages domain.PackagesClient
	health   domain.HealthClient
	notifier domain.Notifier
	lock     domain.InstanceLock
	timings  Timings

	installing atomic.Bool
}

// NewRunner creates a runner. The notifier and lock may be nil when the
// caller handles notification and locking itself.
func NewRunner(packages domain.PackagesClient, health domain.HealthClient, notifier domain.Notifier, lock domain.InstanceLock, timings Timings) *Runner {
	if timings.StatusInterval <= 0 {
		timings.StatusInterval = DefaultTimings().StatusInterval
	}

	if timings.HealthInterval <= 0 {
		timings.HealthInterval = DefaultTimings().HealthInterval
	}

	return &Runner{
		packages: packages,
		health:   health,
		notifier: notifier,
		lock:     lock,
		timings:  timings,
	}
}

// Installing reports whether an operation is currently in flight. Reads are
// advisory, used to disable conflicting actions in the UI.
func (r *Runner) Installing() bool {
	return r.installing.Load()
}

// Start begins an operation and returns a channel of updates. The channel is
// closed after the final update, which always carries the outcome unless the
// context was canceled first. Only one operation can run at a time.
func (r *Runner) Start(ctx context.Context, op domain.Operation) (<-chan Update, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: kind=%s key=%q", domain.ErrInvalidOperation, op.Kind, op.Key)
	}

	if !r.installing.CompareAndSwap(false, true) {
		return nil, domain.ErrOperationInFlight
	}

	if r.lock != nil {
		if err := r.lock.TryAcquire(); err != nil {
			r.installing.Store(false)

			return nil, err
		}
	}

	updates := make(chan Update, 1)

	go r.run(ctx, op, updates)

	return updates, nil
}

// Run executes an operation synchronously and returns its outcome. A nil
// outcome with a nil error means the context was canceled before
// reconciliation.
func (r *Runner) Run(ctx context.Context, op domain.Operation) (*domain.Outcome, error) {
	updates, err := r.Start(ctx, op)
	if err != nil {
		return nil, err
	}

	var outcome *domain.Outcome

	for update := range updates {
		if update.Outcome != nil {
			outcome = update.Outcome
		}
	}

	return outcome, nil
}

func (r *Runner) run(ctx context.Context, op domain.Operation, updates chan<- Update) {
	defer close(updates)
	defer r.installing.Store(false)

	if r.lock != nil {
		defer func() { _ = r.lock.Release() }()
	}

	coord := domain.NewCoordinator(r.timings.OperationTimeout, r.timings.SettleDelay)
	_ = coord.Begin(op, time.Now())

	r.publish(updates, coord, nil)

	if event := r.submit(ctx, coord, op); event != nil || coord.Phase() == domain.PhaseReconciled {
		r.finish(updates, coord, event)

		return
	}

	r.publish(updates, coord, nil)

	statusTicker := time.NewTicker(r.timings.StatusInterval)
	defer statusTicker.Stop()

	healthTicker := time.NewTicker(r.timings.HealthInterval)
	defer healthTicker.Stop()

	for coord.Busy() {
		select {
		case <-ctx.Done():
			// Canceled mid-flight. No outcome, no notification; the
			// backend finishes on its own.
			return

		case <-statusTicker.C:
			event := r.pollStatus(ctx, coord)
			if event == nil {
				event = coord.Tick(time.Now())
			}

			if event != nil || !coord.Busy() {
				r.finish(updates, coord, event)

				return
			}

			r.publish(updates, coord, nil)

		case <-healthTicker.C:
			event := r.probeHealth(ctx, coord)
			if event == nil {
				event = coord.Tick(time.Now())
			}

			if event != nil || !coord.Busy() {
				r.finish(updates, coord, event)

				return
			}

			r.publish(updates, coord, nil)
		}
	}
}

// submit sends the operation to the backend and feeds the result into the
// coordinator. Returns a notification event when submission itself failed.
func (r *Runner) submit(ctx context.Context, coord *domain.Coordinator, op domain.Operation) *domain.NotificationEvent {
	var err error

	switch op.Kind {
	case domain.KindInstall:
		err = r.packages.Install(ctx, op.Key)
	case domain.KindUninstall:
		err = r.packages.Uninstall(ctx, op.Key)
	case domain.KindRestore:
		err = r.packages.Restore(ctx)
	default:
		err = fmt.Errorf("%w: kind=%s", domain.ErrInvalidOperation, op.Kind)
	}

	if err != nil {
		return coord.SubmitFailed(err.Error())
	}

	coord.SubmitAccepted()

	return nil
}

// pollStatus performs one status poll. A failed poll is transient and feeds
// nothing into the coordinator; the next tick retries.
func (r *Runner) pollStatus(ctx context.Context, coord *domain.Coordinator) *domain.NotificationEvent {
	pollCtx, cancel := context.WithTimeout(ctx, r.timings.StatusInterval)
	defer cancel()

	status, err := r.packages.InstallStatus(pollCtx)
	if err != nil || status.LastResult == nil {
		return nil
	}

	return coord.ObserveStatus(*status.LastResult, time.Now())
}

// probeHealth performs one liveness probe and feeds the result in.
func (r *Runner) probeHealth(ctx context.Context, coord *domain.Coordinator) *domain.NotificationEvent {
	probeCtx, cancel := context.WithTimeout(ctx, r.timings.HealthInterval)
	defer cancel()

	err := r.health.Health(probeCtx)

	return coord.ObserveHealth(domain.HealthSnapshot{Reachable: err == nil}, time.Now())
}

// finish emits the notification, publishes the final update and resets the
// coordinator.
func (r *Runner) finish(updates chan<- Update, coord *domain.Coordinator, event *domain.NotificationEvent) {
	if event != nil && r.notifier != nil {
		r.notifier.Notify(*event)
	}

	outcome := coord.Outcome()

	// The final update blocks until delivered; consumers read the channel
	// to completion.
	updates <- Update{
		Phase:        coord.Phase(),
		Operation:    coord.Operation(),
		Elapsed:      coord.Elapsed(time.Now()),
		Notification: event,
		Outcome:      outcome,
	}

	coord.Acknowledge()
}

// publish sends a progress update without blocking; a slow consumer just
// misses intermediate states.
func (r *Runner) publish(updates chan<- Update, coord *domain.Coordinator, event *domain.NotificationEvent) {
	update := Update{
		Phase:        coord.Phase(),
		Operation:    coord.Operation(),
		Elapsed:      coord.Elapsed(time.Now()),
		Notification: event,
	}

	select {
	case updates <- update:
	default:
	}
}
