// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"fmt"
	"time"
)

// Phase is the coordinator's position in an operation's lifecycle.
type Phase int

// Coordinator phases.
const (
	// PhaseIdle means no operation is in flight.
	PhaseIdle Phase = iota
	// PhaseSubmitting means the submit request has been sent but not
	// yet acknowledged.
	PhaseSubmitting
	// PhaseAwaitingResult means the backend accepted the operation and
	// the coordinator is polling for a terminal status.
	PhaseAwaitingResult
	// PhaseBackendRestarting means the backend went unreachable during a
	// restore and the coordinator is waiting for it to come back.
	PhaseBackendRestarting
	// PhaseReconciled means a terminal outcome was reached this cycle.
	PhaseReconciled
)

// String returns the phase name for logs and tests.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingResult:
		return "awaiting-result"
	case PhaseBackendRestarting:
		return "backend-restarting"
	case PhaseReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a reconciled operation.
type Outcome struct {
	Operation Operation
	Status    Status
	Message   string
	TimedOut  bool
}

// Succeeded reports whether the outcome is a success for its operation kind.
func (o Outcome) Succeeded() bool {
	switch o.Status {
	case StatusCompleted, StatusUninstalled:
		return true
	case StatusUnknown, StatusPending, StatusFailed:
		return false
	default:
		return false
	}
}

// Coordinator drives one package operation from submission to a single
// reconciled outcome. It is a pure state machine: every input carries an
// explicit timestamp, it owns no timers and performs no I/O, and all methods
// must be called from one goroutine.
type Coordinator struct {
	phase   Phase
	op      Operation
	started time.Time
	outcome *Outcome

	sawUnreachable bool
	reachable      bool
	backUpAt       time.Time

	timeout     time.Duration
	settleDelay time.Duration

	// notified holds key+status pairs already surfaced to the user, so a
	// repeated terminal poll never produces a second notification.
	notified map[string]bool
}

// Default coordinator timings.
const (
	DefaultOperationTimeout = 60 * time.Second
	DefaultSettleDelay      = 2 * time.Second
)

// NewCoordinator creates an idle coordinator. Non-positive timings fall back
// to the defaults.
func NewCoordinator(timeout, settleDelay time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}

	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	return &Coordinator{
		phase:       PhaseIdle,
		timeout:     timeout,
		settleDelay: settleDelay,
		reachable:   true,
		notified:    make(map[string]bool),
	}
}

// Phase returns the current lifecycle phase.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// Operation returns the in-flight operation. Only meaningful outside
// PhaseIdle.
func (c *Coordinator) Operation() Operation {
	return c.op
}

// Outcome returns the reconciled outcome, or nil before reconciliation.
func (c *Coordinator) Outcome() *Outcome {
	return c.outcome
}

// Busy reports whether an operation is currently in flight.
func (c *Coordinator) Busy() bool {
	return c.phase == PhaseSubmitting || c.phase == PhaseAwaitingResult || c.phase == PhaseBackendRestarting
}

// Begin starts tracking an operation. It is an error to begin while another
// operation is in flight.
func (c *Coordinator) Begin(op Operation, now time.Time) error {
	if c.Busy() {
		return fmt.Errorf("%w: %s already in flight", ErrOperationInFlight, c.op.Key)
	}

	if !op.IsValid() {
		return fmt.Errorf("%w: kind=%s key=%q", ErrInvalidOperation, op.Kind, op.Key)
	}

	c.phase = PhaseSubmitting
	c.op = op
	c.started = now
	c.outcome = nil
	c.sawUnreachable = false
	c.reachable = true
	c.backUpAt = time.Time{}
	// Dedupe is scoped to one operation: a fresh run of the same key must
	// notify again.
	c.notified = make(map[string]bool)

	return nil
}

// SubmitAccepted records backend acknowledgement of the submit request and
// moves the coordinator into the polling phase.
func (c *Coordinator) SubmitAccepted() {
	if c.phase != PhaseSubmitting {
		return
	}

	c.phase = PhaseAwaitingResult
}

// SubmitFailed reconciles immediately with a failure when the submit request
// itself was rejected.
func (c *Coordinator) SubmitFailed(message string) *NotificationEvent {
	if c.phase != PhaseSubmitting {
		return nil
	}

	return c.reconcile(StatusFailed, message, false)
}

// ObserveStatus feeds one polled status snapshot into the machine. A stale
// snapshot, one whose package name is not the operation key, is discarded so
// a previous operation's leftover result can never reconcile this one. The
// returned event is non-nil only when the operation just reconciled with a
// not-yet-notified terminal status.
func (c *Coordinator) ObserveStatus(snap StatusSnapshot, now time.Time) *NotificationEvent {
	if c.phase != PhaseAwaitingResult && c.phase != PhaseBackendRestarting {
		return nil
	}

	if event := c.checkTimeout(now); event != nil {
		return event
	}

	if !snap.Matches(c.op) {
		return nil
	}

	if !snap.Status.IsTerminal() {
		return nil
	}

	return c.reconcile(snap.Status, snap.Message, false)
}

// ObserveHealth feeds one liveness probe result into the machine. For restore
// operations an unreachable backend is expected: the coordinator enters
// PhaseBackendRestarting and waits for the probe to recover, then for the
// settle delay to elapse before treating the restart cycle as success.
func (c *Coordinator) ObserveHealth(snap HealthSnapshot, now time.Time) *NotificationEvent {
	if c.phase != PhaseAwaitingResult && c.phase != PhaseBackendRestarting {
		return nil
	}

	if event := c.checkTimeout(now); event != nil {
		return event
	}

	wasReachable := c.reachable
	c.reachable = snap.Reachable

	if wasReachable && !snap.Reachable {
		c.sawUnreachable = true

		if c.op.MayRestartBackend() {
			c.phase = PhaseBackendRestarting
		}

		return nil
	}

	if !wasReachable && snap.Reachable && c.sawUnreachable {
		c.backUpAt = now
	}

	return nil
}

// Tick advances wall-clock dependent transitions: the hard operation timeout
// and the post-restart settle delay. Call it on every poll interval.
func (c *Coordinator) Tick(now time.Time) *NotificationEvent {
	if !c.Busy() {
		return nil
	}

	if event := c.checkTimeout(now); event != nil {
		return event
	}

	// A restore whose backend completed a full unreachable-reachable cycle
	// is considered successful once the backend stays up for the settle
	// delay. The status record is usually lost across the restart.
	if c.phase == PhaseBackendRestarting && c.reachable && !c.backUpAt.IsZero() {
		if now.Sub(c.backUpAt) >= c.settleDelay {
			return c.reconcile(StatusCompleted, "", false)
		}
	}

	return nil
}

// Acknowledge returns the coordinator to idle after the caller has handled
// the reconciled outcome.
func (c *Coordinator) Acknowledge() {
	if c.phase != PhaseReconciled {
		return
	}

	c.phase = PhaseIdle
	c.op = Operation{}
	c.started = time.Time{}
	c.sawUnreachable = false
	c.reachable = true
	c.backUpAt = time.Time{}
}

// Elapsed returns how long the current operation has been running.
func (c *Coordinator) Elapsed(now time.Time) time.Duration {
	if c.started.IsZero() {
		return 0
	}

	return now.Sub(c.started)
}

// checkTimeout reconciles with a timeout failure once the operation has run
// past the hard deadline. The timeout dominates every other transition.
func (c *Coordinator) checkTimeout(now time.Time) *NotificationEvent {
	if c.started.IsZero() || now.Sub(c.started) < c.timeout {
		return nil
	}

	message := fmt.Sprintf("Operation timed out after %s", c.timeout)

	return c.reconcile(StatusFailed, message, true)
}

func (c *Coordinator) reconcile(status Status, message string, timedOut bool) *NotificationEvent {
	c.phase = PhaseReconciled
	c.outcome = &Outcome{
		Operation: c.op,
		Status:    status,
		Message:   message,
		TimedOut:  timedOut,
	}

	dedupeKey := c.op.Key + "|" + status.String()
	if c.notified[dedupeKey] {
		return nil
	}

	c.notified[dedupeKey] = true

	return c.buildNotification(*c.outcome)
}

func (c *Coordinator) buildNotification(outcome Outcome) *NotificationEvent {
	event := &NotificationEvent{}

	if outcome.Succeeded() {
		event.Severity = SeveritySuccess
		event.Title = successTitle(outcome.Operation)

		return event
	}

	event.Severity = SeverityError
	event.Title = failureTitle(outcome.Operation)

	if details := CleanMessage(outcome.Message, outcome.Operation.Key); details != "" {
		event.Details = []string{details}
	}

	return event
}

func successTitle(op Operation) string {
	switch op.Kind {
	case KindInstall:
		return fmt.Sprintf("Installed %s", op.Key)
	case KindUninstall:
		return fmt.Sprintf("Uninstalled %s", op.Key)
	case KindRestore:
		return "Environment restored"
	default:
		return fmt.Sprintf("Finished %s", op.Key)
	}
}

func failureTitle(op Operation) string {
	switch op.Kind {
	case KindInstall:
		return fmt.Sprintf("Failed to install %s", op.Key)
	case KindUninstall:
		return fmt.Sprintf("Failed to uninstall %s", op.Key)
	case KindRestore:
		return "Environment restore failed"
	default:
		return fmt.Sprintf("Failed %s", op.Key)
	}
}
