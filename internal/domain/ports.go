// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"context"
)

// PackagesClient defines the interface for package operations against the
// backend. Implemented by the HTTP adapter.
type PackagesClient interface {
	// Install submits an install request for a package specification.
	// The backend acknowledges with 202 and runs the work asynchronously.
	Install(ctx context.Context, packageSpec string) error

	// Uninstall submits an uninstall request for a package name.
	Uninstall(ctx context.Context, packageName string) error

	// Restore submits a whole-environment restore request.
	Restore(ctx context.Context) error

	// InstallStatus returns the backend's current installation state and
	// the last recorded result, if any.
	InstallStatus(ctx context.Context) (*InstallStatus, error)

	// ClearStatus removes the last recorded result from the backend.
	ClearStatus(ctx context.Context) error

	// ListInstalled returns the packages currently installed in the
	// backend environment.
	ListInstalled(ctx context.Context) ([]InstalledPackage, error)
}

// InstallStatus is the response of the status endpoint.
type InstallStatus struct {
	InProgress bool
	LastResult *StatusSnapshot
}

// HealthClient defines the interface for backend liveness probing.
type HealthClient interface {
	// Health probes the backend. A nil error means reachable; any error
	// means unreachable, with no distinction between failure modes.
	Health(ctx context.Context) error
}

// Notifier receives the single user-facing event of a reconciled operation.
// The coordinator's dedupe guarantees at-most-one call per operation outcome,
// so implementations need not be idempotent.
type Notifier interface {
	Notify(event NotificationEvent)
}

// InstanceLock guards the process-wide installing flag across flowdeck
// processes. Implemented with a file lock.
type InstanceLock interface {
	// TryAcquire takes the lock without blocking. Returns
	// ErrAnotherInstanceRunning if another process holds it.
	TryAcquire() error

	// Release drops the lock. Safe to call more than once.
	Release() error
}
