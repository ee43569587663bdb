// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package domain contains the entities and the progress-coordinator state
// machine for package operations against a Flowdeck backend.
package domain

import (
	"strings"
)

// RestoreKey is the sentinel operation key used for a whole-environment
// restore, which has no package name of its own.
const RestoreKey = "flowdeck-restore"

// OperationKind distinguishes the three backend package operations.
type OperationKind string

// Operation kinds supported by the backend.
const (
	KindInstall   OperationKind = "install"
	KindUninstall OperationKind = "uninstall"
	KindRestore   OperationKind = "restore"
)

// Operation represents one in-flight install/uninstall/restore request. It is
// created when the user confirms an action and discarded once reconciled.
type Operation struct {
	Key  string        `json:"key"`
	Kind OperationKind `json:"kind"`
}

// NewInstall creates an install operation for a package specification.
func NewInstall(packageSpec string) Operation {
	return Operation{Key: packageSpec, Kind: KindInstall}
}

// NewUninstall creates an uninstall operation for a package name.
func NewUninstall(packageName string) Operation {
	return Operation{Key: packageName, Kind: KindUninstall}
}

// NewRestore creates a whole-environment restore operation using the
// reserved sentinel key.
func NewRestore() Operation {
	return Operation{Key: RestoreKey, Kind: KindRestore}
}

// IsValid validates the operation has a usable key and kind.
func (o Operation) IsValid() bool {
	key := strings.TrimSpace(o.Key)

	switch o.Kind {
	case KindInstall, KindUninstall:
		return key != ""
	case KindRestore:
		return key == RestoreKey
	default:
		return false
	}
}

// MayRestartBackend reports whether a successful operation of this kind is
// expected to restart the backend process. Only restore reloads the runtime,
// so only restore flows interpret a health-probe restart cycle as progress.
func (o Operation) MayRestartBackend() bool {
	return o.Kind == KindRestore
}

// Status is the closed vocabulary of installation states. Backend responses
// carry free-form strings; ParseStatus maps them here once, at the boundary.
type Status int

// Installation states reported by the status endpoint.
const (
	// StatusUnknown marks an unrecognized backend value; never terminal.
	StatusUnknown Status = iota
	// StatusPending covers queued and in-progress states.
	StatusPending
	// StatusCompleted is the terminal success state for installs.
	StatusCompleted
	// StatusFailed is the terminal failure state.
	StatusFailed
	// StatusUninstalled is the terminal success state for uninstalls.
	StatusUninstalled
)

// statusNames maps every accepted wire value to its Status. The backend has
// used several spellings across versions; all are folded here.
var statusNames = map[string]Status{ //nolint:gochecknoglobals
	"pending":     StatusPending,
	"in_progress": StatusPending,
	"started":     StatusPending,
	"completed":   StatusCompleted,
	"success":     StatusCompleted,
	"failed":      StatusFailed,
	"error":       StatusFailed,
	"uninstalled": StatusUninstalled,
	"removed":     StatusUninstalled,
}

// ParseStatus maps a backend status string onto the closed enum. Unrecognized
// values become StatusUnknown, which the coordinator ignores.
func ParseStatus(wire string) Status {
	if status, ok := statusNames[strings.ToLower(strings.TrimSpace(wire))]; ok {
		return status
	}

	return StatusUnknown
}

// IsTerminal reports whether no further change is expected for an operation
// in this state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusUninstalled:
		return true
	case StatusUnknown, StatusPending:
		return false
	default:
		return false
	}
}

// String returns the canonical lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusUninstalled:
		return "uninstalled"
	case StatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// StatusSnapshot is the most recent polled result from the status endpoint.
// Snapshots are replaced wholesale on each poll, never mutated.
type StatusSnapshot struct {
	PackageName string `json:"package_name"`
	Status      Status `json:"status"`
	Message     string `json:"message,omitempty"`
}

// Matches reports whether the snapshot belongs to the given operation. The
// status endpoint keeps the last result of any operation, so a snapshot for a
// different package is a stale result and must be ignored.
func (s StatusSnapshot) Matches(op Operation) bool {
	return s.PackageName == op.Key
}

// HealthSnapshot is the latest liveness probe result.
type HealthSnapshot struct {
	Reachable bool `json:"reachable"`
}

// Severity classifies a user-facing notification.
type Severity string

// Notification severities.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// NotificationEvent is the single user-facing artifact of a reconciled
// operation, handed to a Notifier exactly once per distinct terminal status.
type NotificationEvent struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Details  []string `json:"details,omitempty"`
}

// InstalledPackage is one entry from the installed-packages endpoint.
type InstalledPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
