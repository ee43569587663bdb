// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"fmt"

	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/gofrs/flock"
)

// FileLock implements domain.InstanceLock with an advisory file lock, so two
// flowdeck processes cannot both believe they own the installing flag.
type FileLock struct {
	flock *flock.Flock
}

// NewFileLock creates a lock on the given path. The file is created on first
// acquisition and left behind afterwards; only the lock state matters.
func NewFileLock(path string) *FileLock {
	return &FileLock{flock: flock.New(path)}
}

// TryAcquire takes the lock without blocking.
func (l *FileLock) TryAcquire() error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.flock.Path(), err)
	}

	if !locked {
		return domain.ErrAnotherInstanceRunning
	}

	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *FileLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.flock.Path(), err)
	}

	return nil
}
