// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowdeck/flowdeck/internal/domain"
)

// PackagesService answers queries about the backend environment. Installed
// packages are cached until an operation reconciles successfully, then
// invalidated and refetched.
type PackagesService struct {
	client domain.PackagesClient

	mu     sync.RWMutex
	cached []domain.InstalledPackage
	valid  bool
}

// NewPackagesService creates a query service over the packages client.
func NewPackagesService(client domain.PackagesClient) *PackagesService {
	return &PackagesService{client: client}
}

// ListInstalled returns the installed packages, from cache when available.
func (s *PackagesService) ListInstalled(ctx context.Context) ([]domain.InstalledPackage, error) {
	s.mu.RLock()

	if s.valid {
		cached := s.cached
		s.mu.RUnlock()

		return cached, nil
	}

	s.mu.RUnlock()

	packages, err := s.client.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}

	s.mu.Lock()
	s.cached = packages
	s.valid = true
	s.mu.Unlock()

	return packages, nil
}

// Invalidate drops the cached package list. Called after a successful
// operation so the next list reflects the change.
func (s *PackagesService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.valid = false
	s.mu.Unlock()
}

// Status returns the backend's current installation state.
func (s *PackagesService) Status(ctx context.Context) (domain.StatusResult, error) {
	status, err := s.client.InstallStatus(ctx)
	if err != nil {
		return domain.StatusResult{}, fmt.Errorf("fetch installation status: %w", err)
	}

	result := domain.StatusResult{InProgress: status.InProgress}
	if status.LastResult != nil {
		result.Package = status.LastResult.PackageName
		result.Status = status.LastResult.Status.String()
		result.Message = domain.CleanMessage(status.LastResult.Message, status.LastResult.PackageName)
	}

	return result, nil
}

// ClearStatus removes the backend's last recorded result.
func (s *PackagesService) ClearStatus(ctx context.Context) error {
	if err := s.client.ClearStatus(ctx); err != nil {
		return fmt.Errorf("clear installation status: %w", err)
	}

	return nil
}
