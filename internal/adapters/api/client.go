// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package api implements the HTTP adapter for the backend's package
// management endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flowdeck/flowdeck/internal/domain"
)

// Client implements domain.PackagesClient and domain.HealthClient against a
// Flowdeck backend.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an API client for the given base URL. The timeout bounds
// each individual request, not a whole operation.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
	}
}

// Wire shapes of the packages API.
type installRequest struct {
	PackageName string `json:"package_name"`
}

type statusResponse struct {
	InProgress bool                `json:"installation_in_progress"`
	LastResult *lastResultResponse `json:"last_result"`
}

type lastResultResponse struct {
	PackageName string `json:"package_name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

type installedResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Install submits an install request for a package specification.
func (c *Client) Install(ctx context.Context, packageSpec string) error {
	return c.post(ctx, "/api/v1/packages/install", installRequest{PackageName: packageSpec})
}

// Uninstall submits an uninstall request for a package name.
func (c *Client) Uninstall(ctx context.Context, packageName string) error {
	return c.post(ctx, "/api/v1/packages/uninstall", installRequest{PackageName: packageName})
}

// Restore submits a whole-environment restore request.
func (c *Client) Restore(ctx context.Context) error {
	return c.post(ctx, "/api/v1/packages/restore", struct{}{})
}

// InstallStatus returns the backend's current installation state and the
// last recorded result.
func (c *Client) InstallStatus(ctx context.Context) (*domain.InstallStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/packages/install/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status endpoint returned %d", domain.ErrRequestRejected, resp.StatusCode)
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	status := &domain.InstallStatus{InProgress: payload.InProgress}
	if payload.LastResult != nil {
		status.LastResult = &domain.StatusSnapshot{
			PackageName: payload.LastResult.PackageName,
			Status:      domain.ParseStatus(payload.LastResult.Status),
			Message:     payload.LastResult.Message,
		}
	}

	return status, nil
}

// ClearStatus removes the last recorded result from the backend.
func (c *Client) ClearStatus(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/packages/install/status", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: clear status returned %d", domain.ErrRequestRejected, resp.StatusCode)
	}

	return nil
}

// ListInstalled returns the packages installed in the backend environment.
func (c *Client) ListInstalled(ctx context.Context) ([]domain.InstalledPackage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/packages/installed", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: installed endpoint returned %d", domain.ErrRequestRejected, resp.StatusCode)
	}

	var payload []installedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode installed response: %w", err)
	}

	packages := make([]domain.InstalledPackage, 0, len(payload))
	for _, pkg := range payload {
		packages = append(packages, domain.InstalledPackage{Name: pkg.Name, Version: pkg.Version})
	}

	return packages, nil
}

// Health probes the backend's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", domain.ErrBackendUnreachable, resp.StatusCode)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s", domain.ErrRequestRejected, readDetail(resp))
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	return req, nil
}

// readDetail extracts the backend's {detail} error payload, falling back to
// the HTTP status text.
func readDetail(resp *http.Response) string {
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
