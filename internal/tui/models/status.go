// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models implements the backend status UI.
package models

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// StatusReader queries the backend's last operation result.
type StatusReader interface {
	Status(ctx context.Context) (domain.StatusResult, error)
}

// statusLoadedMsg carries a fresh status snapshot.
type statusLoadedMsg struct {
	status  domain.StatusResult
	healthy bool
}

// statusLoadFailedMsg carries a status fetch failure.
type statusLoadFailedMsg struct {
	err error
}

// Status shows backend health and the last recorded operation result.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type Status struct {
	ctx    context.Context
	styles *styles.Styles
	reader StatusReader
	health domain.HealthClient

	status  domain.StatusResult
	healthy bool
	loading bool
	loadErr string

	width    int
	quitting bool
}

// NewStatus creates the status screen. Health and status are fetched on Init.
func NewStatus(ctx context.Context, styleConfig *styles.Styles, reader StatusReader, health domain.HealthClient) *Status {
	return &Status{
		ctx:     ctx,
		styles:  styleConfig,
		reader:  reader,
		health:  health,
		loading: true,
	}
}

// Init starts the first fetch.
func (m *Status) Init() tea.Cmd {
	return m.loadCmd()
}

// Update handles messages for the Status model.
func (m *Status) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		m.loading = false
		m.loadErr = ""
		m.status = msg.status
		m.healthy = msg.healthy

		return m, nil

	case statusLoadFailedMsg:
		m.loading = false
		m.loadErr = msg.err.Error()

		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View renders the status screen.
func (m *Status) View() string {
	if m.quitting {
		return GoodbyeMessage
	}

	var builder strings.Builder

	builder.WriteString(m.styles.Title.Render("Backend Status"))
	builder.WriteString("\n\n")

	switch {
	case m.loading:
		builder.WriteString(m.styles.MutedText.Render("Checking backend..."))
	case m.loadErr != "":
		builder.WriteString(m.styles.ErrorText.Render("✗ " + m.loadErr))
	default:
		builder.WriteString(m.renderStatus())
	}

	builder.WriteString("\n\n")
	builder.WriteString(m.styles.MutedText.Render(strings.Join(m.GetNavigationHints(), " · ")))

	return builder.String()
}

// GetNavigationHints returns the footer hints for this screen.
func (m *Status) GetNavigationHints() []string {
	return []string{"ctrl+r refresh", "esc back", "q quit"}
}

func (m *Status) loadCmd() tea.Cmd {
	return func() tea.Msg {
		healthy := m.health.Health(m.ctx) == nil

		status, err := m.reader.Status(m.ctx)
		if err != nil {
			if !healthy {
				// Backend down entirely; show that instead of the
				// request error.
				return statusLoadedMsg{healthy: false}
			}

			return statusLoadFailedMsg{err: err}
		}

		return statusLoadedMsg{status: status, healthy: healthy}
	}
}

func (m *Status) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, "q":
		m.quitting = true

		return m, tea.Quit
	case KeyEsc:
		return m, func() tea.Msg {
			return NavigateMsg{Screen: MenuScreen}
		}
	case "ctrl+r":
		m.loading = true
		m.loadErr = ""

		return m, m.loadCmd()
	}

	return m, nil
}

func (m *Status) renderStatus() string {
	var builder strings.Builder

	if m.healthy {
		builder.WriteString(m.styles.SuccessText.Render("✓ Backend reachable"))
	} else {
		builder.WriteString(m.styles.ErrorText.Render("✗ Backend unreachable"))

		return builder.String()
	}

	builder.WriteString("\n")

	if m.status.InProgress {
		builder.WriteString(m.styles.WarningText.Render("⚠ An operation is in progress"))
	} else {
		builder.WriteString(m.styles.MutedText.Render("No operation in progress"))
	}

	if m.status.Package != "" {
		builder.WriteString("\n\n")
		builder.WriteString(m.styles.Subtitle.Render("Last result"))
		builder.WriteString("\n")

		line := m.status.Package + " " + m.status.Status
		if m.status.Status == domain.StatusFailed.String() {
			builder.WriteString(m.styles.ErrorText.Render(line))
		} else {
			builder.WriteString(m.styles.SuccessText.Render(line))
		}

		if m.status.Message != "" {
			builder.WriteString("\n")
			builder.WriteString(m.styles.MutedText.Render(m.status.Message))
		}
	}

	return builder.String()
}
