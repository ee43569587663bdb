// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models implements operation progress tracking UI.
package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/flowdeck/flowdeck/internal/application"
	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// UI layout constants.
const (
	maxProgressWidth        = 60
	defaultProgressBarWidth = 40
)

// OperationStarter launches one backend operation and streams its updates.
type OperationStarter interface {
	Start(ctx context.Context, op domain.Operation) (<-chan application.Update, error)
}

// operationStartedMsg carries the update channel of a freshly started run.
type operationStartedMsg struct {
	updates <-chan application.Update
}

// operationStartFailedMsg carries a start failure.
type operationStartFailedMsg struct {
	err error
}

// operationUpdateMsg carries one runner update.
type operationUpdateMsg struct {
	update application.Update
}

// operationStreamClosedMsg means the runner finished and closed its channel.
type operationStreamClosedMsg struct{}

// Progress tracks one operation from submission to its reconciled outcome.
// The screen cannot be dismissed until the outcome arrives; the operation
// keeps running in the backend either way.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type Progress struct {
	ctx     context.Context
	styles  *styles.Styles
	starter OperationStarter
	op      domain.Operation
	timeout time.Duration

	updates <-chan application.Update

	spinner spinner.Model
	bar     progress.Model

	phase        domain.Phase
	elapsed      time.Duration
	notification *domain.NotificationEvent
	outcome      *domain.Outcome
	startErr     error
	done         bool

	width    int
	quitting bool
}

// NewProgress creates a progress screen for one operation. The timeout is
// only used to scale the progress bar; the runner enforces the real one.
func NewProgress(ctx context.Context, styleConfig *styles.Styles, starter OperationStarter, op domain.Operation, timeout time.Duration) *Progress {
	tickSpinner := spinner.New()
	tickSpinner.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultProgressBarWidth

	if timeout <= 0 {
		timeout = domain.DefaultOperationTimeout
	}

	return &Progress{
		ctx:     ctx,
		styles:  styleConfig,
		starter: starter,
		op:      op,
		timeout: timeout,
		spinner: tickSpinner,
		bar:     bar,
		phase:   domain.PhaseSubmitting,
	}
}

// Init starts the operation and the spinner.
func (m *Progress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

// Update handles messages for the Progress model.
func (m *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case operationStartedMsg:
		m.updates = msg.updates

		return m, m.waitForUpdate()

	case operationStartFailedMsg:
		m.startErr = msg.err
		m.done = true

		return m, nil

	case operationUpdateMsg:
		m.applyUpdate(msg.update)

		return m, m.waitForUpdate()

	case operationStreamClosedMsg:
		m.done = true

		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		if bar, ok := barModel.(progress.Model); ok {
			m.bar = bar
		}

		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width

		barWidth := msg.Width - 20
		if barWidth > maxProgressWidth {
			barWidth = maxProgressWidth
		}

		if barWidth > 0 {
			m.bar.Width = barWidth
		}

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View renders the progress screen.
func (m *Progress) View() string {
	if m.quitting {
		return GoodbyeMessage
	}

	var builder strings.Builder

	builder.WriteString(m.styles.Title.Render(m.title()))
	builder.WriteString("\n\n")

	if m.startErr != nil {
		builder.WriteString(m.styles.ErrorText.Render("✗ " + m.startErr.Error()))
		builder.WriteString("\n\n")
		builder.WriteString(m.styles.MutedText.Render("Press enter to go back"))

		return builder.String()
	}

	if m.done {
		builder.WriteString(m.renderOutcome())
		builder.WriteString("\n\n")
		builder.WriteString(m.styles.MutedText.Render("Press enter to go back"))

		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.phaseLabel()))
	builder.WriteString("\n\n")
	builder.WriteString(m.bar.ViewAs(m.fraction()))
	builder.WriteString("\n")
	builder.WriteString(m.styles.MutedText.Render(fmt.Sprintf("Elapsed: %s", m.elapsed.Round(time.Second))))
	builder.WriteString("\n\n")
	builder.WriteString(m.styles.MutedText.Render("The operation keeps running in the backend; this screen waits for the result"))

	return builder.String()
}

// GetNavigationHints returns the footer hints for this screen.
func (m *Progress) GetNavigationHints() []string {
	if m.done {
		return []string{"enter back"}
	}

	return []string{"ctrl+c quit"}
}

// Done reports whether the run reconciled (or failed to start).
func (m *Progress) Done() bool {
	return m.done
}

// Outcome returns the reconciled outcome, nil while still running.
func (m *Progress) Outcome() *domain.Outcome {
	return m.outcome
}

func (m *Progress) startCmd() tea.Cmd {
	return func() tea.Msg {
		updates, err := m.starter.Start(m.ctx, m.op)
		if err != nil {
			return operationStartFailedMsg{err: err}
		}

		return operationStartedMsg{updates: updates}
	}
}

// waitForUpdate blocks on the runner channel and converts one update into a
// message. Re-issued after every received update.
func (m *Progress) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return operationStreamClosedMsg{}
		}

		return operationUpdateMsg{update: update}
	}
}

func (m *Progress) applyUpdate(update application.Update) {
	m.phase = update.Phase
	m.elapsed = update.Elapsed

	if update.Notification != nil {
		m.notification = update.Notification
	}

	if update.Outcome != nil {
		m.outcome = update.Outcome
	}
}

func (m *Progress) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		m.quitting = true

		return m, tea.Quit
	}

	// Not dismissible until reconciled; the coordinator is the only
	// authority on whether the operation finished.
	if !m.done {
		return m, nil
	}

	switch msg.String() {
	case KeyEnter, KeyEsc, "q":
		outcome := m.outcome

		return m, func() tea.Msg {
			return NavigateMsg{Screen: PackagesScreen, Data: OperationFinishedMsg{Outcome: outcome}}
		}
	}

	return m, nil
}

func (m *Progress) title() string {
	switch m.op.Kind {
	case domain.KindInstall:
		return "Installing " + m.op.Key
	case domain.KindUninstall:
		return "Uninstalling " + m.op.Key
	case domain.KindRestore:
		return "Restoring base environment"
	default:
		return "Running operation"
	}
}

func (m *Progress) phaseLabel() string {
	switch m.phase {
	case domain.PhaseSubmitting:
		return "Submitting request..."
	case domain.PhaseAwaitingResult:
		return "Waiting for the backend to finish..."
	case domain.PhaseBackendRestarting:
		return "Backend restarting, waiting for it to come back..."
	case domain.PhaseReconciled:
		return "Finishing up..."
	case domain.PhaseIdle:
		return "Starting..."
	default:
		return "Working..."
	}
}

// fraction maps elapsed time onto the progress bar. The backend reports no
// granular progress, so elapsed over the hard timeout is the best signal.
func (m *Progress) fraction() float64 {
	if m.timeout <= 0 {
		return 0
	}

	fraction := float64(m.elapsed) / float64(m.timeout)
	if fraction > 1 {
		fraction = 1
	}

	return fraction
}

func (m *Progress) renderOutcome() string {
	if m.outcome == nil {
		return m.styles.WarningText.Render("⚠ Operation interrupted before a result was recorded")
	}

	var builder strings.Builder

	if m.notification != nil {
		line := m.notification.Title
		if len(m.notification.Details) > 0 {
			line += "\n" + strings.Join(m.notification.Details, "\n")
		}

		if m.notification.Severity == domain.SeveritySuccess {
			builder.WriteString(m.styles.SuccessText.Render("✓ " + line))
		} else {
			builder.WriteString(m.styles.ErrorText.Render("✗ " + line))
		}

		return builder.String()
	}

	if m.outcome.Succeeded() {
		builder.WriteString(m.styles.SuccessText.Render("✓ Operation completed"))
	} else {
		builder.WriteString(m.styles.ErrorText.Render("✗ " + m.outcome.Message))
	}

	return builder.String()
}
