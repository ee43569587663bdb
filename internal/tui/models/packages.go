// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models implements the installed-packages browser UI.
package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// Column layout constants for the package table.
const (
	nameColumnWidth    = 32
	versionColumnWidth = 16
)

// packagesMode is the packages screen's input mode.
type packagesMode int

const (
	modeBrowse packagesMode = iota
	modeInstallInput
	modeConfirm
)

// PackageLister fetches the backend's installed-package list.
type PackageLister interface {
	ListInstalled(ctx context.Context) ([]domain.InstalledPackage, error)
	Invalidate()
}

// packagesLoadedMsg carries a fresh installed-package list.
type packagesLoadedMsg struct {
	packages []domain.InstalledPackage
}

// packagesLoadFailedMsg carries a list fetch failure.
type packagesLoadFailedMsg struct {
	err error
}

// Packages is the installed-packages browser model.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type Packages struct {
	ctx    context.Context
	styles *styles.Styles
	lister PackageLister

	packages []domain.InstalledPackage
	cursor   int
	loading  bool
	loadErr  string

	mode      packagesMode
	input     textinput.Model
	inputErr  string
	pendingOp domain.Operation

	width    int
	height   int
	quitting bool
}

// NewPackages creates the packages screen. The list is fetched on Init.
func NewPackages(ctx context.Context, styleConfig *styles.Styles, lister PackageLister) *Packages {
	input := textinput.New()
	input.Placeholder = `package spec, e.g. pandas or "numpy<2"`
	input.CharLimit = 120
	input.Width = 40

	return &Packages{
		ctx:     ctx,
		styles:  styleConfig,
		lister:  lister,
		loading: true,
		input:   input,
	}
}

// Init initializes the packages model and starts the first fetch.
func (m *Packages) Init() tea.Cmd {
	return m.loadCmd()
}

// Update handles messages for the Packages model.
func (m *Packages) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case packagesLoadedMsg:
		m.loading = false
		m.loadErr = ""
		m.packages = msg.packages

		if m.cursor >= len(m.packages) {
			m.cursor = 0
		}

		return m, nil

	case packagesLoadFailedMsg:
		m.loading = false
		m.loadErr = msg.err.Error()

		return m, nil

	case OperationFinishedMsg:
		// An operation reconciled on the progress screen; the cached
		// list is stale now.
		m.lister.Invalidate()
		m.loading = true

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View renders the packages screen.
func (m *Packages) View() string {
	if m.quitting {
		return GoodbyeMessage
	}

	var builder strings.Builder

	builder.WriteString(m.styles.Title.Render("Installed Packages"))
	builder.WriteString("\n\n")

	switch {
	case m.loading:
		builder.WriteString(m.styles.MutedText.Render("Loading installed packages..."))
		builder.WriteString("\n")
	case m.loadErr != "":
		builder.WriteString(m.styles.ErrorText.Render("✗ " + m.loadErr))
		builder.WriteString("\n")
		builder.WriteString(m.styles.MutedText.Render("Press ctrl+r to retry"))
		builder.WriteString("\n")
	default:
		builder.WriteString(m.renderTable())
	}

	builder.WriteString("\n")
	builder.WriteString(m.renderPrompt())

	return builder.String()
}

// GetNavigationHints returns the footer hints for this screen.
func (m *Packages) GetNavigationHints() []string {
	switch m.mode {
	case modeInstallInput:
		return []string{"enter install", "esc cancel"}
	case modeConfirm:
		return []string{"y confirm", "n cancel"}
	default:
		return []string{"i install", "u uninstall", "r restore", "ctrl+r refresh", "esc back"}
	}
}

// Selected returns the package under the cursor, if any.
func (m *Packages) Selected() (domain.InstalledPackage, bool) {
	if m.cursor >= 0 && m.cursor < len(m.packages) {
		return m.packages[m.cursor], true
	}

	return domain.InstalledPackage{}, false
}

func (m *Packages) loadCmd() tea.Cmd {
	return func() tea.Msg {
		packages, err := m.lister.ListInstalled(m.ctx)
		if err != nil {
			return packagesLoadFailedMsg{err: err}
		}

		return packagesLoadedMsg{packages: packages}
	}
}

func (m *Packages) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeInstallInput:
		return m.handleInputKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m *Packages) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, "q":
		m.quitting = true

		return m, tea.Quit
	case KeyEsc:
		return m, func() tea.Msg {
			return NavigateMsg{Screen: MenuScreen}
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil
	case "down", "j":
		if m.cursor < len(m.packages)-1 {
			m.cursor++
		}

		return m, nil
	case "i":
		m.mode = modeInstallInput
		m.inputErr = ""
		m.input.SetValue("")

		return m, m.input.Focus()
	case "u":
		pkg, ok := m.Selected()
		if !ok {
			return m, nil
		}

		m.pendingOp = domain.NewUninstall(pkg.Name)
		m.mode = modeConfirm

		return m, nil
	case "r":
		m.pendingOp = domain.NewRestore()
		m.mode = modeConfirm

		return m, nil
	case "ctrl+r":
		m.lister.Invalidate()
		m.loading = true
		m.loadErr = ""

		return m, m.loadCmd()
	}

	return m, nil
}

func (m *Packages) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()

		return m, nil
	case KeyEnter:
		spec := strings.TrimSpace(m.input.Value())
		if err := domain.ValidatePackageSpec(spec); err != nil {
			m.inputErr = err.Error()

			return m, nil
		}

		m.mode = modeBrowse
		m.input.Blur()

		return m, navigateToProgress(domain.NewInstall(spec))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""

	return m, cmd
}

func (m *Packages) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", KeyEnter:
		op := m.pendingOp
		m.mode = modeBrowse

		return m, navigateToProgress(op)
	case "n", "N", KeyEsc:
		m.mode = modeBrowse

		return m, nil
	}

	return m, nil
}

// navigateToProgress hands an operation to the progress screen.
func navigateToProgress(op domain.Operation) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: ProgressScreen, Data: OperationData{Operation: op}}
	}
}

func (m *Packages) renderTable() string {
	if len(m.packages) == 0 {
		return m.styles.MutedText.Render("No packages installed") + "\n"
	}

	var builder strings.Builder

	header := fmt.Sprintf("  %s %s",
		runewidth.FillRight("Name", nameColumnWidth),
		runewidth.FillRight("Version", versionColumnWidth),
	)
	builder.WriteString(m.styles.Subtitle.Render(header))
	builder.WriteString("\n")

	for index, pkg := range m.packages {
		name := runewidth.Truncate(pkg.Name, nameColumnWidth, "...")
		version := runewidth.Truncate(pkg.Version, versionColumnWidth, "...")

		line := fmt.Sprintf("%s %s",
			runewidth.FillRight(name, nameColumnWidth),
			runewidth.FillRight(version, versionColumnWidth),
		)

		if index == m.cursor {
			builder.WriteString(m.styles.Selected.Render(SelectedPrefix + line))
		} else {
			builder.WriteString(m.styles.Unselected.Render("  " + line))
		}

		builder.WriteString("\n")
	}

	return builder.String()
}

func (m *Packages) renderPrompt() string {
	switch m.mode {
	case modeInstallInput:
		prompt := m.styles.PrimaryText.Render("Install package: ") + m.input.View()
		if m.inputErr != "" {
			prompt += "\n" + m.styles.ErrorText.Render("✗ "+m.inputErr)
		}

		return prompt

	case modeConfirm:
		title := cases.Title(language.Und).String(string(m.pendingOp.Kind))

		var question string
		if m.pendingOp.Kind == domain.KindRestore {
			question = fmt.Sprintf("%s the base environment? All user-installed packages are removed. [y/n]", title)
		} else {
			question = fmt.Sprintf("%s %s? [y/n]", title, m.pendingOp.Key)
		}

		return m.styles.WarningText.Render(question)

	default:
		return m.styles.MutedText.Render(strings.Join(m.GetNavigationHints(), " · "))
	}
}
