// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models implements contextual help UI.
package models

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// HelpSection represents a help documentation section.
type HelpSection struct {
	Title   string
	Content string
}

// Help represents the help screen model.
type Help struct {
	styles         *styles.Styles
	sections       []HelpSection
	rendered       []string
	viewport       viewport.Model
	currentSection int
	width          int
	height         int
	ready          bool
	quitting       bool
}

// NewHelp creates the help screen with pre-rendered markdown content.
func NewHelp(styleConfig *styles.Styles) *Help {
	sections := helpSections()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer, _ = glamour.NewTermRenderer()
	}

	rendered := make([]string, len(sections))

	for index, section := range sections {
		out, err := renderer.Render(section.Content)
		if err != nil {
			out = section.Content
		}

		rendered[index] = out
	}

	return &Help{
		styles:   styleConfig,
		sections: sections,
		rendered: rendered,
	}
}

// Init initializes the help model.
func (m *Help) Init() tea.Cmd {
	return nil
}

// Update handles messages for the Help model.
func (m *Help) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := msg.Height - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}

		m.viewport.SetContent(m.rendered[m.currentSection])

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View renders the help screen.
func (m *Help) View() string {
	if m.quitting {
		return GoodbyeMessage
	}

	var builder strings.Builder

	builder.WriteString(m.renderTabs())
	builder.WriteString("\n")

	if m.ready {
		builder.WriteString(m.viewport.View())
	} else {
		builder.WriteString(m.rendered[m.currentSection])
	}

	builder.WriteString("\n")
	builder.WriteString(m.styles.MutedText.Render(strings.Join(m.GetNavigationHints(), " · ")))

	return builder.String()
}

// GetNavigationHints returns the footer hints for this screen.
func (m *Help) GetNavigationHints() []string {
	return []string{"tab next section", "j/k scroll", "esc back", "q quit"}
}

func (m *Help) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, "q":
		m.quitting = true

		return m, tea.Quit
	case KeyEsc:
		return m, func() tea.Msg {
			return NavigateMsg{Screen: MenuScreen}
		}
	case "tab", "l", "right":
		m.switchSection(1)

		return m, nil
	case "shift+tab", "h", "left":
		m.switchSection(-1)

		return m, nil
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *Help) switchSection(direction int) {
	next := m.currentSection + direction
	if next < 0 {
		next = len(m.sections) - 1
	}

	if next >= len(m.sections) {
		next = 0
	}

	m.currentSection = next

	if m.ready {
		m.viewport.SetContent(m.rendered[m.currentSection])
		m.viewport.GotoTop()
	}
}

func (m *Help) renderTabs() string {
	var tabs []string

	for index, section := range m.sections {
		if index == m.currentSection {
			tabs = append(tabs, m.styles.Selected.Render(section.Title))
		} else {
			tabs = append(tabs, m.styles.Unselected.Render(section.Title))
		}
	}

	return strings.Join(tabs, " ")
}

// helpSections returns the built-in documentation.
func helpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "Getting Started",
			Content: `# Flowdeck

Flowdeck manages Python packages in a running Flowdeck backend.

## Requirements

A backend must be reachable. By default flowdeck connects to
` + "`http://localhost:7860`" + `; set ` + "`FLOWDECK_SERVER_URL`" + ` or edit the config
file to point somewhere else.

## First steps

1. Open **Packages** to see what the backend has installed
2. Press ` + "`i`" + ` and type a package spec, e.g. ` + "`pandas`" + ` or ` + "`numpy<2`" + `
3. Watch the progress screen until the backend reports a result
`,
		},
		{
			Title: "Operations",
			Content: `# Operations

## Install

Accepts pip-style specs with optional version constraints:
` + "`pandas`" + `, ` + "`pandas==2.3.1`" + `, ` + "`requests>=2.25.0`" + `.

## Uninstall

Removes one package from the backend environment. Asks for
confirmation first.

## Restore

Removes **all** user-installed packages and returns the backend to its
shipped dependency set. The backend may restart while restoring;
flowdeck waits for it to come back before reporting success.

## Timeouts

An operation that produces no result within the hard timeout
(60 seconds by default) is reported as timed out. The backend may
still finish it afterwards; check **Status** in that case.
`,
		},
		{
			Title: "Keyboard",
			Content: `# Keyboard Reference

| Key | Action |
|-----|--------|
| j / k | Move selection |
| i | Install a package |
| u | Uninstall the selected package |
| r | Restore the base environment |
| ctrl+r | Refresh the list |
| esc | Back to the menu |
| q / ctrl+c | Quit |
`,
		},
	}
}
