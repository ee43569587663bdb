// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models implements the main menu navigation interface.
package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// SelectedPrefix marks the highlighted menu entry.
const SelectedPrefix = "❯ "

// MenuItem represents a menu option.
type MenuItem struct {
	Title       string
	Description string
	Icon        string
	Action      string
}

// Menu represents the main menu model.
type Menu struct {
	styles   *styles.Styles
	items    []MenuItem
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewMenu creates a new menu model.
func NewMenu(styleConfig *styles.Styles) *Menu {
	items := []MenuItem{
		{
			Title:       "Packages",
			Description: "Browse, install and remove backend packages",
			Icon:        "📦",
			Action:      "packages",
		},
		{
			Title:       "Status",
			Description: "Check backend health and the last operation",
			Icon:        "📊",
			Action:      "status",
		},
		{
			Title:       "Documentation",
			Description: "Help and usage guides",
			Icon:        "📚",
			Action:      "help",
		},
	}

	return &Menu{
		styles: styleConfig,
		items:  items,
		cursor: 0,
	}
}

// Init initializes the menu model.
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update handles messages for the Menu model.
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil
	}

	return m, nil
}

// View renders only the menu content since header/footer are handled by the
// main App.
func (m *Menu) View() string {
	if m.quitting {
		return GoodbyeMessage
	}

	menu := m.renderMenu()

	if m.width > 0 {
		menu = lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Render(menu)
	}

	return menu
}

// GetSelectedAction returns the action identifier of the selected menu item.
func (m *Menu) GetSelectedAction() string {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		return m.items[m.cursor].Action
	}

	return ""
}

func (m *Menu) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, "q", KeyEsc:
		m.quitting = true

		return m, tea.Quit
	case "up", "k":
		return m.handleCursorMovement(-1)
	case "down", "j":
		return m.handleCursorMovement(1)
	case KeyEnter, " ":
		return m.handleMenuSelection()
	}

	return m, nil
}

func (m *Menu) handleCursorMovement(direction int) (tea.Model, tea.Cmd) {
	newCursor := m.cursor + direction
	if newCursor >= 0 && newCursor < len(m.items) {
		m.cursor = newCursor
	}

	return m, nil
}

func (m *Menu) handleMenuSelection() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.items) {
		return m, nil
	}

	return m, m.createNavigationCmd(m.items[m.cursor].Action)
}

// createNavigationCmd creates a command for navigation based on action.
func (m *Menu) createNavigationCmd(action string) tea.Cmd {
	var screen int

	switch action {
	case "packages":
		screen = PackagesScreen
	case "status":
		screen = StatusScreen
	case "help":
		screen = HelpScreen
	default:
		return nil
	}

	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

// renderMenu creates the menu items list.
func (m *Menu) renderMenu() string {
	var builder strings.Builder

	builder.WriteString(m.styles.Title.Render("Manage your Flowdeck environment"))
	builder.WriteString("\n\n")

	for itemIndex, item := range m.items {
		var (
			style  lipgloss.Style
			prefix string
		)

		if itemIndex == m.cursor {
			style = m.styles.Selected
			prefix = SelectedPrefix
		} else {
			style = m.styles.Unselected
			prefix = "  "
		}

		line := fmt.Sprintf("%s%s %s", prefix, item.Icon, item.Title)
		builder.WriteString(style.Render(line))
		builder.WriteString("\n")

		// Show description for selected item
		if itemIndex == m.cursor {
			desc := m.styles.MutedText.Render("    " + item.Description)
			builder.WriteString(desc)
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
