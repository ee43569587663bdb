// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

func TestHelp_RendersSections(t *testing.T) {
	t.Parallel()

	help := NewHelp(styles.New())

	require.Len(t, help.sections, 3)
	require.Len(t, help.rendered, 3)

	view := help.View()
	require.Contains(t, view, "Getting Started")
	require.Contains(t, view, "Operations")
	require.Contains(t, view, "Keyboard")
}

func TestHelp_TabSwitchesSections(t *testing.T) {
	t.Parallel()

	help := NewHelp(styles.New())
	require.Equal(t, 0, help.currentSection)

	updated, _ := help.Update(keyMsg("tab"))
	help = updated.(*Help)
	require.Equal(t, 1, help.currentSection)

	updated, _ = help.Update(keyMsg("tab"))
	help = updated.(*Help)
	require.Equal(t, 2, help.currentSection)

	// Wraps around
	updated, _ = help.Update(keyMsg("tab"))
	help = updated.(*Help)
	require.Equal(t, 0, help.currentSection)

	updated, _ = help.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	help = updated.(*Help)
	require.Equal(t, 2, help.currentSection)
}

func TestHelp_WindowSizeInitializesViewport(t *testing.T) {
	t.Parallel()

	help := NewHelp(styles.New())
	require.False(t, help.ready)

	updated, _ := help.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	help = updated.(*Help)

	require.True(t, help.ready)
	require.Equal(t, 80, help.viewport.Width)
}

func TestHelp_EscReturnsToMenu(t *testing.T) {
	t.Parallel()

	help := NewHelp(styles.New())

	_, cmd := help.Update(keyMsg("esc"))
	require.NotNil(t, cmd)

	navigate, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, MenuScreen, navigate.Screen)
}
