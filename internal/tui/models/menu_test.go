// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

func keyMsg(key string) tea.KeyMsg {
	if len(key) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}

	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestMenu_CursorMovement(t *testing.T) {
	t.Parallel()

	menu := NewMenu(styles.New())

	require.Equal(t, "packages", menu.GetSelectedAction())

	updated, _ := menu.Update(keyMsg("j"))
	menu = updated.(*Menu)
	require.Equal(t, "status", menu.GetSelectedAction())

	updated, _ = menu.Update(keyMsg("j"))
	menu = updated.(*Menu)
	require.Equal(t, "help", menu.GetSelectedAction())

	// Cursor stops at the bottom
	updated, _ = menu.Update(keyMsg("j"))
	menu = updated.(*Menu)
	require.Equal(t, "help", menu.GetSelectedAction())

	updated, _ = menu.Update(keyMsg("k"))
	menu = updated.(*Menu)
	require.Equal(t, "status", menu.GetSelectedAction())
}

func TestMenu_SelectionNavigates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		moves      int
		wantScreen int
	}{
		{
			name:       "packages entry",
			moves:      0,
			wantScreen: PackagesScreen,
		},
		{
			name:       "status entry",
			moves:      1,
			wantScreen: StatusScreen,
		},
		{
			name:       "help entry",
			moves:      2,
			wantScreen: HelpScreen,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			menu := NewMenu(styles.New())

			for range testCase.moves {
				updated, _ := menu.Update(keyMsg("j"))
				menu = updated.(*Menu)
			}

			_, cmd := menu.Update(keyMsg("enter"))
			require.NotNil(t, cmd)

			msg := cmd()

			navigate, ok := msg.(NavigateMsg)
			require.True(t, ok)
			require.Equal(t, testCase.wantScreen, navigate.Screen)
		})
	}
}

func TestMenu_QuitKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			menu := NewMenu(styles.New())

			updated, cmd := menu.Update(keyMsg(key))
			require.NotNil(t, cmd)
			require.Equal(t, GoodbyeMessage, updated.View())
		})
	}
}

func TestMenu_ViewShowsItems(t *testing.T) {
	t.Parallel()

	menu := NewMenu(styles.New())

	view := menu.View()
	require.Contains(t, view, "Packages")
	require.Contains(t, view, "Status")
	require.Contains(t, view, "Documentation")
}
