// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models defines shared navigation messages between UI screens.
package models

import "github.com/flowdeck/flowdeck/internal/domain"

// NavigateMsg is a message sent to request navigation to a specific screen.
type NavigateMsg struct {
	Screen int
	Data   any // Optional data to pass to the new screen
}

// Screen constants for navigation.
const (
	MenuScreen = iota
	PackagesScreen
	ProgressScreen
	StatusScreen
	HelpScreen
)

// Key constants for common key inputs.
const (
	KeyCtrlC = "ctrl+c"
	KeyEnter = "enter"
	KeyEsc   = "esc"
)

// GoodbyeMessage is shown when the user quits the TUI.
const GoodbyeMessage = "Goodbye!\n"

// OperationData carries the operation a screen asked the progress screen
// to run.
type OperationData struct {
	Operation domain.Operation
}

// OperationFinishedMsg tells the packages screen a progress run reconciled,
// so the installed list must be refetched.
type OperationFinishedMsg struct {
	Outcome *domain.Outcome
}
