// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"strings"

	"github.com/flowdeck/flowdeck/internal/console"
	"github.com/flowdeck/flowdeck/internal/domain"
)

// ConsoleNotifier implements domain.Notifier on the console, one line per
// reconciled operation.
type ConsoleNotifier struct {
	output *console.OutputState
}

// NewConsoleNotifier creates a notifier writing through the console state.
func NewConsoleNotifier(output *console.OutputState) *ConsoleNotifier {
	return &ConsoleNotifier{output: output}
}

// Notify renders the event to stderr.
func (n *ConsoleNotifier) Notify(event domain.NotificationEvent) {
	line := event.Title
	if len(event.Details) > 0 {
		line += ": " + strings.Join(event.Details, "; ")
	}

	if event.Severity == domain.SeveritySuccess {
		n.output.Successf("%s", line)

		return
	}

	n.output.Errorf("%s", line)
}
