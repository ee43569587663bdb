// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// OutputPort defines the interface for user-facing command output.
// Implemented by the CLI adapter in text and JSON variants.
type OutputPort interface {
	// Success reports a successful result, with optional structured data
	// rendered verbatim in JSON mode.
	Success(message string, data any) error

	// Error reports a failure to the user.
	Error(message string) error

	// Info prints supplementary information.
	Info(message string) error

	// Progress reports intermediate progress on stderr.
	Progress(message string) error

	// Table outputs tabular data.
	Table(headers []string, rows [][]string) error

	// IsQuiet reports whether non-essential output is suppressed.
	IsQuiet() bool
}

// OperationResult is the structured result of a reconciled operation,
// emitted on stdout in JSON mode.
type OperationResult struct {
	Operation string   `json:"operation"`
	Package   string   `json:"package,omitempty"`
	Status    string   `json:"status"`
	Details   []string `json:"details,omitempty"`
	TimedOut  bool     `json:"timed_out,omitempty"`
	Duration  string   `json:"duration,omitempty"`
}

// ListResult is the structured result of the list command.
type ListResult struct {
	Packages []InstalledPackage `json:"packages"`
	Total    int                `json:"total"`
}

// StatusResult is the structured result of the status command.
type StatusResult struct {
	InProgress bool   `json:"installation_in_progress"`
	Package    string `json:"package,omitempty"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
}

// NewOperationResult builds an OperationResult from a reconciled outcome.
func NewOperationResult(outcome Outcome, duration string) OperationResult {
	result := OperationResult{
		Operation: string(outcome.Operation.Kind),
		Status:    outcome.Status.String(),
		TimedOut:  outcome.TimedOut,
		Duration:  duration,
	}

	if outcome.Operation.Kind != KindRestore {
		result.Package = outcome.Operation.Key
	}

	if detail := CleanMessage(outcome.Message, outcome.Operation.Key); detail != "" && !outcome.Succeeded() {
		result.Details = []string{detail}
	}

	return result
}
