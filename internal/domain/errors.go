// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors.
var (
	ErrOperationInFlight      = errors.New("another operation is already in flight")
	ErrInvalidOperation       = errors.New("invalid operation")
	ErrInvalidPackageName     = errors.New("invalid package name")
	ErrBackendUnreachable     = errors.New("backend unreachable")
	ErrRequestRejected        = errors.New("request rejected by backend")
	ErrAnotherInstanceRunning = errors.New("another flowdeck instance is running")
)

// Exit codes following Unix conventions.
const (
	ExitSuccess        = 0  // Command completed successfully
	ExitGeneralError   = 1  // General errors
	ExitUsageError     = 2  // Invalid arguments/usage
	ExitConfigError    = 3  // Configuration issues
	ExitNotFoundError  = 5  // Package not found
	ExitLockedError    = 10 // Another instance holds the operation lock
	ExitNetworkError   = 11 // Backend unreachable or request failed
	ExitTimeoutError   = 13 // Operation exceeded the hard timeout
	ExitInterruptError = 14 // User Ctrl+C interrupt
	ExitInstallError   = 20 // Package installation failed
	ExitUninstallError = 21 // Package uninstallation failed
	ExitRestoreError   = 22 // Environment restore failed
)

// ExitError provides specific exit codes for different failure modes.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// NewExitError creates an ExitError with the specified code and message.
func NewExitError(code int, message string, err error) *ExitError {
	return &ExitError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// OutcomeExitCode maps a reconciled outcome onto the exit-code taxonomy.
func OutcomeExitCode(outcome Outcome) int {
	if outcome.Succeeded() {
		return ExitSuccess
	}

	if outcome.TimedOut {
		return ExitTimeoutError
	}

	switch outcome.Operation.Kind {
	case KindInstall:
		return ExitInstallError
	case KindUninstall:
		return ExitUninstallError
	case KindRestore:
		return ExitRestoreError
	default:
		return ExitGeneralError
	}
}

// ErrorInfo provides user-friendly error information.
type ErrorInfo struct {
	Message     string   // User-friendly message
	Suggestions []string // Actionable suggestions
	ShowDetails bool     // Whether to show technical details
}

// getErrorMatchers returns error patterns and their corresponding info.
func getErrorMatchers() []struct {
	patterns []string
	getInfo  func(string, bool) ErrorInfo
} {
	return []struct {
		patterns []string
		getInfo  func(string, bool) ErrorInfo
	}{
		{
			patterns: []string{"unreachable", "connection refused", "no such host", "dial tcp"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Cannot reach the Flowdeck backend",
					Suggestions: []string{"Check that the backend is running", "Verify server.base_url in your config"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"unauthorized", "forbidden", "api key"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Backend rejected the credentials",
					Suggestions: []string{"Set FLOWDECK_API_KEY or server.api_key in your config"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"invalid package name"},
			getInfo: func(pkg string, verbose bool) ErrorInfo {
				if pkg != "" {
					return ErrorInfo{
						Message:     "Package name '" + pkg + "' is not valid",
						Suggestions: []string{"Use letters, digits, dots, dashes and an optional version spec like pkg==1.2.3"},
						ShowDetails: verbose,
					}
				}
				return ErrorInfo{
					Message:     "Package name is not valid",
					Suggestions: []string{"Use letters, digits, dots, dashes and an optional version spec"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"already in flight", "installation in progress"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "An operation is already running",
					Suggestions: []string{"Wait for it to finish", "Use 'flowdeck status' to inspect it"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"another flowdeck instance"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Another flowdeck process holds the operation lock",
					Suggestions: []string{"Let the other operation finish before starting a new one"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"timed out", "timeout", "deadline exceeded"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "The operation timed out",
					Suggestions: []string{"Try again", "Raise --timeout for slow package resolutions"},
					ShowDetails: verbose,
				}
			},
		},
	}
}

// GetErrorInfo analyzes an error and returns user-friendly information.
func GetErrorInfo(err error, packageName string, verbose bool) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	errStr := strings.ToLower(err.Error())

	for _, matcher := range getErrorMatchers() {
		for _, pattern := range matcher.patterns {
			if strings.Contains(errStr, pattern) {
				return matcher.getInfo(packageName, verbose)
			}
		}
	}

	return ErrorInfo{
		Message:     "Operation failed",
		Suggestions: []string{"Run with --verbose for more details"},
		ShowDetails: verbose,
	}
}

// FormatErrorMessage formats an error for display.
func FormatErrorMessage(err error, packageName string, verbose bool) string {
	info := GetErrorInfo(err, packageName, verbose)

	var result strings.Builder

	if packageName != "" {
		result.WriteString("✗ ")
		result.WriteString(packageName)

		if info.Message != "" {
			result.WriteString(": ")
			result.WriteString(info.Message)
		}
	} else {
		result.WriteString("✗ ")
		result.WriteString(info.Message)
	}

	if info.ShowDetails && err != nil {
		result.WriteString("\n  Technical details: ")
		result.WriteString(err.Error())
	}

	if len(info.Suggestions) > 0 && !verbose {
		result.WriteString(" (")
		result.WriteString(info.Suggestions[0])
		result.WriteString(")")
	} else if len(info.Suggestions) > 0 && verbose {
		result.WriteString("\n  Suggestions:")

		for _, suggestion := range info.Suggestions {
			result.WriteString("\n    • ")
			result.WriteString(suggestion)
		}
	}

	return result.String()
}
