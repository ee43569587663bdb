// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for flowdeck.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowdeck/flowdeck/internal/cli"
	"github.com/flowdeck/flowdeck/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Ctrl+C cancels the context; an in-flight operation keeps running in
	// the backend, only the wait for its result is abandoned.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewCLI()

	if err := app.Run(ctx, os.Args); err != nil {
		// All errors must be ExitError with specific codes
		exitErr := &domain.ExitError{}
		if errors.As(err, &exitErr) {
			// Error message to stderr only
			fmt.Fprintf(os.Stderr, "%s\n", exitErr.Message)

			return exitErr.Code
		}

		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Interrupted\n")

			return domain.ExitInterruptError
		}

		// Fallback for unexpected errors (should not happen)
		fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)

		return domain.ExitGeneralError
	}

	return domain.ExitSuccess
}
