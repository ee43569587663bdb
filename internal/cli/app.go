// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the command-line interface for flowdeck.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/flowdeck/flowdeck/internal/console"
	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/tui"
)

// HelpFlag is the long-form help flag recognized anywhere in the arguments.
const HelpFlag = "--help"

// Version is the build version, overridden at link time.
var Version = "dev" //nolint:gochecknoglobals

// CLI provides a clean, composable command-line interface following
// hexagonal architecture. Commands talk to the backend through the
// application layer only.
type CLI struct {
	app     *cli.Command
	verbose bool
	json    bool
	quiet   bool
	plain   bool
	color   string        // "auto", "always", "never"
	timeout time.Duration // Hard ceiling on one package operation
	yes     bool          // Auto-accept all prompts
}

// NewCLI creates the flowdeck command tree.
func NewCLI() *CLI {
	app := &CLI{}

	app.app = &cli.Command{
		Name:    "flowdeck",
		Usage:   "Manage packages in a running Flowdeck backend",
		Version: Version,
		Suggest: true, // Enable command and flag suggestions
		Description: `Install, uninstall and restore Python packages in a running Flowdeck
backend, reconciling each operation against the backend's status endpoint.

ESSENTIAL COMMANDS:
  install --package pandas     Install a package into the backend environment
  uninstall --package pandas   Remove a package from the backend environment
  restore                      Restore the environment to its base state
  list                         Show installed packages
  status                       Show the backend's last operation result

QUICK START:
  flowdeck list                         # See what the backend has installed
  flowdeck install --package "numpy<2"  # Install with a version constraint
  flowdeck status --json                # Script against the last result

SUPPORT:
  https://github.com/flowdeck/flowdeck/issues    # Report bugs`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "help",
				Usage:   "show help information",
				Aliases: []string{"h"},
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show progress messages to stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "suppress non-essential output",
				Aliases:     []string{"q"},
				Destination: &app.quiet,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "color output mode: auto, always, never",
				Value:       "auto",
				Destination: &app.color,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "hard timeout for one package operation (0 = use config)",
				Destination: &app.timeout,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "automatically answer yes to all prompts",
				Destination: &app.yes,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return app.initConfig(ctx, cmd)
		},
		Action:          app.defaultAction,
		Commands:        app.createAllCommands(),
		CommandNotFound: app.commandNotFound,
	}

	return app
}

// Run executes the CLI application.
func (app *CLI) Run(ctx context.Context, args []string) error {
	return app.app.Run(ctx, args)
}

// createAllCommands wires every flowdeck command.
func (app *CLI) createAllCommands() []*cli.Command {
	return []*cli.Command{
		app.createInstallCommand(),
		app.createUninstallCommand(),
		app.createRestoreCommand(),
		app.createListCommand(),
		app.createStatusCommand(),
		app.createFlowCommand(),
		app.createVersionCommand(),
	}
}

// defaultAction runs when no command is provided.
func (app *CLI) defaultAction(ctx context.Context, _ *cli.Command) error {
	// Check if help flags are present anywhere in arguments
	args := os.Args[1:] // Skip program name
	for _, arg := range args {
		if arg == "-h" || arg == HelpFlag {
			app.showConciseHelp()

			return nil
		}
	}

	// If any arguments provided but no valid command found, show help instead of TUI
	if len(args) > 0 {
		app.showConciseHelp()
		fmt.Fprintf(os.Stderr, "\nFor complete help, use: flowdeck --help\n")

		return nil
	}

	// Launch TUI only when no arguments provided
	if err := tui.Launch(ctx); err != nil {
		// TUI errors are usually terminal-related
		if app.verbose {
			return domain.NewExitError(domain.ExitGeneralError, fmt.Sprintf("Failed to launch TUI: %v", err), nil)
		}

		return domain.NewExitError(domain.ExitGeneralError, "Failed to launch interactive interface (terminal required)", nil)
	}

	return nil
}

// initConfig validates global flags and configures output settings.
func (app *CLI) initConfig(ctx context.Context, _ *cli.Command) (context.Context, error) {
	if app.json && app.plain {
		return ctx, domain.NewExitError(domain.ExitUsageError, "cannot use both --json and --plain flags simultaneously", nil)
	}

	switch app.color {
	case "auto", "always", "never":
		// Valid values
	default:
		return ctx, domain.NewExitError(domain.ExitUsageError, "invalid --color value: must be auto, always, or never", nil)
	}

	// Apply color override to environment
	switch app.color {
	case "never":
		_ = os.Setenv("NO_COLOR", "1")
	case "always":
		_ = os.Unsetenv("NO_COLOR")
	}
	// "auto" uses default TTY detection

	console.DefaultOutput.SetMode(app.verbose, app.json, app.plain)

	return ctx, nil
}

// commandNotFound handles unknown commands.
func (app *CLI) commandNotFound(_ context.Context, _ *cli.Command, command string) {
	// Check if help flags are present anywhere in arguments
	args := os.Args[1:] // Skip program name
	for _, arg := range args {
		if arg == "-h" || arg == HelpFlag {
			app.showConciseHelp()
			os.Exit(domain.ExitSuccess)
		}
	}

	console.DefaultOutput.Errorf("'%s' is not a command.", command)
	fmt.Fprintf(os.Stderr, "\nRun 'flowdeck --help' to see available commands.\n")

	os.Exit(domain.ExitNotFoundError)
}

// showConciseHelp displays user-friendly help when no command is provided.
func (app *CLI) showConciseHelp() {
	if app.json {
		// JSON mode - provide structured help data
		console.DefaultOutput.JSONResult("success", map[string]any{
			"name":    "flowdeck",
			"version": Version,
			"usage":   "flowdeck <command> [args...]",
			"help":    "use 'flowdeck --help' for complete documentation",
		})

		return
	}

	// Brief help - immediate sense of what this tool does
	fmt.Printf("flowdeck %s - Manage packages in a running Flowdeck backend\n\n", Version)

	fmt.Printf("%s\n", console.DefaultOutput.Header("ESSENTIAL COMMANDS"))
	fmt.Printf("  install --package <spec>    Install a package (pip-style spec)\n")
	fmt.Printf("  uninstall --package <name>  Remove a package\n")
	fmt.Printf("  restore                     Restore the base environment\n")
	fmt.Printf("  list                        Show installed packages\n")
	fmt.Printf("  status                      Show the last operation result\n\n")

	fmt.Printf("%s\n", console.DefaultOutput.Header("GET STARTED"))
	fmt.Printf("  flowdeck list\n")
	fmt.Printf("  flowdeck install --package pandas\n\n")

	fmt.Printf("Complete help:  flowdeck --help\n")
	fmt.Printf("Command docs:   flowdeck <command> --help\n")
}
