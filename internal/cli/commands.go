// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	cli "github.com/urfave/cli/v3"

	"github.com/flowdeck/flowdeck/internal/adapters/api"
	cliAdapter "github.com/flowdeck/flowdeck/internal/adapters/cli"
	"github.com/flowdeck/flowdeck/internal/application"
	"github.com/flowdeck/flowdeck/internal/config"
	"github.com/flowdeck/flowdeck/internal/console"
	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/flowtree"
	"github.com/flowdeck/flowdeck/internal/platform"
)

// requestTimeout bounds a single HTTP round trip to the backend. The
// operation-level timeout is enforced by the runner, not the client.
const requestTimeout = 30 * time.Second

// ErrOperationCanceled is returned when the user interrupts a running operation.
var ErrOperationCanceled = errors.New("operation canceled")

// backend builds the configured API client. Configuration errors map to the
// config exit code so scripts can tell them apart from backend failures.
func (app *CLI) backend() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, domain.NewExitError(domain.ExitConfigError, "failed to load configuration", err)
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey, requestTimeout)

	return cfg, client, nil
}

// newRunner wires the operation runner with the console notifier and the
// cross-process lock.
func (app *CLI) newRunner(cfg *config.Config, client *api.Client) *application.Runner {
	timings := application.Timings{
		StatusInterval:   cfg.Poll.StatusInterval.Std(),
		HealthInterval:   cfg.Poll.HealthInterval.Std(),
		SettleDelay:      cfg.Poll.SettleDelay.Std(),
		OperationTimeout: cfg.Poll.OperationTimeout.Std(),
	}
	if app.timeout > 0 {
		timings.OperationTimeout = app.timeout
	}

	notifier := cliAdapter.NewConsoleNotifier(console.DefaultOutput)
	lock := application.NewFileLock(platform.GetLockPath())

	return application.NewRunner(client, client, notifier, lock, timings)
}

// createInstallCommand creates the install command with flag-based interface.
func (app *CLI) createInstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install a package into the backend environment",
		Description: `Install a Python package into the running backend environment and wait
for the backend to report the result.

The package accepts pip-style version constraints:

Examples:
  flowdeck install --package pandas         # Latest version
  flowdeck install --package "numpy<2"      # With version constraint
  flowdeck install -p requests --json       # Output JSON result`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "package to install, with optional version constraint",
			},
		},
		Action: app.runInstall,
	}
}

// runInstall handles the install command execution.
func (app *CLI) runInstall(ctx context.Context, cmd *cli.Command) error {
	spec := cmd.String("package")
	if spec == "" {
		return domain.NewExitError(domain.ExitUsageError, "specify --package with the package to install", nil)
	}

	if err := domain.ValidatePackageSpec(spec); err != nil {
		return domain.NewExitError(domain.ExitUsageError, fmt.Sprintf("invalid package spec %q", spec), err)
	}

	return app.runOperation(ctx, domain.NewInstall(spec))
}

// createUninstallCommand creates the uninstall command.
func (app *CLI) createUninstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "uninstall",
		Usage: "Remove a package from the backend environment",
		Description: `Remove a Python package from the running backend environment.

Examples:
  flowdeck uninstall --package pandas    # Prompts for confirmation
  flowdeck uninstall -p pandas --yes     # Skip the prompt`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "package to uninstall",
			},
		},
		Action: app.runUninstall,
	}
}

// runUninstall handles the uninstall command execution.
func (app *CLI) runUninstall(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("package")
	if name == "" {
		return domain.NewExitError(domain.ExitUsageError, "specify --package with the package to uninstall", nil)
	}

	if err := domain.ValidatePackageSpec(name); err != nil {
		return domain.NewExitError(domain.ExitUsageError, fmt.Sprintf("invalid package name %q", name), err)
	}

	confirmed, err := app.confirm(
		fmt.Sprintf("Uninstall %s?", name),
		"The package is removed from the backend environment immediately.",
	)
	if err != nil {
		return err
	}

	if !confirmed {
		return domain.NewExitError(domain.ExitInterruptError, "uninstall canceled", ErrOperationCanceled)
	}

	return app.runOperation(ctx, domain.NewUninstall(name))
}

// createRestoreCommand creates the restore command.
func (app *CLI) createRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore the backend environment to its base state",
		Description: `Remove all user-installed packages and restore the backend to its
shipped dependency set. The backend may restart while restoring; flowdeck
waits for it to come back and settle before reporting the result.

Examples:
  flowdeck restore          # Prompts for confirmation
  flowdeck restore --yes    # Skip the prompt`,
		Action: app.runRestore,
	}
}

// runRestore handles the restore command execution.
func (app *CLI) runRestore(ctx context.Context, _ *cli.Command) error {
	confirmed, err := app.confirm(
		"Restore the base environment?",
		"All user-installed packages are removed. The backend may restart.",
	)
	if err != nil {
		return err
	}

	if !confirmed {
		return domain.NewExitError(domain.ExitInterruptError, "restore canceled", ErrOperationCanceled)
	}

	return app.runOperation(ctx, domain.NewRestore())
}

// runOperation drives one package operation to reconciliation and maps the
// outcome onto the exit-code taxonomy.
func (app *CLI) runOperation(ctx context.Context, op domain.Operation) error {
	output := cliAdapter.OutputFromFlags(app.json, app.quiet)

	cfg, client, err := app.backend()
	if err != nil {
		return err
	}

	runner := app.newRunner(cfg, client)

	if !output.IsQuiet() {
		_ = output.Progress(app.progressLabel(op))
	}

	started := time.Now()

	outcome, err := runner.Run(ctx, op)
	if err != nil {
		return app.mapRunError(err, op)
	}

	if outcome == nil {
		// Context canceled before reconciliation, usually Ctrl+C.
		return domain.NewExitError(domain.ExitInterruptError, "operation interrupted", ErrOperationCanceled)
	}

	duration := fmt.Sprintf("%.2fs", time.Since(started).Seconds())

	if app.json {
		if err := output.Success("", domain.NewOperationResult(*outcome, duration)); err != nil {
			return domain.NewExitError(domain.ExitGeneralError, "failed to output results", err)
		}
	}

	if code := domain.OutcomeExitCode(*outcome); code != domain.ExitSuccess {
		return domain.NewExitError(code, outcome.Message, nil)
	}

	return nil
}

// progressLabel returns the stderr progress line for an operation.
func (app *CLI) progressLabel(op domain.Operation) string {
	switch op.Kind {
	case domain.KindInstall:
		return fmt.Sprintf("Installing %s...", op.Key)
	case domain.KindUninstall:
		return fmt.Sprintf("Uninstalling %s...", op.Key)
	case domain.KindRestore:
		return "Restoring base environment..."
	default:
		return fmt.Sprintf("Running %s...", op.Kind)
	}
}

// mapRunError converts runner start failures into exit-coded errors.
func (app *CLI) mapRunError(err error, op domain.Operation) error {
	switch {
	case errors.Is(err, domain.ErrAnotherInstanceRunning):
		return domain.NewExitError(domain.ExitLockedError, "another flowdeck instance is running an operation", err)
	case errors.Is(err, domain.ErrOperationInFlight):
		return domain.NewExitError(domain.ExitLockedError, "an operation is already in flight", err)
	case errors.Is(err, domain.ErrInvalidOperation):
		return domain.NewExitError(domain.ExitUsageError, "invalid operation", err)
	default:
		return domain.NewExitError(domain.ExitGeneralError, domain.FormatErrorMessage(err, op.Key, app.verbose), err)
	}
}

// confirm asks the user to approve a destructive operation. Prompts are
// bypassed with --yes and when stdin is not a terminal.
func (app *CLI) confirm(title, description string) (bool, error) {
	if app.yes {
		return true, nil
	}

	if !console.DefaultOutput.IsTTY(os.Stdin.Fd()) {
		// Non-interactive use behaves like --yes so pipelines don't hang.
		return true, nil
	}

	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, domain.NewExitError(domain.ExitInterruptError, "prompt canceled", err)
	}

	return confirmed, nil
}

// createListCommand creates the list command.
func (app *CLI) createListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List packages installed in the backend environment",
		Description: `Show the packages currently installed in the backend environment.

Examples:
  flowdeck list           # Table of name and version
  flowdeck list --json    # Output as JSON`,
		Action: app.runList,
	}
}

// runList handles the list command execution.
func (app *CLI) runList(ctx context.Context, _ *cli.Command) error {
	output := cliAdapter.OutputFromFlags(app.json, app.quiet)

	_, client, err := app.backend()
	if err != nil {
		return err
	}

	service := application.NewPackagesService(client)

	packages, err := service.ListInstalled(ctx)
	if err != nil {
		return app.mapBackendError(err, "failed to list installed packages")
	}

	result := domain.ListResult{
		Packages: packages,
		Total:    len(packages),
	}

	if app.json {
		return output.Success("", result)
	}

	if app.plain {
		for _, pkg := range packages {
			console.DefaultOutput.PlainKeyValue(pkg.Name, pkg.Version)
		}

		return nil
	}

	if len(packages) == 0 {
		return output.Info("No packages installed")
	}

	rows := make([][]string, 0, len(packages))
	for _, pkg := range packages {
		version := pkg.Version
		if version == "" {
			version = "-"
		}

		rows = append(rows, []string{pkg.Name, version})
	}

	if err := output.Table([]string{"Name", "Version"}, rows); err != nil {
		return domain.NewExitError(domain.ExitGeneralError, "failed to output results", err)
	}

	return output.Info(fmt.Sprintf("\nTotal: %d packages installed", result.Total))
}

// createStatusCommand creates the status command.
func (app *CLI) createStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the backend's last operation result",
		Description: `Query the backend's installation status endpoint: whether an operation
is currently in progress and the last recorded result.

Examples:
  flowdeck status           # Human-readable status
  flowdeck status --json    # Output as JSON
  flowdeck status --clear   # Acknowledge and clear the last result`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "clear the backend's last recorded result",
			},
		},
		Action: app.runStatus,
	}
}

// runStatus handles the status command execution.
func (app *CLI) runStatus(ctx context.Context, cmd *cli.Command) error {
	output := cliAdapter.OutputFromFlags(app.json, app.quiet)

	_, client, err := app.backend()
	if err != nil {
		return err
	}

	service := application.NewPackagesService(client)

	if cmd.Bool("clear") {
		if err := service.ClearStatus(ctx); err != nil {
			return app.mapBackendError(err, "failed to clear status")
		}

		return output.Success("✓ Status cleared", nil)
	}

	status, err := service.Status(ctx)
	if err != nil {
		return app.mapBackendError(err, "failed to query status")
	}

	if app.json {
		return output.Success("", status)
	}

	if app.plain {
		console.DefaultOutput.PlainKeyValue("in_progress", fmt.Sprintf("%t", status.InProgress))
		if status.Package != "" {
			console.DefaultOutput.PlainKeyValue("package", status.Package)
			console.DefaultOutput.PlainKeyValue("status", status.Status)
		}

		return nil
	}

	if status.InProgress {
		_ = output.Info("An operation is in progress")
	} else {
		_ = output.Info("No operation in progress")
	}

	if status.Package != "" {
		line := fmt.Sprintf("Last result: %s %s", status.Package, status.Status)
		if status.Message != "" {
			line += " (" + status.Message + ")"
		}

		return output.Info(line)
	}

	return nil
}

// mapBackendError converts client errors from read-only commands into
// exit-coded errors.
func (app *CLI) mapBackendError(err error, message string) error {
	if errors.Is(err, domain.ErrBackendUnreachable) {
		return domain.NewExitError(domain.ExitNetworkError, "cannot reach the Flowdeck backend", err)
	}

	if errors.Is(err, domain.ErrRequestRejected) {
		return domain.NewExitError(domain.ExitNetworkError, message, err)
	}

	return domain.NewExitError(domain.ExitGeneralError, message, err)
}

// createFlowCommand creates the flow inspection command group.
func (app *CLI) createFlowCommand() *cli.Command {
	return &cli.Command{
		Name:  "flow",
		Usage: "Inspect exported flow files",
		Commands: []*cli.Command{
			{
				Name:  "view",
				Usage: "Render a flow file as a component tree",
				Description: `Parse an exported flow JSON file and print its component graph as a
tree rooted at the flow's terminal component.

Examples:
  flowdeck flow view --file my-flow.json
  flowdeck flow view -f my-flow.json --json`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "path to the exported flow JSON file",
					},
				},
				Action: app.runFlowView,
			},
		},
	}
}

// runFlowView handles the flow view command execution.
func (app *CLI) runFlowView(_ context.Context, cmd *cli.Command) error {
	output := cliAdapter.OutputFromFlags(app.json, app.quiet)

	path := cmd.String("file")
	if path == "" {
		return domain.NewExitError(domain.ExitUsageError, "specify --file with the flow to view", nil)
	}

	file, err := os.Open(platform.ExpandPath(path)) //nolint:gosec
	if err != nil {
		return domain.NewExitError(domain.ExitNotFoundError, fmt.Sprintf("cannot open flow file %q", path), err)
	}
	defer file.Close() //nolint:errcheck

	graph, err := flowtree.Load(file)
	if err != nil {
		return domain.NewExitError(domain.ExitGeneralError, fmt.Sprintf("cannot parse flow file %q", path), err)
	}

	if app.json {
		return output.Success("", graph)
	}

	if err := graph.Render(os.Stdout); err != nil {
		return domain.NewExitError(domain.ExitGeneralError, "failed to render flow", err)
	}

	return nil
}

// createVersionCommand creates the version command.
func (app *CLI) createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			if app.json {
				console.DefaultOutput.JSONResult("success", map[string]any{
					"version": Version,
				})

				return nil
			}

			console.DefaultOutput.Result(Version)

			return nil
		},
	}
}
