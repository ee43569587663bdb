// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package tui implements the interactive terminal interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/flowdeck/flowdeck/internal/adapters/api"
	"github.com/flowdeck/flowdeck/internal/application"
	"github.com/flowdeck/flowdeck/internal/config"
	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/platform"
	"github.com/flowdeck/flowdeck/internal/tui/models"
	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

// requestTimeout bounds one HTTP round trip from TUI screens.
const requestTimeout = 30 * time.Second

// ErrNoTerminal is returned when the TUI is launched in a non-terminal environment.
var ErrNoTerminal = errors.New("TUI requires a terminal environment")

// Screen represents different TUI screens.
type Screen int

// Define screen constants (use models constants for compatibility).
const (
	MenuScreen     Screen = Screen(models.MenuScreen)
	PackagesScreen Screen = Screen(models.PackagesScreen)
	ProgressScreen Screen = Screen(models.ProgressScreen)
	StatusScreen   Screen = Screen(models.StatusScreen)
	HelpScreen     Screen = Screen(models.HelpScreen)
)

// Deps bundles the backend services the screens need.
type Deps struct {
	Runner   *application.Runner
	Packages *application.PackagesService
	Health   domain.HealthClient
	Timings  application.Timings
}

// App represents the main TUI application following the tree-of-models
// pattern. It delegates content to screen models and handles navigation.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type App struct {
	width         int
	height        int
	styles        *styles.Styles
	deps          Deps
	currentScreen Screen
	contentModel  tea.Model
	models        map[Screen]tea.Model // Cache of initialized models
	ctx           context.Context

	quitting bool
}

// NewApp creates a new TUI application rooted at the menu screen.
func NewApp(ctx context.Context, deps Deps) *App {
	app := &App{
		styles:        styles.New(),
		deps:          deps,
		currentScreen: MenuScreen,
		models:        make(map[Screen]tea.Model),
		ctx:           ctx,
	}

	menuModel := models.NewMenu(app.styles)
	app.contentModel = menuModel
	app.models[MenuScreen] = menuModel

	return app
}

// Run starts the TUI application with the provided context.
func (a *App) Run(ctx context.Context) error {
	program := tea.NewProgram(
		a,
		tea.WithAltScreen(),  // Use alternate screen buffer
		tea.WithContext(ctx), // Use the provided context
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI application failed: %w", err)
	}

	return nil
}

// Init implements the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return a.contentModel.Init()
}

// Update implements the tea.Model interface with global navigation handling.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		var cmd tea.Cmd

		a.contentModel, cmd = a.contentModel.Update(msg)

		return a, cmd

	case models.NavigateMsg:
		return a.handleNavigation(msg)

	case tea.KeyMsg:
		return a.handleKeyMessage(msg)

	default:
		// Forward all other messages to content model
		var cmd tea.Cmd

		a.contentModel, cmd = a.contentModel.Update(msg)

		return a, cmd
	}
}

// View implements the tea.Model interface.
func (a *App) View() string {
	if a.quitting {
		return models.GoodbyeMessage
	}

	content := a.contentModel.View()

	// Center the content vertically, except for the packages browser
	// which manages its own layout.
	contentHeight := lipgloss.Height(content)
	availableHeight := a.height - contentHeight

	if availableHeight > 0 && a.currentScreen != PackagesScreen {
		topPadding := availableHeight / 2

		content = lipgloss.NewStyle().
			PaddingTop(topPadding).
			Render(content)
	}

	return content
}

// GetCurrentScreen returns the current screen (for testing).
func (a *App) GetCurrentScreen() Screen {
	return a.currentScreen
}

// GetContentModel returns the current content model (for testing).
func (a *App) GetContentModel() tea.Model {
	return a.contentModel
}

// Launch starts the interactive TUI interface against the configured backend.
func Launch(ctx context.Context) error {
	if !isTerminal() {
		return fmt.Errorf("terminal check failed: %w", ErrNoTerminal)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey, requestTimeout)

	timings := application.Timings{
		StatusInterval:   cfg.Poll.StatusInterval.Std(),
		HealthInterval:   cfg.Poll.HealthInterval.Std(),
		SettleDelay:      cfg.Poll.SettleDelay.Std(),
		OperationTimeout: cfg.Poll.OperationTimeout.Std(),
	}

	// No notifier: the progress screen renders the notification itself.
	runner := application.NewRunner(client, client, nil, application.NewFileLock(platform.GetLockPath()), timings)
	service := application.NewPackagesService(client)

	app := NewApp(ctx, Deps{
		Runner:   runner,
		Packages: service,
		Health:   client,
		Timings:  timings,
	})

	return app.Run(ctx)
}

// Unexported methods

// handleKeyMessage processes keyboard input, handling global quit keys first.
func (a *App) handleKeyMessage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The progress screen owns all its keys so an in-flight operation
	// cannot be abandoned with q.
	if a.currentScreen != ProgressScreen && msg.String() == "ctrl+c" {
		a.quitting = true

		return a, tea.Quit
	}

	var cmd tea.Cmd

	a.contentModel, cmd = a.contentModel.Update(msg)

	return a, cmd
}

// handleNavigation switches the content model to the requested screen.
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (a *App) handleNavigation(msg models.NavigateMsg) (tea.Model, tea.Cmd) {
	screen := Screen(msg.Screen)

	var initCmd tea.Cmd

	switch screen {
	case ProgressScreen:
		// Progress screens are single-use: one per operation.
		data, ok := msg.Data.(models.OperationData)
		if !ok {
			return a, nil
		}

		progressModel := models.NewProgress(a.ctx, a.styles, a.deps.Runner, data.Operation, a.deps.Timings.OperationTimeout)
		a.models[ProgressScreen] = progressModel
		a.contentModel = progressModel
		initCmd = progressModel.Init()

	default:
		model, cached := a.models[screen]
		if !cached {
			model = a.createModel(screen)
			if model == nil {
				return a, nil
			}

			a.models[screen] = model
			initCmd = model.Init()
		}

		a.contentModel = model
	}

	a.currentScreen = screen

	cmds := []tea.Cmd{initCmd}

	// Size the new model immediately so it renders correctly.
	if a.width > 0 {
		var sizeCmd tea.Cmd

		a.contentModel, sizeCmd = a.contentModel.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		cmds = append(cmds, sizeCmd)
	}

	// A finished operation invalidates the packages list.
	if finished, ok := msg.Data.(models.OperationFinishedMsg); ok {
		var refreshCmd tea.Cmd

		a.contentModel, refreshCmd = a.contentModel.Update(finished)
		cmds = append(cmds, refreshCmd)
	}

	return a, tea.Batch(cmds...)
}

// createModel builds a screen model on first navigation.
func (a *App) createModel(screen Screen) tea.Model {
	switch screen {
	case MenuScreen:
		return models.NewMenu(a.styles)
	case PackagesScreen:
		return models.NewPackages(a.ctx, a.styles, a.deps.Packages)
	case StatusScreen:
		return models.NewStatus(a.ctx, a.styles, a.deps.Packages, a.deps.Health)
	case HelpScreen:
		return models.NewHelp(a.styles)
	case ProgressScreen:
		// Progress needs an operation; built in handleNavigation.
		return nil
	default:
		return nil
	}
}

// isTerminal checks if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
