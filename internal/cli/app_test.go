// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/domain"
)

func TestNewCLI(t *testing.T) {
	t.Parallel()

	cliApp := NewCLI()

	require.NotNil(t, cliApp)
	require.NotNil(t, cliApp.app)
	require.Equal(t, "flowdeck", cliApp.app.Name)
	require.NotEmpty(t, cliApp.app.Usage)
	require.NotEmpty(t, cliApp.app.Description)
	require.NotEmpty(t, cliApp.app.Commands)
}

func TestCLI_CreateAllCommands(t *testing.T) {
	t.Parallel()

	cliApp := NewCLI()
	commands := cliApp.createAllCommands()

	require.NotEmpty(t, commands)

	commandNames := make(map[string]bool)
	for _, cmd := range commands {
		commandNames[cmd.Name] = true
	}

	expectedCommands := []string{"install", "uninstall", "restore", "list", "status", "flow", "version"}
	for _, expected := range expectedCommands {
		require.True(t, commandNames[expected], "command %s should exist", expected)
	}
}

func TestCLI_InitConfigFlagValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     bool
		plain    bool
		color    string
		wantCode int
		wantErr  bool
	}{
		{
			name:  "defaults are valid",
			color: "auto",
		},
		{
			name:  "json alone is valid",
			json:  true,
			color: "auto",
		},
		{
			name:     "json and plain together rejected",
			json:     true,
			plain:    true,
			color:    "auto",
			wantCode: domain.ExitUsageError,
			wantErr:  true,
		},
		{
			name:     "invalid color value rejected",
			color:    "sometimes",
			wantCode: domain.ExitUsageError,
			wantErr:  true,
		},
		{
			name:  "always color is valid",
			color: "always",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cliApp := &CLI{
				json:  testCase.json,
				plain: testCase.plain,
				color: testCase.color,
			}

			_, err := cliApp.initConfig(t.Context(), nil)

			if !testCase.wantErr {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			var exitErr *domain.ExitError

			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, testCase.wantCode, exitErr.Code)
		})
	}
}

func TestCLI_ProgressLabel(t *testing.T) {
	t.Parallel()

	cliApp := &CLI{}

	tests := []struct {
		name string
		op   domain.Operation
		want string
	}{
		{
			name: "install",
			op:   domain.NewInstall("pandas"),
			want: "Installing pandas...",
		},
		{
			name: "uninstall",
			op:   domain.NewUninstall("numpy"),
			want: "Uninstalling numpy...",
		},
		{
			name: "restore",
			op:   domain.NewRestore(),
			want: "Restoring base environment...",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.want, cliApp.progressLabel(testCase.op))
		})
	}
}

func TestCLI_ConfirmAutoYes(t *testing.T) {
	t.Parallel()

	cliApp := &CLI{yes: true}

	confirmed, err := cliApp.confirm("Proceed?", "testing auto-yes")
	require.NoError(t, err)
	require.True(t, confirmed)
}

func TestCLI_MapRunError(t *testing.T) {
	t.Parallel()

	cliApp := &CLI{}
	op := domain.NewInstall("pandas")

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "another instance holds the lock",
			err:      domain.ErrAnotherInstanceRunning,
			wantCode: domain.ExitLockedError,
		},
		{
			name:     "operation already in flight",
			err:      domain.ErrOperationInFlight,
			wantCode: domain.ExitLockedError,
		},
		{
			name:     "invalid operation",
			err:      domain.ErrInvalidOperation,
			wantCode: domain.ExitUsageError,
		},
		{
			name:     "unclassified error",
			err:      domain.ErrBackendUnreachable,
			wantCode: domain.ExitGeneralError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := cliApp.mapRunError(testCase.err, op)

			var exitErr *domain.ExitError

			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, testCase.wantCode, exitErr.Code)
			require.ErrorIs(t, err, testCase.err)
		})
	}
}

func TestCLI_MapBackendError(t *testing.T) {
	t.Parallel()

	cliApp := &CLI{}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "unreachable backend",
			err:      domain.ErrBackendUnreachable,
			wantCode: domain.ExitNetworkError,
		},
		{
			name:     "rejected request",
			err:      domain.ErrRequestRejected,
			wantCode: domain.ExitNetworkError,
		},
		{
			name:     "other error",
			err:      domain.ErrInvalidOperation,
			wantCode: domain.ExitGeneralError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := cliApp.mapBackendError(testCase.err, "failed")

			var exitErr *domain.ExitError

			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, testCase.wantCode, exitErr.Code)
		})
	}
}
