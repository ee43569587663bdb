// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package console

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStderr(f func()) string {
	r, w, _ := os.Pipe()
	old := os.Stderr
	os.Stderr = w

	f()

	_ = w.Close()
	os.Stderr = old

	out, _ := io.ReadAll(r)

	return string(out)
}

func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)

	return string(out)
}

func TestOutputStateSetMode(t *testing.T) {
	o := &OutputState{}

	o.SetMode(true, false, true)
	assert.True(t, o.Verbose)
	assert.False(t, o.JSON)
	assert.True(t, o.Plain)

	o.SetMode(false, true, false)
	assert.False(t, o.Verbose)
	assert.True(t, o.JSON)
	assert.False(t, o.Plain)
}

func TestOutputStateBold(t *testing.T) {
	tests := []struct {
		name     string
		state    OutputState
		envVars  map[string]string
		input    string
		expected string
	}{
		{
			name:     "plain mode returns unformatted",
			state:    OutputState{Plain: true},
			input:    "packages",
			expected: "packages",
		},
		{
			name:     "json mode returns unformatted",
			state:    OutputState{JSON: true},
			input:    "packages",
			expected: "packages",
		},
		{
			name:     "NO_COLOR env disables formatting",
			state:    OutputState{},
			envVars:  map[string]string{"NO_COLOR": "1"},
			input:    "packages",
			expected: "packages",
		},
		{
			name:     "dumb terminal disables formatting",
			state:    OutputState{},
			envVars:  map[string]string{"TERM": "dumb"},
			input:    "packages",
			expected: "packages",
		},
		{
			name:     "non-TTY returns uppercase",
			state:    OutputState{},
			input:    "packages",
			expected: "PACKAGES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			assert.Equal(t, tt.expected, tt.state.Bold(tt.input))
		})
	}
}

func TestOutputStateProgressf(t *testing.T) {
	tests := []struct {
		name         string
		state        OutputState
		expectOutput bool
	}{
		{
			name:         "verbose mode outputs",
			state:        OutputState{Verbose: true},
			expectOutput: true,
		},
		{
			name:         "non-verbose suppresses output",
			state:        OutputState{Verbose: false},
			expectOutput: false,
		},
		{
			name:         "json mode suppresses output",
			state:        OutputState{Verbose: true, JSON: true},
			expectOutput: false,
		},
		{
			name:         "plain mode suppresses output",
			state:        OutputState{Verbose: true, Plain: true},
			expectOutput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStderr(func() {
				tt.state.Progressf("polling %s", "status")
			})

			if tt.expectOutput {
				assert.Contains(t, output, "polling status")
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

func TestOutputStateSuccessf(t *testing.T) {
	tests := []struct {
		name         string
		state        OutputState
		expectOutput bool
	}{
		{
			name:         "normal mode outputs with checkmark",
			state:        OutputState{},
			expectOutput: true,
		},
		{
			name:         "json mode suppresses output",
			state:        OutputState{JSON: true},
			expectOutput: false,
		},
		{
			name:         "plain mode suppresses output",
			state:        OutputState{Plain: true},
			expectOutput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStderr(func() {
				tt.state.Successf("installed %s", "pandas")
			})

			if tt.expectOutput {
				assert.Contains(t, output, "✓ installed pandas")
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

func TestOutputStateWarningf(t *testing.T) {
	tests := []struct {
		name     string
		state    OutputState
		expected string
	}{
		{
			name:     "normal mode uses warning symbol",
			state:    OutputState{},
			expected: "⚠ backend slow",
		},
		{
			name:     "plain mode uses text prefix",
			state:    OutputState{Plain: true},
			expected: "warning: backend slow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStderr(func() {
				tt.state.Warningf("backend %s", "slow")
			})

			assert.Contains(t, output, tt.expected)
		})
	}
}

func TestOutputStateErrorf(t *testing.T) {
	tests := []struct {
		name     string
		state    OutputState
		expected string
	}{
		{
			name:     "normal mode uses error symbol",
			state:    OutputState{},
			expected: "✗ install failed",
		},
		{
			name:     "plain mode uses text prefix",
			state:    OutputState{Plain: true},
			expected: "error: install failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStderr(func() {
				tt.state.Errorf("install %s", "failed")
			})

			assert.Contains(t, output, tt.expected)
		})
	}
}

func TestOutputStateJSONResult(t *testing.T) {
	o := &OutputState{}

	output := captureStdout(func() {
		o.JSONResult("success", map[string]any{
			"package": "pandas",
		})
	})

	var result map[string]any

	err := json.Unmarshal([]byte(output), &result)
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "pandas", result["package"])
}

func TestOutputStateErrorResult(t *testing.T) {
	o := &OutputState{JSON: true}

	var stdout string

	stderr := captureStderr(func() {
		stdout = captureStdout(func() {
			o.ErrorResult(errors.New("backend unreachable"), 11)
		})
	})

	var result map[string]any

	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "backend unreachable", result["error"])
	assert.InEpsilon(t, float64(11), result["code"], 0.001)

	assert.Contains(t, stderr, "backend unreachable")
}

func TestOutputStatePlainHelpers(t *testing.T) {
	o := &OutputState{Plain: true}

	output := captureStdout(func() {
		o.PlainKeyValue("pandas", "2.3.1")
		o.PlainList([]string{"numpy", "requests"})
	})

	assert.Equal(t, "pandas:2.3.1\nnumpy\nrequests\n", output)
}
