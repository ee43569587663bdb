// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides filesystem locations following the XDG base
// directory specification.
package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// GetFlowdeckConfigDir returns the directory holding flowdeck's config file.
func GetFlowdeckConfigDir() string {
	return GetFlowdeckConfigDirWithEnv(os.Getenv("XDG_CONFIG_HOME"))
}

// GetFlowdeckConfigDirWithEnv returns the config directory with a custom
// environment override for testing.
func GetFlowdeckConfigDirWithEnv(xdgConfigHome string) string {
	configHome := GetXDGConfigHomeWithEnv(xdgConfigHome)
	if configHome == "" {
		return ""
	}

	return filepath.Join(configHome, "flowdeck")
}

// GetXDGConfigHome returns the XDG config directory.
func GetXDGConfigHome() string {
	return GetXDGConfigHomeWithEnv(os.Getenv("XDG_CONFIG_HOME"))
}

// GetXDGConfigHomeWithEnv returns the XDG config directory with a custom
// environment override for testing.
func GetXDGConfigHomeWithEnv(xdgConfigHome string) string {
	if xdgConfigHome != "" {
		return xdgConfigHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}

	return ""
}

// GetXDGDataHome returns the XDG data directory.
func GetXDGDataHome() string {
	return GetXDGDataHomeWithEnv(os.Getenv("XDG_DATA_HOME"))
}

// GetXDGDataHomeWithEnv returns the XDG data directory with a custom
// environment override for testing.
func GetXDGDataHomeWithEnv(xdgDataHome string) string {
	if xdgDataHome != "" {
		return xdgDataHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}

	return ""
}

// GetLockPath returns the path of the cross-process operation lock file.
func GetLockPath() string {
	return filepath.Join(os.TempDir(), "flowdeck.lock")
}

// ExpandPath expands ~ and XDG environment variable prefixes.
func ExpandPath(path string) string {
	return ExpandPathWithEnv(path, "", "")
}

// ExpandPathWithEnv expands paths with custom XDG environment variables for testing.
func ExpandPathWithEnv(path, xdgConfigHome, xdgDataHome string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	if after, found := strings.CutPrefix(path, "$XDG_CONFIG_HOME"); found {
		configHome := xdgConfigHome
		if configHome == "" {
			configHome = GetXDGConfigHome()
		}

		return configHome + after
	}

	if after, found := strings.CutPrefix(path, "$XDG_DATA_HOME"); found {
		dataHome := xdgDataHome
		if dataHome == "" {
			dataHome = GetXDGDataHome()
		}

		return dataHome + after
	}

	return path
}
