// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// specPattern accepts a package name with an optional version constraint,
// e.g. "pandas", "pandas==2.3.1", "requests>=2.25.0". It mirrors the
// backend's own validation so bad input fails fast, before any request.
var specPattern = regexp.MustCompile(
	`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?(([><=!~]+|===)[0-9]+(\.[0-9]+)*([a-zA-Z0-9._-]*)?)?$`,
)

// forbiddenSpecChars are command-injection characters rejected outright.
const forbiddenSpecChars = ";&|`$()"

// ValidatePackageSpec checks that a package specification is well-formed and
// free of shell metacharacters.
func ValidatePackageSpec(spec string) error {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return fmt.Errorf("%w: empty specification", ErrInvalidPackageName)
	}

	if strings.ContainsAny(trimmed, forbiddenSpecChars) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidPackageName, trimmed)
	}

	if !specPattern.MatchString(trimmed) {
		return fmt.Errorf("%w: %q", ErrInvalidPackageName, trimmed)
	}

	return nil
}

// SplitSpec separates a package specification into its base name and version
// constraint. The constraint is empty when the spec pins no version.
func SplitSpec(spec string) (name, constraint string) {
	trimmed := strings.TrimSpace(spec)
	if idx := strings.IndexAny(trimmed, "<>=!~"); idx > 0 {
		return trimmed[:idx], trimmed[idx:]
	}

	return trimmed, ""
}
