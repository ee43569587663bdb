// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"fmt"
	"strings"
)

// maxDetailRunes bounds the displayed detail line. Resolver output can run to
// many kilobytes; anything past the bound is replaced with an ellipsis.
const maxDetailRunes = 200

// failureMarkers are substrings that identify the significant line inside raw
// resolver or pip output. Matched case-insensitively except for the bare
// multiplication sign, which uv prints verbatim.
var failureMarkers = []string{ //nolint:gochecknoglobals
	"×",
	" error:",
	"error:",
	"failed to",
	"failed:",
	"could not find",
	"not found",
}

// CleanMessage turns a raw backend failure message into a single short,
// user-presentable detail line. Dependency-resolution failures get templated
// messages; everything else falls back to extracting the first line carrying
// a failure marker.
func CleanMessage(raw, packageName string) string {
	message := strings.TrimSpace(raw)
	if message == "" {
		return ""
	}

	lower := strings.ToLower(message)

	if strings.Contains(lower, "no solution found when resolving dependencies") {
		if strings.Contains(lower, "requires-python") {
			return fmt.Sprintf("%s requires a different Python version than this environment provides", baseName(packageName))
		}

		return fmt.Sprintf("%s conflicts with currently installed dependencies", baseName(packageName))
	}

	if strings.Contains(lower, "requirements are unsatisfiable") {
		return fmt.Sprintf("%s conflicts with currently installed dependencies", baseName(packageName))
	}

	if line := extractMarkerLine(message); line != "" {
		return truncateDetail(line)
	}

	return truncateDetail(firstLine(message))
}

// extractMarkerLine returns the first line containing a failure marker, with
// the marker prefix stripped and whitespace trimmed.
func extractMarkerLine(message string) string {
	for _, line := range strings.Split(message, "\n") {
		trimmed := strings.TrimSpace(line)
		lowerLine := strings.ToLower(trimmed)

		for _, marker := range failureMarkers {
			idx := strings.Index(lowerLine, strings.ToLower(marker))
			if idx < 0 {
				continue
			}

			// A marker at the start of the line is decoration and gets
			// stripped; the × marker is stripped wherever it appears.
			if idx == 0 || marker == "×" {
				if rest := strings.TrimSpace(trimmed[idx+len(marker):]); rest != "" {
					return rest
				}
			}

			return trimmed
		}
	}

	return ""
}

// baseName strips any version specifier from a package spec, so
// "pandas==2.3.1" renders as "pandas" in templated messages.
func baseName(spec string) string {
	name, _ := SplitSpec(spec)
	if name == "" || name == RestoreKey {
		return "the requested package"
	}

	return name
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}

	return message
}

func truncateDetail(line string) string {
	runes := []rune(line)
	if len(runes) <= maxDetailRunes {
		return line
	}

	return string(runes[:maxDetailRunes]) + "…"
}
