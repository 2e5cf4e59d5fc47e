// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// FallbackName is returned by [GetExecutableName] when os.Args carries no program name.
const FallbackName = "x509-chain-validator"

// GetExecutableName returns the name of the running executable for CLI usage strings.
//
// Returns:
//   - string: [ExecutableName] of os.Args[0], or [FallbackName]
func GetExecutableName() string {
	// This literally never happens. If it happens, then it's not an operating system.
	if len(os.Args) == 0 {
		return FallbackName
	}
	return ExecutableName(os.Args[0], FallbackName)
}

// ExecutableName returns the last path component of arg0 without a trailing
// ".exe". Both "/" and "\" are treated as separators on every platform, so a
// Windows path is handled the same way on Unix and vice versa.
//
// Parameters:
//   - arg0: Program path as found in os.Args[0]
//   - fallback: Name returned when arg0 has no usable component
//
// Returns:
//   - string: Clean executable name, e.g. "myapp" for "C:\bin\myapp.exe"
func ExecutableName(arg0, fallback string) string {
	name := strings.TrimRight(arg0, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." {
		return fallback
	}
	return name
}
