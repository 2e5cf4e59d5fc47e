// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the running executable's name without extension for CLI usage
//   - ExecutableName: The same transformation for an arbitrary program path
//
// Usage in cobra command definitions:
//
//	import "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/helper/posix"
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName(),
//	    Short: "X.509 certification path validator",
//	}
//
// Cross-platform behavior:
//
//   - Linux/macOS: "/usr/bin/myapp" → "myapp"
//   - Windows: "C:\bin\myapp.exe" → "myapp"
//   - Fallback: Empty args → "x509-chain-validator"
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
