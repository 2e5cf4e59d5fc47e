// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates provides embedded filesystem access for MCP server template files.
//
// Two files are embedded:
//   - instructions.md: text/template source for the instructions sent to clients during initialization
//   - verify-tree.md: reference for reading verify trees, served as a resource
//
// [MagicEmbed] is the default [EmbedFS] implementation. [Execute] renders an
// embedded file as a text/template.
//
// Example usage:
//
//	import "github.com/H0llyW00dzZ/x509-chain-validator/src/mcp-server/templates"
//
//	entries, err := templates.MagicEmbed.ReadDir(".")
//	if err != nil {
//		return fmt.Errorf("failed to list templates: %w", err)
//	}
package templates
