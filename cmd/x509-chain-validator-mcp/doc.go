// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// x509-chain-validator-mcp is a Model Context Protocol (MCP) server that exposes
// X.509 certification path validation to AI assistants and automation clients over stdio.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-chain-validator/cmd/x509-chain-validator-mcp@latest
//
// # Usage
//
//	x509-chain-validator-mcp [FLAGS]
//
// # Flags
//
//	--config        Path to configuration file (JSON or YAML)
//	--instructions  Display the instructions sent to MCP clients
//	--verbose       Log tool calls to stderr as JSON lines
//	--help          Show help information
//	--version       Show version information
//
// # Environment Variables
//
//	X509_VALIDATOR_CONFIG_FILE  Path to configuration file (alternative to --config flag)
//
// # MCP Tools
//
//   - validate_cert_path: Build and validate a path from a leaf to the given trust anchors
//   - get_validation_stats: Report outcome counters, rejected branches and decode cache usage
//
// # MCP Resources
//
//   - config://current: Effective configuration
//   - docs://verify-tree: How to read the verify tree
//
// # Examples
//
// Start MCP server with default configuration:
//
//	x509-chain-validator-mcp
//
// Load custom configuration:
//
//	x509-chain-validator-mcp --config /path/to/config.yaml
package main
