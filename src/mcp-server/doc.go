// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver provides the [MCP] server framework for [X509] certification path validation.
//
// Tools:
//   - validate_cert_path: builds every candidate path from a leaf to the supplied
//     trust anchors and validates them, returning the verify tree on failure
//   - get_validation_stats: reports outcome counters and decode cache usage
//
// Resources:
//   - config://current: the effective configuration
//   - docs://verify-tree: how to read a verify tree
//
// The server is assembled with [ServerBuilder] and served over stdio by the
// command returned from [CLIFramework.BuildRootCommand].
//
// [X509]: https://grokipedia.com/page/X.509
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
