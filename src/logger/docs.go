// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the logging abstraction shared by the validate-chain
// command and the MCP server. CLILogger writes plain lines, which is how the
// verification result and the verify tree reach the terminal. MCPLogger writes
// JSON lines, encoded through pooled buffers, away from the stdio transport.
package logger
