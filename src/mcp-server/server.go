// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the version the server was started with.
func GetVersion() string {
	return appVersion
}

// Run executes the MCP server command line with the default tools.
//
// Parameters:
//   - version: Version announced to clients
//
// Returns:
//   - error: Instruction rendering, configuration or transport failures
func Run(version string) error {
	appVersion = version

	tools := createTools()
	instructions, err := loadInstructions(tools)
	if err != nil {
		return fmt.Errorf("failed to load instructions: %w", err)
	}

	return NewCLIFramework("", version, tools, instructions).BuildRootCommand().Execute()
}
