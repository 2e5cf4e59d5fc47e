// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/config"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
)

// CLIFramework integrates Cobra CLI with MCP server capabilities.
//
// Running the root command without arguments serves [MCP] over stdio.
// The --instructions flag prints the same instructions clients receive
// during initialization and exits.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type CLIFramework struct {
	configFile   string
	version      string
	verbose      bool
	tools        []ToolDefinition
	instructions string
}

// NewCLIFramework creates a framework serving tools.
//
// Parameters:
//   - configFile: Default configuration path; empty falls back to [config.EnvConfigFile]
//   - version: Version announced to clients and printed by --version
//   - tools: Tool definitions to register
//   - instructions: Pre-rendered instructions from [loadInstructions]
func NewCLIFramework(configFile, version string, tools []ToolDefinition, instructions string) *CLIFramework {
	return &CLIFramework{
		configFile:   configFile,
		version:      version,
		tools:        tools,
		instructions: instructions,
	}
}

// BuildRootCommand creates the root Cobra command.
//
// Command behavior:
//   - With --instructions: Prints the server instructions and exits
//   - Without arguments: Starts the MCP server on stdin and stdout
//   - With arguments: Fails, there are no subcommands
//
// Example usage:
//
//	framework := NewCLIFramework("", version, tools, instructions)
//	if err := framework.BuildRootCommand().Execute(); err != nil {
//	    log.Fatal(err)
//	}
func (cf *CLIFramework) BuildRootCommand() *cobra.Command {
	// Handles .exe extensions on Windows and falls back for edge cases
	exeName := posix.GetExecutableName()

	var showInstructions bool
	rootCmd := &cobra.Command{
		Use:     exeName,
		Short:   "X.509 certification path validator with MCP server integration",
		Version: cf.version,
		Long: fmt.Sprintf(`%s serves X.509 certification path validation over the Model Context Protocol.

It reads JSON-RPC messages on stdin and writes responses on stdout. Configuration
is read from --config, or from the %s environment variable when the flag is unset.`, exeName, config.EnvConfigFile),
		Example: fmt.Sprintf(`  # Start the server
  %[1]s

  # Start the server with a configuration file and log to stderr
  %[1]s --config validator.yaml --verbose

  # Print the instructions sent to clients
  %[1]s --instructions`, exeName),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showInstructions {
				_, err := fmt.Fprint(cmd.OutOrStdout(), cf.instructions)
				return err
			}
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %s for %q", strings.Join(args, " "), exeName)
			}
			return cf.startMCPServer(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&showInstructions, "instructions", false, "print the instructions sent to MCP clients")
	rootCmd.PersistentFlags().StringVar(&cf.configFile, "config", cf.configFile, "path to configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&cf.verbose, "verbose", false, "log tool calls to stderr as JSON lines")

	return rootCmd
}

// startMCPServer loads the configuration, builds the server and serves it on
// the command's input and output until a signal arrives or input ends.
//
// Returns:
//   - nil: When the server shuts down because of SIGINT or SIGTERM
//   - error: Configuration, build or transport failures
func (cf *CLIFramework) startMCPServer(cmd *cobra.Command) error {
	l := logger.NewCLILogger()
	l.SetOutput(cmd.ErrOrStderr())

	cfg, err := config.Load(cf.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mcpServer, _, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(cf.version).
		WithLogger(logger.NewMCPLogger(cmd.ErrOrStderr(), !cf.verbose).WithComponent("mcp-server")).
		WithTools(cf.tools...).
		WithInstructions(cf.instructions).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			// Clear the line (including any ^C) before the shutdown message
			l.Printf("\rReceived signal %s, initiating graceful shutdown...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	l.Printf("X.509 Certificate Path Validator MCP server started.")

	stdioServer := server.NewStdioServer(mcpServer)
	if err = stdioServer.Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
