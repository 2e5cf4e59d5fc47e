// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/config"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/metrics"
	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
)

// serverName is the name announced during the [MCP] handshake.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
const serverName = "X509 Certificate Path Validator"

// Dependencies holds the shared state every tool handler receives.
//
// Fields:
//   - Config: Validation defaults and timeouts
//   - Codec: Decode cache shared by all calls
//   - Recorder: Prometheus metrics for validation runs
//   - Logger: Structured logger, silent unless configured otherwise
type Dependencies struct {
	Config   *config.Config
	Codec    *x509certs.CachedCodec
	Recorder *metrics.Recorder
	Logger   *logger.MCPLogger
}

// ToolHandler is the signature of a tool implementation.
//
// Parameters:
//   - ctx: Context for cancellation and timeout handling
//   - request: The MCP tool call request with arguments
//   - deps: Shared server dependencies
//
// Returns:
//   - *mcp.CallToolResult: The tool result
//   - error: Protocol level failure; tool failures are reported in the result
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, deps *Dependencies) (*mcp.CallToolResult, error)

// ToolDefinition pairs an MCP tool specification with its handler.
//
// Fields:
//   - Tool: The MCP tool definition containing name, description, and input schema
//   - Handler: The function that implements the tool's logic
//   - Role: Short name used by the instructions template to refer to the tool
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
	Role    string
}

// ServerBuilder helps construct the [MCP] server with proper dependencies using a fluent interface.
//
// Example:
//
//	s, deps, err := NewServerBuilder().
//	    WithConfig(cfg).
//	    WithVersion("1.0.0").
//	    WithDefaultTools().
//	    Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct {
	deps         Dependencies
	version      string
	tools        []ToolDefinition
	resources    []server.ServerResource
	instructions string
}

// NewServerBuilder creates a new server builder with default empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the server configuration. A nil config selects [config.Default].
func (b *ServerBuilder) WithConfig(cfg *config.Config) *ServerBuilder {
	b.deps.Config = cfg
	return b
}

// WithVersion sets the server version string used for identification.
// When unset, Build announces [GetVersion].
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.version = version
	return b
}

// WithCodec sets the decode cache. When unset, Build creates one sized by the configuration.
func (b *ServerBuilder) WithCodec(codec *x509certs.CachedCodec) *ServerBuilder {
	b.deps.Codec = codec
	return b
}

// WithRecorder sets the metrics recorder. When unset, Build creates one.
func (b *ServerBuilder) WithRecorder(rec *metrics.Recorder) *ServerBuilder {
	b.deps.Recorder = rec
	return b
}

// WithLogger sets the structured logger. When unset, Build uses a silent one.
func (b *ServerBuilder) WithLogger(log *logger.MCPLogger) *ServerBuilder {
	b.deps.Logger = log
	return b
}

// WithTools adds tool definitions to the server.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.tools = append(b.tools, tools...)
	return b
}

// WithDefaultTools adds the tools returned by [createTools].
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithTools(createTools()...)
}

// WithResources adds resources to the server.
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.resources = append(b.resources, resources...)
	return b
}

// WithInstructions sets the instructions sent to clients during initialization.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.instructions = instructions
	return b
}

// Build creates the [MCP] server with all configured dependencies.
//
// Returns:
//   - *server.MCPServer: The configured server
//   - *Dependencies: The dependencies handed to every tool, defaults filled in
//   - error: Decode cache creation failure
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func (b *ServerBuilder) Build() (*server.MCPServer, *Dependencies, error) {
	deps := b.deps
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Codec == nil {
		codec, err := x509certs.NewCached(deps.Config.Cache.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create certificate cache: %w", err)
		}
		deps.Codec = codec
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.New()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewMCPLogger(nil, true)
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	}
	if b.instructions != "" {
		opts = append(opts, server.WithInstructions(b.instructions))
	}
	version := b.version
	if version == "" {
		version = GetVersion()
	}
	s := server.NewMCPServer(serverName, version, opts...)

	for _, tool := range b.tools {
		s.AddTool(tool.Tool, bind(tool.Handler, &deps))
	}
	resources := append([]server.ServerResource{configResource(&deps), verifyTreeResource()}, b.resources...)
	for _, resource := range resources {
		s.AddResource(resource.Resource, resource.Handler)
	}

	return s, &deps, nil
}

// bind closes a [ToolHandler] over deps.
func bind(handler ToolHandler, deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(ctx, request, deps)
	}
}
