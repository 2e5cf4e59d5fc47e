// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - validate_cert_path: Builds and validates a path from a leaf to the given trust anchors
//   - get_validation_stats: Reports validation outcomes and decode cache usage
//
// Each tool includes proper parameter definitions, descriptions, and default values
// as required by the MCP specification.
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("validate_cert_path",
				mcp.WithDescription("Build and validate an X.509 certification path from a leaf certificate to a trust anchor, returning the verify tree on failure"),
				mcp.WithString("trusted_certs",
					mcp.Required(),
					mcp.Description("Comma-separated trust anchors: file paths, base64-encoded DER or PKCS7, or PEM data; a bundle adds every certificate it holds"),
				),
				mcp.WithString("chain",
					mcp.Required(),
					mcp.Description("Comma-separated certificates, leaf first, followed by intermediates in any order; a bundle adds every certificate it holds in order"),
				),
				mcp.WithString("validation_time",
					mcp.Description("Validation instant in RFC 3339 format (default: now)"),
				),
				mcp.WithString("subject",
					mcp.Description("Required leaf subject, as an RFC 2253 DN or a common name"),
				),
				mcp.WithNumber("max_depth",
					mcp.Description("Maximum number of certificates in a path, anchor included (default: from config)"),
				),
				mcp.WithBoolean("lenient_ca",
					mcp.Description("Accept intermediates without a basicConstraints extension (default: from config)"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'text', 'table', or 'json' (default: text)"),
					mcp.DefaultString(formatText),
				),
			),
			Handler: handleValidateCertPath,
			Role:    "pathValidator",
		},
		{
			Tool: mcp.NewTool("get_validation_stats",
				mcp.WithDescription("Report validation outcomes, rejected branches, timings and decode cache usage since the server started"),
				mcp.WithString("format",
					mcp.Description("Output format: 'json' or 'markdown' (default: json)"),
					mcp.DefaultString(formatJSON),
				),
			),
			Handler: handleGetValidationStats,
			Role:    "statsReporter",
		},
	}
}

// configResource serves the effective configuration of deps.
func configResource(deps *Dependencies) server.ServerResource {
	return server.ServerResource{
		Resource: mcp.NewResource(configResourceURI, "Effective configuration",
			mcp.WithResourceDescription("Validation defaults the server applies when a tool call leaves them unset"),
			mcp.WithMIMEType("application/json"),
		),
		Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handleConfigResource(ctx, request, deps)
		},
	}
}
