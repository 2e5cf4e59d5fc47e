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

	"github.com/H0llyW00dzZ/x509-chain-validator/src/mcp-server/templates"
)

const verifyTreeDocURI = "docs://verify-tree"

// instructionData holds the data used to populate the MCP server instructions template.
type instructionData struct {
	Tools     []toolInfo
	ToolRoles map[string]string // Maps tool roles to tool names for template use
}

// toolInfo represents information about an MCP tool for template rendering.
type toolInfo struct {
	Name        string
	Description string
}

// loadInstructions renders the embedded instructions template for tools.
//
// Parameters:
//   - tools: The tool definitions the server registers
//
// Returns:
//   - string: The rendered instruction text sent during initialization
//   - error: If the embedded file cannot be read or template execution fails
func loadInstructions(tools []ToolDefinition) (string, error) {
	data := instructionData{ToolRoles: make(map[string]string, len(tools))}
	for _, tool := range tools {
		data.Tools = append(data.Tools, toolInfo{
			Name:        tool.Tool.Name,
			Description: tool.Tool.Description,
		})
		if tool.Role != "" {
			data.ToolRoles[tool.Role] = tool.Tool.Name
		}
	}

	instructions, err := templates.Execute("instructions.md", data)
	if err != nil {
		return "", fmt.Errorf("failed to load MCP server instructions: %w", err)
	}
	return instructions, nil
}

// verifyTreeResource serves the embedded verify tree reference.
func verifyTreeResource() server.ServerResource {
	return server.ServerResource{
		Resource: mcp.NewResource(verifyTreeDocURI, "Verify tree format",
			mcp.WithResourceDescription("How to read the verify tree returned when validation fails"),
			mcp.WithMIMEType("text/markdown"),
		),
		Handler: handleVerifyTreeResource,
	}
}

func handleVerifyTreeResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := templates.MagicEmbed.ReadFile("verify-tree.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read verify tree docs: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      verifyTreeDocURI,
			MIMEType: "text/markdown",
			Text:     string(doc),
		},
	}, nil
}
