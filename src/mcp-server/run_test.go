// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/mcptest"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/config"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/version"
)

func TestMCPTools(t *testing.T) {
	f := newToolFixture(t)
	deps := newTestDeps(t)

	srv := mcptest.NewUnstartedServer(t)
	for _, tool := range createTools() {
		srv.AddTools(server.ServerTool{Tool: tool.Tool, Handler: bind(tool.Handler, deps)})
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	client := srv.Client()

	tests := []struct {
		name           string
		toolName       string
		args           map[string]any
		expectError    bool
		expectContains []string
	}{
		{
			name:     "validate_cert_path",
			toolName: "validate_cert_path",
			args: map[string]any{
				"trusted_certs":   f.root,
				"chain":           f.leaf + "," + f.inter,
				"validation_time": at,
			},
			expectContains: []string{msgValidated, "mcp.example.com", "MCP Intermediate"},
		},
		{
			name:     "validate_cert_path with missing intermediate",
			toolName: "validate_cert_path",
			args: map[string]any{
				"trusted_certs":   f.root,
				"chain":           f.leaf,
				"validation_time": at,
			},
			expectContains: []string{msgFailed, msgVerifyTree, "no issuer found"},
		},
		{
			name:     "validate_cert_path with json format",
			toolName: "validate_cert_path",
			args: map[string]any{
				"trusted_certs":   f.root,
				"chain":           f.leaf + "," + f.inter,
				"validation_time": at,
				"format":          "json",
			},
			expectContains: []string{`"validated": true`},
		},
		{
			name:        "validate_cert_path with invalid chain",
			toolName:    "validate_cert_path",
			args:        map[string]any{"trusted_certs": f.root, "chain": "invalid-cert"},
			expectError: true,
		},
		{
			name:           "get_validation_stats",
			toolName:       "get_validation_stats",
			args:           map[string]any{},
			expectContains: []string{`"validations"`, `"cache"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.CallTool(context.Background(), mcp.CallToolRequest{
				Params: mcp.CallToolParams{
					Name:      tt.toolName,
					Arguments: tt.args,
				},
			})
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectError, result.IsError)

			var content strings.Builder
			for _, c := range result.Content {
				if tc, ok := c.(mcp.TextContent); ok {
					content.WriteString(tc.Text)
				}
			}
			for _, expected := range tt.expectContains {
				assert.Contains(t, content.String(), expected)
			}
		})
	}
}

func TestServerBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Defaults",
			testFunc: func(t *testing.T) {
				s, deps, err := NewServerBuilder().Build()
				require.NoError(t, err)
				require.NotNil(t, s)
				assert.Equal(t, config.Default(), deps.Config)
				assert.NotNil(t, deps.Codec)
				assert.NotNil(t, deps.Recorder)
				assert.NotNil(t, deps.Logger)
			},
		},
		{
			name: "Shared Config",
			testFunc: func(t *testing.T) {
				cfg := config.Default()
				cfg.Validation.LenientCA = true
				_, deps, err := NewServerBuilder().WithConfig(cfg).WithDefaultTools().Build()
				require.NoError(t, err)
				assert.Same(t, cfg, deps.Config)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestLoadInstructions(t *testing.T) {
	tools := createTools()
	instructions, err := loadInstructions(tools)
	require.NoError(t, err)

	for _, tool := range tools {
		assert.Contains(t, instructions, "`"+tool.Tool.Name+"`")
	}
	assert.NotContains(t, instructions, "{{")
	assert.NotContains(t, instructions, "<no value>")

	_, err = loadInstructions(tools[:1])
	assert.Error(t, err, "a role referenced by the template must be registered")
}

func TestHandleVerifyTreeResource(t *testing.T) {
	contents, err := handleVerifyTreeResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, verifyTreeDocURI, text.URI)
	assert.Equal(t, "text/markdown", text.MIMEType)
	assert.Contains(t, text.Text, "# Verify Tree Format")
}

func TestCLIFramework(t *testing.T) {
	tools := createTools()
	instructions, err := loadInstructions(tools)
	require.NoError(t, err)

	t.Run("Instructions Flag", func(t *testing.T) {
		cmd := NewCLIFramework("", "1.3.3.7-testing", tools, instructions).BuildRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--instructions"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, instructions, out.String())
	})

	t.Run("Unexpected Arguments", func(t *testing.T) {
		cmd := NewCLIFramework("", "1.3.3.7-testing", tools, instructions).BuildRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"serve"})

		assert.ErrorContains(t, cmd.Execute(), "unexpected arguments: serve")
	})

	t.Run("Missing Config", func(t *testing.T) {
		cmd := NewCLIFramework("", "1.3.3.7-testing", tools, instructions).BuildRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", t.TempDir() + "/missing.yaml"})

		assert.ErrorContains(t, cmd.Execute(), "failed to load config")
	})

	t.Run("Flags", func(t *testing.T) {
		cmd := NewCLIFramework("", "1.3.3.7-testing", tools, instructions).BuildRootCommand()
		for _, name := range []string{"instructions", "config", "verbose"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
		assert.Equal(t, "1.3.3.7-testing", cmd.Version)
	})
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, version.Version, GetVersion())
}
