// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var embeddedFS embed.FS

// EmbedFS is the read-only view of the embedded template files.
// Implementations must be safe for concurrent use.
type EmbedFS interface {
	fs.ReadFileFS
	fs.ReadDirFS
}

// MagicEmbed is the embedded filesystem used for accessing template files.
// It holds the server instructions template and the documentation served
// as resources.
//
// Example usage for reading the verify tree documentation:
//
//	doc, err := templates.MagicEmbed.ReadFile("verify-tree.md")
//	if err != nil {
//		return nil, fmt.Errorf("failed to read verify tree docs: %w", err)
//	}
var MagicEmbed EmbedFS = embeddedFS

// Execute renders the embedded text/template name with data.
//
// A field or map key referenced by the template but missing from data is an
// error rather than "<no value>".
//
// Parameters:
//   - name: Embedded file name, e.g. "instructions.md"
//   - data: Template data
//
// Returns:
//   - string: The rendered text
//   - error: If the file cannot be read, parsed or executed
func Execute(name string, data any) (string, error) {
	src, err := MagicEmbed.ReadFile(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
