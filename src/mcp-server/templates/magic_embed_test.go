// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"io"
	"strings"
	"sync"
	"testing"
)

func TestMagicEmbed_ReadFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		contains []string
		wantErr  bool
	}{
		{
			name:     "read instructions template",
			filename: "instructions.md",
			contains: []string{"# X.509", "{{range .Tools}}", "{{.ToolRoles.pathValidator}}"},
		},
		{
			name:     "read verify tree documentation",
			filename: "verify-tree.md",
			contains: []string{"# Verify Tree", "[x]", "[✓]", "fingerprint"},
		},
		{
			name:     "read non-existent file",
			filename: "non-existent.md",
			wantErr:  true,
		},
		{
			name:     "read file with invalid path",
			filename: "../invalid.md",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MagicEmbed.ReadFile(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MagicEmbed.ReadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			content := string(data)
			for _, want := range tt.contains {
				if !strings.Contains(content, want) {
					t.Errorf("File %s does not contain %q", tt.filename, want)
				}
			}
		})
	}
}

func TestMagicEmbed_ReadDir(t *testing.T) {
	entries, err := MagicEmbed.ReadDir(".")
	if err != nil {
		t.Fatalf("MagicEmbed.ReadDir() error = %v", err)
	}

	found := map[string]bool{"instructions.md": false, "verify-tree.md": false}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("Unexpected directory found: %s", entry.Name())
			continue
		}
		if _, ok := found[entry.Name()]; ok {
			found[entry.Name()] = true
		}
	}
	for name, ok := range found {
		if !ok {
			t.Errorf("Expected file %s not found in directory listing", name)
		}
	}

	if _, err := MagicEmbed.ReadDir("non-existent"); err == nil {
		t.Error("MagicEmbed.ReadDir() expected error for non-existent directory")
	}
}

func TestMagicEmbed_Open(t *testing.T) {
	file, err := MagicEmbed.Open("verify-tree.md")
	if err != nil {
		t.Fatalf("MagicEmbed.Open() error = %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("Failed to read from opened file: %v", err)
	}
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Failed to get file info: %v", err)
	}
	if info.IsDir() || info.Size() != int64(len(data)) {
		t.Errorf("unexpected file info: dir=%v size=%d read=%d", info.IsDir(), info.Size(), len(data))
	}

	if _, err := MagicEmbed.Open("non-existent.md"); err == nil {
		t.Error("MagicEmbed.Open() expected error for non-existent file")
	}
}

func TestMagicEmbed_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for _, name := range []string{"instructions.md", "verify-tree.md"} {
		wg.Go(func() {
			for range 10 {
				if _, err := MagicEmbed.ReadFile(name); err != nil {
					t.Errorf("Concurrent read failed: %v", err)
				}
			}
		})
	}
	wg.Go(func() {
		for range 10 {
			if _, err := MagicEmbed.ReadDir("."); err != nil {
				t.Errorf("Concurrent ReadDir failed: %v", err)
			}
		}
	})
	wg.Wait()
}

func TestExecute(t *testing.T) {
	data := map[string]any{
		"Tools": []struct{ Name, Description string }{
			{Name: "validate_cert_path", Description: "validate"},
			{Name: "get_validation_stats", Description: "stats"},
		},
		"ToolRoles": map[string]string{
			"pathValidator": "validate_cert_path",
			"statsReporter": "get_validation_stats",
		},
	}

	out, err := Execute("instructions.md", data)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "- `get_validation_stats`: stats") {
		t.Errorf("tool list not rendered:\n%s", out)
	}

	delete(data["ToolRoles"].(map[string]string), "statsReporter")
	if _, err := Execute("instructions.md", data); err == nil {
		t.Error("Execute() expected error for a missing role")
	}

	if _, err := Execute("non-existent.md", data); err == nil {
		t.Error("Execute() expected error for a missing template")
	}
}
