// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/helper/gc"
)

// Level is the severity attached to a structured log entry.
type Level string

// Levels emitted by [MCPLogger].
const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// This interface supports both CLI and [MCP] server modes, allowing seamless
// switching between human-readable output and structured logging.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output such as the verify tree.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Writer returns the current output destination.
func (c *CLILogger) Writer() io.Writer { return c.logger.Writer() }

// MCPLogger implements Logger for [MCP] server mode.
// It suppresses output by default since MCP communication happens over stdio,
// but can be configured to write JSON lines to a separate destination.
//
// Each entry carries a level, a message and, when set, the component name:
//
//	{"level":"info","component":"validator","message":"validated 3 certificates"}
//
// MCPLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type MCPLogger struct {
	mu        sync.Mutex
	writer    io.Writer
	silent    bool
	component string
}

// entry is the wire form of one structured log line.
type entry struct {
	Level     Level  `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// NewMCPLogger creates a new [MCP] logger.
// By default, it's silent (output suppressed) to avoid interfering with [MCP] stdio protocol.
// Set silent=false and provide a writer to enable structured logging to a file or stderr.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func NewMCPLogger(writer io.Writer, silent bool) *MCPLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &MCPLogger{
		writer: writer,
		silent: silent,
	}
}

// WithComponent returns a logger sharing the output of m that tags every
// entry with name.
func (m *MCPLogger) WithComponent(name string) *MCPLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &MCPLogger{writer: m.writer, silent: m.silent, component: name}
}

// Printf formats and logs an info entry.
// Output is suppressed if silent mode is enabled.
func (m *MCPLogger) Printf(format string, v ...any) {
	if m.silent {
		return
	}
	m.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs an info entry built with fmt.Sprint semantics.
// Output is suppressed if silent mode is enabled.
func (m *MCPLogger) Println(v ...any) {
	if m.silent {
		return
	}
	m.write(LevelInfo, fmt.Sprint(v...))
}

// Logf formats and logs an entry at the given level.
func (m *MCPLogger) Logf(level Level, format string, v ...any) {
	if m.silent {
		return
	}
	m.write(level, fmt.Sprintf(format, v...))
}

// write encodes one entry into a pooled buffer and flushes it under the lock.
func (m *MCPLogger) write(level Level, msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// json.Encoder appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry{Level: level, Component: m.component, Message: msg}); err != nil {
		return
	}

	m.mu.Lock()
	_, _ = m.writer.Write(buf.Bytes())
	m.mu.Unlock()
}

// SetOutput sets the output destination for the MCP logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (m *MCPLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}
