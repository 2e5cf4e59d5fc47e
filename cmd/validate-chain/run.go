// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/cli"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
	verpkg "github.com/H0llyW00dzZ/x509-chain-validator/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

// Exit codes.
const (
	exitValidated = 0
	exitFailed    = 1
	exitUsage     = 2
	exitLoad      = 3
	exitSignal    = 130 // Standard exit code for SIGINT
)

// exitCode maps the result of [cli.Execute] to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitValidated
	case errors.Is(err, cli.ErrValidationFailed):
		return exitFailed
	case errors.Is(err, cli.ErrLoad):
		return exitLoad
	default:
		return exitUsage
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	select {
	case err := <-done:
		if code := exitCode(err); code != exitValidated {
			os.Exit(code)
		}
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		// Give the validation a moment to observe the cancellation
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		os.Exit(exitSignal)
	}
}
