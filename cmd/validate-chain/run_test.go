// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/cli"
	verpkg "github.com/H0llyW00dzZ/x509-chain-validator/src/version"
)

func TestVersionInit(t *testing.T) {
	assert.NotEmpty(t, version, "version should not be empty after init")

	if version != verpkg.Version {
		// If they differ, it means version was set by ldflags, which is also valid
		t.Logf("version set by ldflags: %s (package version: %s)", version, verpkg.Version)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "Validated", err: nil, want: exitValidated},
		{name: "Validation Failed", err: fmt.Errorf("%w: %w", cli.ErrValidationFailed, errors.New("x509chain: no path")), want: exitFailed},
		{name: "Load Error", err: fmt.Errorf("%w: %w", cli.ErrLoad, errors.New("leaf.pem: bad")), want: exitLoad},
		{name: "Invalid Anchor", err: fmt.Errorf("%w: root.pem: %w", cli.ErrLoad, errors.New("x509chain: invalid trust anchor")), want: exitLoad},
		{name: "Usage", err: errors.New("requires at least 2 arg(s)"), want: exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
