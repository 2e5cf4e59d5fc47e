// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/cli"
	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
)

const version = "1.3.3.7-testing"

var at = certtest.Now.Format(time.RFC3339)

type fixture struct {
	dir     string
	root    string
	inter   string
	leaf    string
	expired string
	stale   string
	orphan  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	root := certtest.NewRoot(t, "CLI Root")
	inter := root.Issue(t, "CLI Intermediate", certtest.AsCA(-1))
	leaf := inter.Issue(t, "cli.example.com")
	expired := root.Issue(t, "CLI Expired Intermediate", certtest.AsCA(-1),
		certtest.WithValidity(certtest.Now.AddDate(-2, 0, 0), certtest.Now.AddDate(0, 0, -1)))
	stale := expired.Issue(t, "stale.example.com")
	orphan := certtest.NewRoot(t, "CLI Other Root").Issue(t, "orphan.example.com")

	return fixture{
		dir:     dir,
		root:    certtest.WriteFile(t, dir, "root.pem", root.Cert),
		inter:   certtest.WriteFile(t, dir, "inter.pem", inter.Cert),
		leaf:    certtest.WriteFile(t, dir, "leaf.pem", leaf.Cert),
		expired: certtest.WriteFile(t, dir, "expired.pem", expired.Cert),
		stale:   certtest.WriteFile(t, dir, "stale.pem", stale.Cert),
		orphan:  certtest.WriteFile(t, dir, "orphan.pem", orphan.Cert),
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("X509_VALIDATOR_CONFIG_FILE", "")

	var buf bytes.Buffer
	log := logger.NewCLILogger()
	log.SetOutput(&buf)

	cmd := cli.NewCommand(version, log)
	cmd.SetArgs(args)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestValidateChain(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Leaf And Intermediate",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, f.root, f.leaf, f.inter)
				require.NoError(t, err)
				assert.Contains(t, out, cli.MsgValidated)
				assert.Contains(t, out, "cli.example.com (End-Entity (Leaf) Certificate)")
				assert.NotContains(t, out, cli.MsgFailed)
				assert.True(t, cli.OperationPerformed)
				assert.True(t, cli.OperationPerformedSuccessfully)
			},
		},
		{
			name: "Leaf Signed By Root",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, f.root, f.inter)
				require.NoError(t, err)
				assert.Contains(t, out, cli.MsgValidated)
			},
		},
		{
			name: "Table Output",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, "--table", f.root, f.leaf, f.inter)
				require.NoError(t, err)
				assert.Contains(t, out, "Intermediate CA Certificate")
				assert.Contains(t, out, "trusted")
			},
		},
		{
			name: "JSON Output",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, "--json", f.root, f.leaf, f.inter)
				require.NoError(t, err)

				var data x509chain.VisualizationData
				require.NoError(t, json.Unmarshal([]byte(out), &data))
				assert.True(t, data.Validated)
				assert.Equal(t, 3, data.ChainLength)
			},
		},
		{
			name: "Missing Intermediate",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, f.root, f.leaf)
				require.ErrorIs(t, err, cli.ErrValidationFailed)
				assert.ErrorIs(t, err, x509chain.ErrChainNotFound)
				assert.Contains(t, out, cli.MsgFailed)
				assert.Contains(t, out, cli.MsgVerifyTree)
				assert.Contains(t, out, "no issuer found")
				assert.True(t, cli.OperationPerformed)
				assert.False(t, cli.OperationPerformedSuccessfully)
			},
		},
		{
			name: "Untrusted Root",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, f.root, f.orphan)
				require.ErrorIs(t, err, x509chain.ErrChainNotFound)
				assert.Contains(t, out, "[x] orphan.example.com")
			},
		},
		{
			name: "Expired Intermediate",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, f.root, f.stale, f.expired)
				require.ErrorIs(t, err, x509chain.ErrExpiredCertificate)
				assert.Contains(t, out, "[x] CLI Expired Intermediate")
				assert.Contains(t, out, "rejected: x509chain: certificate expired")
			},
		},
		{
			name: "Subject Mismatch",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "--time", at, "--subject", "other.example.com", f.root, f.leaf, f.inter)
				require.ErrorIs(t, err, x509chain.ErrTargetMismatch)
				assert.Contains(t, out, cli.MsgFailed)
			},
		},
		{
			name: "Subject Match",
			testFunc: func(t *testing.T) {
				_, err := execute(t, "--time", at, "--subject", "CLI.example.com", f.root, f.leaf, f.inter)
				require.NoError(t, err)
			},
		},
		{
			name: "Max Depth",
			testFunc: func(t *testing.T) {
				_, err := execute(t, "--time", at, "--max-depth", "2", f.root, f.leaf, f.inter)
				require.ErrorIs(t, err, x509chain.ErrChainNotFound)
			},
		},
		{
			name: "Config File",
			testFunc: func(t *testing.T) {
				cfg := filepath.Join(f.dir, "config.yaml")
				require.NoError(t, os.WriteFile(cfg, []byte("validation:\n  maxDepth: 2\n"), 0o600))

				_, err := execute(t, "--time", at, "--config", cfg, f.root, f.leaf, f.inter)
				require.ErrorIs(t, err, x509chain.ErrChainNotFound)

				_, err = execute(t, "--time", at, "--config", cfg, "--max-depth", "3", f.root, f.leaf, f.inter)
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestValidateChain_LoadErrors(t *testing.T) {
	f := newFixture(t)

	garbage := filepath.Join(f.dir, "garbage.der")
	require.NoError(t, os.WriteFile(garbage, []byte{0x30, 0x03, 0x02, 0x01}, 0o600))
	missing := filepath.Join(f.dir, "missing.pem")

	out, err := execute(t, "--time", at, f.root, garbage, missing)
	require.ErrorIs(t, err, cli.ErrLoad)

	var pe *x509certs.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, out, garbage)
	assert.Contains(t, out, missing)
	assert.NotContains(t, out, cli.MsgFailed)
	assert.False(t, cli.OperationPerformed)
}

func TestValidateChain_Args(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, f.root)
	assert.ErrorContains(t, err, "requires at least 2 arg(s)")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "<trustedCertFile> <cert_1> [cert_2 ... cert_n]")
	assert.False(t, cli.OperationPerformed)

	_, err = execute(t, "--time", "yesterday", f.root, f.leaf)
	assert.ErrorContains(t, err, "invalid --time")

	_, err = execute(t, "--table", "--json", f.root, f.leaf)
	assert.Error(t, err)
}

func TestValidateChain_Bundles(t *testing.T) {
	dir := t.TempDir()
	root := certtest.NewRoot(t, "Bundle Root")
	other := certtest.NewRoot(t, "Bundle Other Root")
	inter := root.Issue(t, "Bundle Intermediate", certtest.AsCA(-1))
	leaf := inter.Issue(t, "bundle.example.com")

	writeBundle := func(name string, certs ...*x509certs.Certificate) string {
		var data []byte
		for _, cert := range certs {
			data = append(data, certtest.PEM(cert)...)
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Leaf And Intermediate In One File",
			testFunc: func(t *testing.T) {
				trusted := writeBundle("root.pem", root.Cert)
				chain := writeBundle("chain.pem", leaf.Cert, inter.Cert)

				out, err := execute(t, "--time", at, trusted, chain)
				require.NoError(t, err)
				assert.Contains(t, out, cli.MsgValidated)
				assert.Contains(t, out, "Bundle Intermediate")
			},
		},
		{
			name: "Trust Anchor Bundle",
			testFunc: func(t *testing.T) {
				trusted := writeBundle("anchors.pem", other.Cert, root.Cert)
				leafFile := writeBundle("leaf.pem", leaf.Cert)
				interFile := writeBundle("inter.pem", inter.Cert)

				out, err := execute(t, "--time", at, trusted, leafFile, interFile)
				require.NoError(t, err)
				assert.Contains(t, out, cli.MsgValidated)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestValidateChain_InvalidAnchor(t *testing.T) {
	f := newFixture(t)
	root := certtest.NewRoot(t, "Anonymous Parent")
	anonymous := root.Issue(t, "", certtest.AsCA(-1))
	trusted := certtest.WriteFile(t, f.dir, "anonymous.pem", anonymous.Cert)

	_, err := execute(t, "--time", at, trusted, f.leaf, f.inter)
	require.ErrorIs(t, err, cli.ErrLoad)
	assert.ErrorIs(t, err, x509chain.ErrInvalidAnchor)
	assert.ErrorContains(t, err, trusted)
	assert.False(t, cli.OperationPerformed)
}

func TestValidateChain_MetricsFile(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "validator.prom")

	_, err := execute(t, "--time", at, "--metrics-file", out, f.root, f.leaf, f.inter)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `x509_validator_validations_total{outcome="validated"} 1`)
}

func TestExecute_NoArgs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewCLILogger()
	log.SetOutput(&buf)

	os.Args = []string{"validate-chain"}
	err := cli.Execute(context.Background(), version, log)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error:")
}
