// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
)

func TestVisualization(t *testing.T) {
	root := certtest.NewRoot(t, "Viz Root")
	inter := root.Issue(t, "Viz Inter", certtest.AsCA(-1))
	leaf := inter.Issue(t, "viz.example.com")

	validated := x509chain.New(leaf.Cert, certs(inter), newParams(t, root))
	require.NoError(t, validated.Validate(context.Background()))

	failed := x509chain.New(leaf.Cert, nil, newParams(t, root))
	require.Error(t, failed.Validate(context.Background()))

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "ASCII Tree",
			testFunc: func(t *testing.T) {
				tree := validated.RenderASCIITree()
				assert.Contains(t, tree, "├── [✓] viz.example.com (End-Entity (Leaf) Certificate)")
				assert.Contains(t, tree, "└── [✓] Viz Root (Trust Anchor)")
				assert.Equal(t, "No validated path", failed.RenderASCIITree())
			},
		},
		{
			name: "Markdown Table",
			testFunc: func(t *testing.T) {
				table := validated.RenderTable()
				for _, want := range []string{"viz.example.com", "Viz Inter", "Intermediate CA Certificate", "256-bit ECDSA", "trusted"} {
					assert.Contains(t, table, want)
				}
				assert.Equal(t, "No certificates to display", failed.RenderTable())
			},
		},
		{
			name: "JSON Success",
			testFunc: func(t *testing.T) {
				raw, err := validated.ToVisualizationJSON()
				require.NoError(t, err)

				var data x509chain.VisualizationData
				require.NoError(t, json.Unmarshal(raw, &data))
				assert.True(t, data.Validated)
				assert.Equal(t, 3, data.ChainLength)
				assert.Len(t, data.Certificates, 3)
				assert.Len(t, data.Relationships, 2)
				assert.Equal(t, "signed_by", data.Relationships[0].Type)
				assert.Equal(t, "2026-01-01T12:00:00Z", data.ValidationTime)
				assert.True(t, data.Certificates[2].IsCA)
				assert.Equal(t, root.Cert.Fingerprint(), data.Certificates[2].Fingerprint)
				assert.Empty(t, data.Rejections)
			},
		},
		{
			name: "JSON Failure",
			testFunc: func(t *testing.T) {
				raw, err := failed.ToVisualizationJSON()
				require.NoError(t, err)

				var data x509chain.VisualizationData
				require.NoError(t, json.Unmarshal(raw, &data))
				assert.False(t, data.Validated)
				assert.Empty(t, data.Certificates)
				require.Len(t, data.Rejections, 1)
				assert.Contains(t, data.Rejections[0].Reason, "no issuer found")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
