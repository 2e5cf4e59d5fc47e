// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
)

func collect(t *testing.T, seq func(yield func(*x509chain.CandidatePath) bool)) [][]string {
	t.Helper()
	var out [][]string
	for p := range seq {
		out = append(out, labels(p.Certificates()))
	}
	return out
}

func TestBuilder_ShortestFirst(t *testing.T) {
	root := certtest.NewRoot(t, "Order Root")
	mid := root.Issue(t, "Mid", certtest.AsCA(-1))
	upper := root.Issue(t, "Upper", certtest.AsCA(-1))
	longMid := upper.Issue(t, "Mid", certtest.AsCA(-1))
	leaf := mid.Issue(t, "order.example.com")

	anchors, err := x509chain.NewAnchorSet(root.Cert)
	require.NoError(t, err)

	tree := x509chain.NewVerifyTree()
	seq, err := x509chain.NewBuilder(anchors, 0).BuildFrom(context.Background(), leaf.Cert, certs(longMid, upper, mid), tree)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"order.example.com", "Mid", "Order Root"},
		{"order.example.com", "Mid", "Upper", "Order Root"},
	}, collect(t, seq))

	// The sequence can be consumed again with the same result.
	assert.Len(t, collect(t, seq), 2)
}

func TestBuilder_AnchorOrderBreaksTies(t *testing.T) {
	first := certtest.NewRoot(t, "Shared Root")
	second := certtest.NewRoot(t, "Shared Root")
	leafA := first.Issue(t, "tie.example.com")

	anchors, err := x509chain.NewAnchorSet(second.Cert, first.Cert)
	require.NoError(t, err)

	seq, err := x509chain.NewBuilder(anchors, 0).BuildFrom(context.Background(), leafA.Cert, nil, x509chain.NewVerifyTree())
	require.NoError(t, err)

	var anchorsSeen []bool
	for p := range seq {
		anchorsSeen = append(anchorsSeen, p.Anchor().Matches(second.Cert))
	}
	assert.Equal(t, []bool{true, false}, anchorsSeen)
}

func TestBuilder_LeafSelection(t *testing.T) {
	root := certtest.NewRoot(t, "Select Root")
	inter := root.Issue(t, "Select Inter", certtest.AsCA(-1))
	leaf := inter.Issue(t, "select.example.com")

	anchors, err := x509chain.NewAnchorSet(root.Cert)
	require.NoError(t, err)
	builder := x509chain.NewBuilder(anchors, 5)

	t.Run("Without Selector", func(t *testing.T) {
		seq, err := builder.Build(context.Background(), nil, certs(inter, leaf), x509chain.NewVerifyTree())
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"select.example.com", "Select Inter", "Select Root"}}, collect(t, seq))
	})

	t.Run("With Selector", func(t *testing.T) {
		seq, err := builder.Build(context.Background(), x509chain.MatchSubject(inter.Cert.Subject()), certs(inter, leaf), x509chain.NewVerifyTree())
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Select Inter", "Select Root"}}, collect(t, seq))
	})

	t.Run("Selector Matches Nothing", func(t *testing.T) {
		_, err := builder.Build(context.Background(), x509chain.MatchSubjectString("nobody"), certs(inter, leaf), x509chain.NewVerifyTree())
		require.ErrorIs(t, err, x509chain.ErrChainNotFound)
	})
}

func TestBuilder_BudgetBoundsSearch(t *testing.T) {
	root := certtest.NewRoot(t, "Budget Root")
	leaf := certtest.NewRoot(t, "Budget Loop").Issue(t, "budget.example.com")

	// Many certificates sharing one name form a dense graph with no anchor.
	var pool []*certtest.Issued
	for range 6 {
		pool = append(pool, certtest.NewRoot(t, "Budget Loop"))
	}

	anchors, err := x509chain.NewAnchorSet(root.Cert)
	require.NoError(t, err)

	tree := x509chain.NewVerifyTree()
	_, err = x509chain.NewBuilder(anchors, 4).BuildFrom(context.Background(), leaf.Cert, certs(pool...), tree)
	require.ErrorIs(t, err, x509chain.ErrChainNotFound)
	assert.LessOrEqual(t, tree.Len(), 4*(len(pool)+anchors.Len()+1))
}

func TestBuilder_BudgetKeepsAnchoredBranch(t *testing.T) {
	root := certtest.NewRoot(t, "Shared Root")
	leaf := root.Issue(t, "kept.example.com")

	var loop []*certtest.Issued
	for range 5 {
		loop = append(loop, certtest.NewRoot(t, "Budget Loop"))
	}
	// Lookalikes of the root lead into the loop and use up the budget
	// after the anchor has already been reached.
	pool := append([]*certtest.Issued{
		loop[0].Issue(t, "Shared Root", certtest.AsCA(-1)),
		loop[0].Issue(t, "Shared Root", certtest.AsCA(-1)),
	}, loop...)

	anchors, err := x509chain.NewAnchorSet(root.Cert)
	require.NoError(t, err)

	tree := x509chain.NewVerifyTree()
	seq, err := x509chain.NewBuilder(anchors, 4).BuildFrom(context.Background(), leaf.Cert, certs(pool...), tree)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"kept.example.com", "Shared Root"}}, collect(t, seq))

	leafNode := tree.Node(tree.Roots()[0])
	assert.Equal(t, x509chain.OutcomeAdvanced, leafNode.Outcome, "trace:\n%s", tree.Render())
	assert.Contains(t, leafNode.Reason, "search budget exhausted")

	var exhausted bool
	for _, n := range tree.Rejections() {
		exhausted = exhausted || n.Reason == "search budget exhausted"
	}
	assert.True(t, exhausted, "trace:\n%s", tree.Render())
}

func TestNewCandidatePath(t *testing.T) {
	root := certtest.NewRoot(t, "Manual Root")
	leaf := root.Issue(t, "manual.example.com")

	anchors, err := x509chain.NewAnchorSet(root.Cert)
	require.NoError(t, err)

	_, err = x509chain.NewCandidatePath(anchors)
	assert.ErrorIs(t, err, x509chain.ErrEmptyPath)

	_, err = x509chain.NewCandidatePath(anchors, leaf.Cert)
	assert.ErrorIs(t, err, x509chain.ErrInvalidAnchor)

	path, err := x509chain.NewCandidatePath(anchors, leaf.Cert, root.Cert)
	require.NoError(t, err)
	assert.Equal(t, 2, path.Len())
	assert.True(t, path.Leaf().Equal(leaf.Cert))

	params := newParams(t, root)
	result, err := x509chain.NewValidator(params).Validate(path)
	require.NoError(t, err)
	assert.Len(t, result.Path, 2)

	// Reversed order breaks name chaining.
	bad, err := x509chain.NewCandidatePath(anchors, root.Cert, leaf.Cert, root.Cert)
	require.NoError(t, err)
	_, err = x509chain.NewValidator(params).Validate(bad)
	assert.ErrorIs(t, err, x509chain.ErrNameMismatch)
}
