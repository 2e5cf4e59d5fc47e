// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"fmt"
	"strings"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// Outcome is the state of a certificate considered during validation.
type Outcome int

const (
	// OutcomePending means the certificate was added but not yet decided on.
	OutcomePending Outcome = iota
	// OutcomeAdvanced means the search continued past this certificate.
	OutcomeAdvanced
	// OutcomeAnchored means the certificate terminated a branch at a trust anchor.
	OutcomeAnchored
	// OutcomeRejected means this certificate ended its branch; see the reason.
	OutcomeRejected
	// OutcomeAccepted means the certificate is part of the validated path.
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeAnchored:
		return "anchored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAccepted:
		return "accepted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// mark is the single glyph used for o in rendered trees.
func (o Outcome) mark() string {
	switch o {
	case OutcomeRejected:
		return "x"
	case OutcomeAccepted:
		return "✓"
	case OutcomePending:
		return "?"
	default:
		return "+"
	}
}

// VerifyNode is one attempted certificate in a [VerifyTree].
// Parent is -1 for root nodes.
type VerifyNode struct {
	Cert     *x509certs.Certificate
	Parent   int
	Depth    int
	Children []int
	Outcome  Outcome
	Reason   string
}

// VerifyTree records every certificate attempted during chain building and
// validation, and why each branch was abandoned.
//
// Nodes live in a flat arena addressed by index; children are kept in the
// order they were attempted. A VerifyTree is owned by a single validation
// and is not safe for concurrent mutation.
type VerifyTree struct {
	nodes []VerifyNode
	roots []int
}

// NewVerifyTree creates an empty tree.
func NewVerifyTree() *VerifyTree { return &VerifyTree{} }

// AddRoot appends a root node for cert and returns its index.
func (t *VerifyTree) AddRoot(cert *x509certs.Certificate) int {
	t.nodes = append(t.nodes, VerifyNode{Cert: cert, Parent: -1})
	id := len(t.nodes) - 1
	t.roots = append(t.roots, id)
	return id
}

// AddChild appends a child of parent for cert and returns its index.
func (t *VerifyTree) AddChild(parent int, cert *x509certs.Certificate) int {
	t.nodes = append(t.nodes, VerifyNode{
		Cert:   cert,
		Parent: parent,
		Depth:  t.nodes[parent].Depth + 1,
	})
	id := len(t.nodes) - 1
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// Record sets the outcome and reason of node, replacing earlier ones.
func (t *VerifyTree) Record(node int, outcome Outcome, reason string) {
	t.nodes[node].Outcome = outcome
	t.nodes[node].Reason = reason
}

// Len returns the number of nodes.
func (t *VerifyTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns a copy of the node at index i.
func (t *VerifyTree) Node(i int) VerifyNode {
	n := t.nodes[i]
	n.Children = append([]int(nil), n.Children...)
	return n
}

// Roots returns the indices of the root nodes.
func (t *VerifyTree) Roots() []int { return append([]int(nil), t.roots...) }

// Rejections returns every rejected node in creation order.
func (t *VerifyTree) Rejections() []VerifyNode {
	if t == nil {
		return nil
	}
	var out []VerifyNode
	for i := range t.nodes {
		if t.nodes[i].Outcome == OutcomeRejected {
			out = append(out, t.Node(i))
		}
	}
	return out
}

// Walk calls fn for every node in depth-first, attempt order.
// Returning false from fn skips the children of that node.
func (t *VerifyTree) Walk(fn func(index int, node VerifyNode) bool) {
	if t == nil {
		return
	}
	var visit func(i int)
	visit = func(i int) {
		if !fn(i, t.Node(i)) {
			return
		}
		for _, c := range t.nodes[i].Children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// Render returns the tree as indented text, one line per attempted
// certificate. The output depends only on the attempts made, so the same
// inputs always render identically.
func (t *VerifyTree) Render() string {
	var b strings.Builder
	t.Walk(func(_ int, n VerifyNode) bool {
		b.WriteString(strings.Repeat("  ", n.Depth))
		fmt.Fprintf(&b, "[%s] %s (%s) %s", n.Outcome.mark(), n.Cert.Label(), shortFingerprint(n.Cert), n.Outcome)
		if n.Reason != "" {
			b.WriteString(": ")
			b.WriteString(n.Reason)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

func (t *VerifyTree) String() string { return t.Render() }

func shortFingerprint(cert *x509certs.Certificate) string {
	fp := cert.Fingerprint()
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
