// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"fmt"
	"iter"
	"slices"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// CandidatePath is an ordered certificate sequence from a leaf towards a
// trust anchor, as produced by a [Builder]. Index 0 is the leaf and the last
// entry is the anchor.
type CandidatePath struct {
	certs  []*x509certs.Certificate
	nodes  []int
	anchor *TrustAnchor
	rank   int
}

// NewCandidatePath creates a path outside of chain building, for callers that
// already know the order. The last certificate must be a member of anchors.
func NewCandidatePath(anchors *AnchorSet, certs ...*x509certs.Certificate) (*CandidatePath, error) {
	if anchors.Len() == 0 {
		return nil, ErrNoAnchors
	}
	if len(certs) == 0 {
		return nil, ErrEmptyPath
	}
	anchor, rank, ok := anchors.Lookup(certs[len(certs)-1])
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a trust anchor", ErrInvalidAnchor, certs[len(certs)-1].Label())
	}
	return &CandidatePath{certs: slices.Clone(certs), anchor: anchor, rank: rank}, nil
}

// Len returns the number of certificates, anchor included.
func (p *CandidatePath) Len() int { return len(p.certs) }

// At returns the certificate at index i.
func (p *CandidatePath) At(i int) *x509certs.Certificate { return p.certs[i] }

// Leaf returns the first certificate.
func (p *CandidatePath) Leaf() *x509certs.Certificate { return p.certs[0] }

// Anchor returns the trust anchor that terminates the path.
func (p *CandidatePath) Anchor() *TrustAnchor { return p.anchor }

// Certificates returns a copy of the ordered certificates.
func (p *CandidatePath) Certificates() []*x509certs.Certificate { return slices.Clone(p.certs) }

// node returns the verify tree node of entry i, or -1 when the path was not
// produced by a builder.
func (p *CandidatePath) node(i int) int {
	if i < 0 || i >= len(p.nodes) {
		return -1
	}
	return p.nodes[i]
}

// Builder discovers candidate paths from a leaf to any trust anchor by
// depth-first search over name links. It records every attempt in a
// [VerifyTree].
//
// Branches are abandoned when no issuer is found, when an issuer is already
// on the branch (by encoding or by subject and key), when the path would
// exceed the maximum depth, or when the overall search budget is spent.
type Builder struct {
	anchors  *AnchorSet
	maxDepth int
}

// NewBuilder creates a builder. A maxDepth below 1 selects [DefaultMaxDepth].
func NewBuilder(anchors *AnchorSet, maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Builder{anchors: anchors, maxDepth: maxDepth}
}

// Build discovers candidate paths for every leaf accepted by sel among
// available. When sel is nil the leaves are the certificates that issued
// none of the others.
//
// Candidates are yielded shortest first; among equal lengths the one whose
// trust anchor was added to the set earliest comes first, then discovery
// order. A [*ChainNotFoundError] is returned when nothing reached an anchor,
// and [ErrNoAnchors] when the builder has no anchors at all.
func (b *Builder) Build(ctx context.Context, sel Selector, available []*x509certs.Certificate, tree *VerifyTree) (iter.Seq[*CandidatePath], error) {
	if b.anchors.Len() == 0 {
		return nil, ErrNoAnchors
	}
	leaves := b.selectLeaves(sel, available)
	if len(leaves) == 0 {
		return nil, &ChainNotFoundError{Tree: tree}
	}

	var found []*CandidatePath
	for _, leaf := range leaves {
		paths, err := b.walk(ctx, leaf, available, tree)
		if err != nil {
			return nil, err
		}
		found = append(found, paths...)
	}
	return b.finish(leaves[0], found, tree)
}

// BuildFrom discovers candidate paths starting at leaf.
func (b *Builder) BuildFrom(ctx context.Context, leaf *x509certs.Certificate, available []*x509certs.Certificate, tree *VerifyTree) (iter.Seq[*CandidatePath], error) {
	if b.anchors.Len() == 0 {
		return nil, ErrNoAnchors
	}
	found, err := b.walk(ctx, leaf, available, tree)
	if err != nil {
		return nil, err
	}
	return b.finish(leaf, found, tree)
}

func (b *Builder) finish(leaf *x509certs.Certificate, found []*CandidatePath, tree *VerifyTree) (iter.Seq[*CandidatePath], error) {
	if len(found) == 0 {
		return nil, &ChainNotFoundError{Leaf: leaf, Tree: tree}
	}
	slices.SortStableFunc(found, func(a, b *CandidatePath) int {
		if a.Len() != b.Len() {
			return a.Len() - b.Len()
		}
		return a.rank - b.rank
	})
	return slices.Values(found), nil
}

func (b *Builder) selectLeaves(sel Selector, available []*x509certs.Certificate) []*x509certs.Certificate {
	var leaves []*x509certs.Certificate
	for i, cert := range available {
		if sel != nil {
			if sel.Match(cert) == nil {
				leaves = append(leaves, cert)
			}
			continue
		}
		if !issuesAnyOther(cert, i, available) {
			leaves = append(leaves, cert)
		}
	}
	return leaves
}

func issuesAnyOther(cert *x509certs.Certificate, self int, available []*x509certs.Certificate) bool {
	for j, other := range available {
		if j != self && !other.SameIdentity(cert) && other.Issuer().Equal(cert.Subject()) {
			return true
		}
	}
	return false
}

// walker holds the state of one depth-first search.
type walker struct {
	ctx       context.Context
	b         *Builder
	available []*x509certs.Certificate
	tree      *VerifyTree
	budget    int
	path      []*x509certs.Certificate
	nodes     []int
	found     []*CandidatePath
}

func (b *Builder) walk(ctx context.Context, leaf *x509certs.Certificate, available []*x509certs.Certificate, tree *VerifyTree) ([]*CandidatePath, error) {
	w := &walker{
		ctx:       ctx,
		b:         b,
		available: available,
		tree:      tree,
		budget:    b.maxDepth * (len(available) + b.anchors.Len() + 1),
	}

	root := tree.AddRoot(leaf)
	w.budget--
	if err := w.extend(leaf, root); err != nil {
		return nil, err
	}
	return w.found, nil
}

// extend explores every issuer of cert, whose node is id.
func (w *walker) extend(cert *x509certs.Certificate, id int) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	w.path = append(w.path, cert)
	w.nodes = append(w.nodes, id)
	defer func() {
		w.path = w.path[:len(w.path)-1]
		w.nodes = w.nodes[:len(w.nodes)-1]
	}()

	if anchor, rank, ok := w.b.anchors.Lookup(cert); ok {
		w.tree.Record(id, OutcomeAnchored, "trust anchor")
		w.emit(anchor, rank)
		return nil
	}

	issuers := w.issuersOf(cert)
	if len(issuers) == 0 {
		w.tree.Record(id, OutcomeRejected, fmt.Sprintf("no issuer found for %q", cert.Issuer()))
		return nil
	}

	w.tree.Record(id, OutcomeAdvanced, "")
	found := len(w.found)
	for _, issuer := range issuers {
		if w.budget <= 0 {
			// A node that already led to a candidate stays advanced.
			if len(w.found) > found {
				w.tree.Record(id, OutcomeAdvanced, "search budget exhausted, remaining issuers not tried")
			} else {
				w.tree.Record(id, OutcomeRejected, "search budget exhausted")
			}
			return nil
		}
		w.budget--
		child := w.tree.AddChild(id, issuer)

		if pos := w.seen(issuer); pos >= 0 {
			w.tree.Record(child, OutcomeRejected, fmt.Sprintf("cycle: already in path at position %d", pos))
			continue
		}
		if len(w.path)+1 > w.b.maxDepth {
			w.tree.Record(child, OutcomeRejected, fmt.Sprintf("maximum path length %d exceeded", w.b.maxDepth))
			continue
		}
		if err := w.extend(issuer, child); err != nil {
			return err
		}
	}
	return nil
}

// issuersOf lists the anchors and then the available certificates whose
// subject equals the issuer name of cert. Available copies of an anchor
// already listed are skipped.
func (w *walker) issuersOf(cert *x509certs.Certificate) []*x509certs.Certificate {
	var out []*x509certs.Certificate
	for _, a := range w.b.anchors.FindBySubject(cert.Issuer()) {
		out = append(out, a.Certificate())
	}
	for _, c := range w.available {
		if !c.Subject().Equal(cert.Issuer()) || c.Equal(cert) {
			continue
		}
		if slices.ContainsFunc(out, c.SameIdentity) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// seen returns the position of cert on the current branch, or -1.
func (w *walker) seen(cert *x509certs.Certificate) int {
	for i, c := range w.path {
		if c.Equal(cert) || c.SameIdentity(cert) {
			return i
		}
	}
	return -1
}

func (w *walker) emit(anchor *TrustAnchor, rank int) {
	w.found = append(w.found, &CandidatePath{
		certs:  slices.Clone(w.path),
		nodes:  slices.Clone(w.nodes),
		anchor: anchor,
		rank:   rank,
	})
}
