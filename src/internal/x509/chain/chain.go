// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// Chain validates one leaf certificate against a set of trust anchors and
// keeps the outcome for rendering.
type Chain struct {
	mu sync.RWMutex

	Leaf          *x509certs.Certificate   // Certificate to validate
	Intermediates []*x509certs.Certificate // Caller supplied certificates, in input order
	Params        *ProcessingParams        // Anchors and policy

	result *ValidateResult
	tree   *VerifyTree
	now    func() time.Time
}

// New creates a new Chain.
//
// Parameters:
//   - leaf: Certificate to validate
//   - intermediates: Additional certificates available to chain building, in input order
//   - params: Processing params holding the trust anchors
//
// Returns:
//   - *Chain: New Chain instance
func New(leaf *x509certs.Certificate, intermediates []*x509certs.Certificate, params *ProcessingParams) *Chain {
	return &Chain{
		Leaf:          leaf,
		Intermediates: slices.Clone(intermediates),
		Params:        params,
		now:           time.Now,
	}
}

// Validate builds every candidate path from the leaf to a trust anchor and
// validates them in preference order until one succeeds.
//
// When no candidate reaches an anchor the error is a [*ChainNotFoundError].
// When candidates exist but all fail, the error is the [*LinkError] of the
// most preferred candidate; the verify tree records the failure of every
// candidate.
//
// Parameters:
//   - ctx: Context for cancellation of the path search
//
// Returns:
//   - error: nil when a path validated
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Validate(ctx context.Context) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.result = nil
	ch.tree = NewVerifyTree()

	params, err := ch.Params.resolve(ch.now)
	if err != nil {
		return err
	}
	if ch.Leaf == nil {
		return &ChainNotFoundError{Tree: ch.tree}
	}

	builder := NewBuilder(params.Anchors, params.MaxDepth)
	validator := NewValidator(params)

	if params.Target != nil {
		if err := params.Target.Match(ch.Leaf); err != nil {
			node := ch.tree.AddRoot(ch.Leaf)
			ch.tree.Record(node, OutcomeRejected, err.Error())
			return &LinkError{Cert: ch.Leaf, Err: ErrTargetMismatch, Detail: err.Error()}
		}
	}

	candidates, err := builder.BuildFrom(ctx, ch.Leaf, ch.Intermediates, ch.tree)
	if err != nil {
		return err
	}

	var first error
	for path := range candidates {
		result, err := validator.Validate(path)
		if err == nil {
			ch.accept(path)
			ch.result = result
			return nil
		}

		ch.reject(path, err)
		if first == nil {
			first = err
		}
	}
	return first
}

func (ch *Chain) accept(path *CandidatePath) {
	for i := range path.Len() {
		if n := path.node(i); n >= 0 {
			ch.tree.Record(n, OutcomeAccepted, "")
		}
	}
	if n := path.node(path.Len() - 1); n >= 0 {
		ch.tree.Record(n, OutcomeAccepted, "trust anchor")
	}
}

func (ch *Chain) reject(path *CandidatePath, err error) {
	var le *LinkError
	if !errors.As(err, &le) {
		return
	}
	if n := path.node(le.Position); n >= 0 {
		ch.tree.Record(n, OutcomeRejected, le.Error())
	}
}

// Result returns the outcome of the last successful [Chain.Validate], or nil.
func (ch *Chain) Result() *ValidateResult {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.result
}

// Tree returns the verify tree of the last [Chain.Validate], or nil.
func (ch *Chain) Tree() *VerifyTree {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.tree
}

// Certs returns the validated path, leaf first, or nil.
func (ch *Chain) Certs() []*x509certs.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.result == nil {
		return nil
	}
	return slices.Clone(ch.result.Path)
}

// FilterIntermediates returns the validated path without its leaf and
// trust anchor.
//
// Returns:
//   - []*x509certs.Certificate: Intermediate certificates, or nil if none
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) FilterIntermediates() []*x509certs.Certificate {
	certs := ch.Certs()
	if len(certs) <= 2 {
		return nil
	}
	return certs[1 : len(certs)-1]
}

// ValidateChain validates leaf against the anchors in params, with
// intermediates available to chain building.
//
// The verify tree is always returned, also on failure, and explains every
// branch that was tried.
//
// Parameters:
//   - ctx: Context for cancellation of the path search
//   - params: Anchors and policy for this run
//   - leaf: Certificate to validate
//   - intermediates: Other certificates, in caller input order
//
// Returns:
//   - *ValidateResult: Validated path, or nil on failure
//   - *VerifyTree: Diagnostic trace of the run
//   - error: [*ChainNotFoundError], [*LinkError] or [ErrNoAnchors]
func ValidateChain(ctx context.Context, params *ProcessingParams, leaf *x509certs.Certificate, intermediates []*x509certs.Certificate) (*ValidateResult, *VerifyTree, error) {
	ch := New(leaf, intermediates, params)
	err := ch.Validate(ctx)
	return ch.Result(), ch.Tree(), err
}
