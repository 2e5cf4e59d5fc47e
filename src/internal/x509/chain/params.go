// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"fmt"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// DefaultMaxDepth is the maximum number of certificates in a candidate path,
// trust anchor included, when none is configured.
const DefaultMaxDepth = 10

// Selector constrains which certificate may be the leaf of a path.
type Selector interface {
	// Match returns nil when cert is acceptable as the leaf and a short
	// reason otherwise.
	Match(cert *x509certs.Certificate) error
}

// SelectorFunc adapts a function to the [Selector] interface.
type SelectorFunc func(cert *x509certs.Certificate) error

// Match calls f(cert).
func (f SelectorFunc) Match(cert *x509certs.Certificate) error { return f(cert) }

// MatchSubject selects leaves whose subject equals name.
func MatchSubject(name x509certs.Name) Selector {
	return SelectorFunc(func(cert *x509certs.Certificate) error {
		if cert.Subject().Equal(name) {
			return nil
		}
		return fmt.Errorf("subject %q does not match %q", cert.Subject(), name)
	})
}

// MatchSubjectString selects leaves whose RFC 2253 subject, or common name,
// equals dn after name preparation.
func MatchSubjectString(dn string) Selector {
	want := x509certs.PrepareString(dn)
	return SelectorFunc(func(cert *x509certs.Certificate) error {
		subject := cert.Subject()
		if x509certs.PrepareString(subject.String()) == want ||
			x509certs.PrepareString(subject.PKIX().CommonName) == want {
			return nil
		}
		return fmt.Errorf("subject %q does not match %q", subject, dn)
	})
}

// LinkChecker is an additional per-link check run after the built-in ones,
// for example a revocation lookup. index is the position of subject in the
// path; issuer is the certificate at index+1.
type LinkChecker interface {
	CheckLink(subject, issuer *x509certs.Certificate, index int, at time.Time) error
}

// LinkCheckerFunc adapts a function to the [LinkChecker] interface.
type LinkCheckerFunc func(subject, issuer *x509certs.Certificate, index int, at time.Time) error

// CheckLink calls f.
func (f LinkCheckerFunc) CheckLink(subject, issuer *x509certs.Certificate, index int, at time.Time) error {
	return f(subject, issuer, index, at)
}

// ProcessingParams configures a single validation.
//
// Params are read-only once built and may be shared between goroutines as
// long as the configured selector and checkers are.
type ProcessingParams struct {
	// Anchors holds the trusted certificates. Must not be empty.
	Anchors *AnchorSet
	// Target, if set, must accept the leaf.
	Target Selector
	// MaxDepth bounds the number of certificates in a candidate path.
	MaxDepth int
	// RequireCA demands basicConstraints CA=true on every intermediate.
	// When false a missing extension is tolerated but an explicit CA=false
	// is still rejected.
	RequireCA bool
	// EnforceAnchorConstraints applies basic constraints checks to the
	// trust anchor too.
	EnforceAnchorConstraints bool
	// Checkers run on every link after the built-in checks.
	Checkers []LinkChecker
	// ValidationTime is the instant validity windows are checked against.
	// The zero value means the current time when validation starts.
	ValidationTime time.Time
}

// Option configures [ProcessingParams].
type Option func(*ProcessingParams)

// WithTarget sets the leaf selector.
func WithTarget(sel Selector) Option {
	return func(p *ProcessingParams) { p.Target = sel }
}

// WithMaxDepth sets the maximum path length. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(p *ProcessingParams) {
		if depth > 0 {
			p.MaxDepth = depth
		}
	}
}

// WithLenientCA tolerates intermediates without a basicConstraints extension.
func WithLenientCA() Option {
	return func(p *ProcessingParams) { p.RequireCA = false }
}

// WithAnchorConstraints applies basic constraints checks to trust anchors.
func WithAnchorConstraints() Option {
	return func(p *ProcessingParams) { p.EnforceAnchorConstraints = true }
}

// WithCheckers appends additional link checkers.
func WithCheckers(checkers ...LinkChecker) Option {
	return func(p *ProcessingParams) { p.Checkers = append(p.Checkers, checkers...) }
}

// WithValidationTime fixes the validation instant.
func WithValidationTime(at time.Time) Option {
	return func(p *ProcessingParams) { p.ValidationTime = at }
}

// NewProcessingParams creates params with strict CA checking and
// [DefaultMaxDepth], then applies opts.
func NewProcessingParams(anchors *AnchorSet, opts ...Option) (*ProcessingParams, error) {
	if anchors.Len() == 0 {
		return nil, ErrNoAnchors
	}

	p := &ProcessingParams{
		Anchors:   anchors,
		MaxDepth:  DefaultMaxDepth,
		RequireCA: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// resolve returns a copy with defaults filled in and the validation time
// pinned, so that every check of a run sees the same instant.
func (p *ProcessingParams) resolve(now func() time.Time) (*ProcessingParams, error) {
	if p == nil || p.Anchors.Len() == 0 {
		return nil, ErrNoAnchors
	}

	out := *p
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	if out.ValidationTime.IsZero() {
		out.ValidationTime = now()
	}
	return &out, nil
}
