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

const timeLayout = "2006-01-02 15:04:05Z"

// ValidateResult describes a successfully validated path.
type ValidateResult struct {
	// Path is the validated chain, leaf first and trust anchor last.
	Path []*x509certs.Certificate
	// Anchor is the trust anchor the path terminates at.
	Anchor *TrustAnchor
	// PublicKey is the leaf's subject public key.
	PublicKey x509certs.PublicKey
	// ValidationTime is the instant the validity windows were checked against.
	ValidationTime time.Time
}

// Leaf returns the first certificate of the path.
func (r *ValidateResult) Leaf() *x509certs.Certificate { return r.Path[0] }

// Validator runs the per-link checks on a candidate path.
type Validator struct {
	params *ProcessingParams
}

// NewValidator creates a validator for params. The params must have a
// non-zero ValidationTime; [ValidateChain] takes care of that.
func NewValidator(params *ProcessingParams) *Validator {
	return &Validator{params: params}
}

// Validate checks path and returns the first failing check as a
// [*LinkError].
//
// Checks run from the leaf towards the anchor. For each link (i, i+1): the
// issuer name of i must match the subject of i+1, i must be within its
// validity window unless it is the anchor, the signature of i must verify
// with the key of i+1, and i+1 must be allowed to act as a CA.
func (v *Validator) Validate(path *CandidatePath) (*ValidateResult, error) {
	if path == nil || path.Len() == 0 {
		return nil, ErrEmptyPath
	}

	p := v.params
	at := p.ValidationTime
	last := path.Len() - 1

	if p.Target != nil {
		if err := p.Target.Match(path.Leaf()); err != nil {
			return nil, &LinkError{Cert: path.Leaf(), Err: ErrTargetMismatch, Detail: err.Error()}
		}
	}

	for i := 0; i < last; i++ {
		subject, issuer := path.At(i), path.At(i+1)

		if !subject.Issuer().Equal(issuer.Subject()) {
			return nil, &LinkError{
				Index: i, Position: i + 1, Cert: subject, Err: ErrNameMismatch,
				Detail: fmt.Sprintf("issuer %q does not match subject %q", subject.Issuer(), issuer.Subject()),
			}
		}
		if err := checkValidity(subject, i, at); err != nil {
			return nil, err
		}
		if err := subject.CheckSignedBy(issuer); err != nil {
			return nil, &LinkError{
				Index: i, Position: i + 1, Cert: subject, Err: ErrSignatureVerification,
				Detail: fmt.Sprintf("signature of %q does not verify with the key of %q: %v", subject.Label(), issuer.Label(), err),
			}
		}
		if i+1 < last || p.EnforceAnchorConstraints {
			if err := v.checkAuthority(path, i+1); err != nil {
				return nil, err
			}
		}
		for _, checker := range p.Checkers {
			if err := checker.CheckLink(subject, issuer, i, at); err != nil {
				return nil, &LinkError{Index: i, Position: i + 1, Cert: subject, Err: err, Detail: err.Error()}
			}
		}
	}

	return &ValidateResult{
		Path:           path.Certificates(),
		Anchor:         path.Anchor(),
		PublicKey:      path.Leaf().PublicKey(),
		ValidationTime: at,
	}, nil
}

func checkValidity(cert *x509certs.Certificate, i int, at time.Time) error {
	if at.Before(cert.NotBefore()) {
		return &LinkError{
			Index: i, Position: i, Cert: cert, Err: ErrNotYetValid,
			Detail: fmt.Sprintf("not valid until %s", cert.NotBefore().UTC().Format(timeLayout)),
		}
	}
	if at.After(cert.NotAfter()) {
		return &LinkError{
			Index: i, Position: i, Cert: cert, Err: ErrExpiredCertificate,
			Detail: fmt.Sprintf("expired %s", cert.NotAfter().UTC().Format(timeLayout)),
		}
	}
	return nil
}

// checkAuthority verifies the basic constraints of the issuer at index j.
func (v *Validator) checkAuthority(path *CandidatePath, j int) error {
	ca := path.At(j)
	bc := ca.BasicConstraints()

	switch {
	case bc.Present && !bc.IsCA:
		return &LinkError{
			Index: j, Position: j, Cert: ca, Err: ErrNotCertificateAuthority,
			Detail: "basicConstraints has CA=false",
		}
	case !bc.Present && v.params.RequireCA:
		return &LinkError{
			Index: j, Position: j, Cert: ca, Err: ErrNotCertificateAuthority,
			Detail: "basicConstraints extension is missing",
		}
	}

	if bc.MaxPathLen < 0 {
		return nil
	}
	// Intermediates between the leaf and j, excluding self-issued ones.
	below := 0
	for k := 1; k < j; k++ {
		if !path.At(k).IsSelfIssued() {
			below++
		}
	}
	if below > bc.MaxPathLen {
		return &LinkError{
			Index: j, Position: j, Cert: ca, Err: ErrPathLengthExceeded,
			Detail: fmt.Sprintf("pathLenConstraint %d allows fewer than the %d intermediate certificates below it", bc.MaxPathLen, below),
		}
	}
	return nil
}
