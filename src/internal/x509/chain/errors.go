// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

var (
	// ErrInvalidAnchor indicates a certificate that cannot serve as a trust anchor.
	ErrInvalidAnchor = errors.New("x509chain: invalid trust anchor")

	// ErrNoAnchors indicates processing params without any trust anchor.
	ErrNoAnchors = errors.New("x509chain: no trust anchors configured")

	// ErrChainNotFound indicates that no path from the leaf reached a trust anchor.
	ErrChainNotFound = errors.New("x509chain: no certificate path to a trust anchor")

	// ErrEmptyPath indicates a candidate path without certificates.
	ErrEmptyPath = errors.New("x509chain: empty certificate path")

	// ErrNameMismatch indicates an issuer name that does not match the next subject name.
	ErrNameMismatch = errors.New("x509chain: issuer name mismatch")

	// ErrExpiredCertificate indicates a certificate past its notAfter time.
	ErrExpiredCertificate = errors.New("x509chain: certificate expired")

	// ErrNotYetValid indicates a certificate before its notBefore time.
	ErrNotYetValid = errors.New("x509chain: certificate not yet valid")

	// ErrSignatureVerification indicates a signature that does not verify with the issuer key.
	ErrSignatureVerification = errors.New("x509chain: signature verification failed")

	// ErrNotCertificateAuthority indicates an issuer lacking the CA basic constraint.
	ErrNotCertificateAuthority = errors.New("x509chain: issuer is not a certificate authority")

	// ErrPathLengthExceeded indicates a violated pathLenConstraint.
	ErrPathLengthExceeded = errors.New("x509chain: path length constraint exceeded")

	// ErrTargetMismatch indicates a leaf that does not satisfy the target selector.
	ErrTargetMismatch = errors.New("x509chain: target certificate does not match")
)

// LinkError reports the check that rejected a candidate path.
//
// Index is the path position of Cert, the certificate that failed (0 is the
// leaf). Position is the path entry the rejection is recorded at in the
// verify tree: the certificate itself for checks that only look at it, the
// issuer for checks that depend on which issuer was chosen.
type LinkError struct {
	Index    int
	Position int
	Cert     *x509certs.Certificate
	Err      error
	Detail   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%v: certificate %d (%s): %s", e.Err, e.Index, e.Cert.Label(), e.Detail)
}

func (e *LinkError) Unwrap() error { return e.Err }

// ChainNotFoundError is returned when chain building exhausted every branch
// without reaching a trust anchor. Tree explains every abandoned branch.
type ChainNotFoundError struct {
	Leaf *x509certs.Certificate
	Tree *VerifyTree
}

func (e *ChainNotFoundError) Error() string {
	label := "<no leaf>"
	if e.Leaf != nil {
		label = e.Leaf.Label()
	}
	rejected := 0
	if e.Tree != nil {
		rejected = len(e.Tree.Rejections())
	}
	return fmt.Sprintf("%v for %q (%d branches rejected)", ErrChainNotFound, label, rejected)
}

func (e *ChainNotFoundError) Unwrap() error { return ErrChainNotFound }
