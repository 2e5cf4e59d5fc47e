// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"math/big"
	"time"
)

// PublicKey is the subject public key of a certificate.
type PublicKey struct {
	Algorithm x509.PublicKeyAlgorithm
	Key       crypto.PublicKey
	// Raw is the DER encoded SubjectPublicKeyInfo.
	Raw []byte
}

// BasicConstraints is the decoded basicConstraints extension.
type BasicConstraints struct {
	// Present is false when the certificate carries no basicConstraints extension.
	Present bool
	IsCA    bool
	// MaxPathLen is -1 when no pathLenConstraint was declared.
	MaxPathLen int
}

// Certificate is an immutable, parsed [X.509] certificate.
//
// Values are created once by [Parse] (or a [Codec]) and never modified, so a
// single Certificate may be read concurrently by any number of validations.
//
// [X.509]: https://grokipedia.com/page/X.509
type Certificate struct {
	c       *x509.Certificate
	subject Name
	issuer  Name
	fp      string
}

// FromX509 wraps an already parsed certificate. The caller must not modify
// cert afterwards.
func FromX509(cert *x509.Certificate) *Certificate {
	sum := sha256.Sum256(cert.Raw)
	return &Certificate{
		c:       cert,
		subject: rawName(cert.RawSubject, cert.Subject),
		issuer:  rawName(cert.RawIssuer, cert.Issuer),
		fp:      hex.EncodeToString(sum[:]),
	}
}

// rawName prefers the encoded name so multi-valued RDNs keep their grouping.
func rawName(raw []byte, dn pkix.Name) Name {
	if len(raw) > 0 {
		if name, err := ParseName(raw); err == nil {
			return name
		}
	}
	return NewName(dn)
}

// Subject returns the subject distinguished name.
func (c *Certificate) Subject() Name { return c.subject }

// Issuer returns the issuer distinguished name.
func (c *Certificate) Issuer() Name { return c.issuer }

// NotBefore returns the start of the validity window.
func (c *Certificate) NotBefore() time.Time { return c.c.NotBefore }

// NotAfter returns the end of the validity window.
func (c *Certificate) NotAfter() time.Time { return c.c.NotAfter }

// SerialNumber returns a copy of the serial number.
func (c *Certificate) SerialNumber() *big.Int { return new(big.Int).Set(c.c.SerialNumber) }

// PublicKey returns the subject public key.
func (c *Certificate) PublicKey() PublicKey {
	return PublicKey{
		Algorithm: c.c.PublicKeyAlgorithm,
		Key:       c.c.PublicKey,
		Raw:       bytes.Clone(c.c.RawSubjectPublicKeyInfo),
	}
}

// SignatureAlgorithm returns the algorithm the issuer signed this certificate with.
func (c *Certificate) SignatureAlgorithm() x509.SignatureAlgorithm { return c.c.SignatureAlgorithm }

// Signature returns a copy of the signature value.
func (c *Certificate) Signature() []byte { return bytes.Clone(c.c.Signature) }

// Raw returns a copy of the complete DER encoding.
func (c *Certificate) Raw() []byte { return bytes.Clone(c.c.Raw) }

// RawTBS returns a copy of the signed tbsCertificate bytes.
func (c *Certificate) RawTBS() []byte { return bytes.Clone(c.c.RawTBSCertificate) }

// Extensions returns a copy of the raw extensions.
func (c *Certificate) Extensions() []pkix.Extension {
	out := make([]pkix.Extension, len(c.c.Extensions))
	copy(out, c.c.Extensions)
	return out
}

// BasicConstraints returns the decoded basicConstraints extension.
func (c *Certificate) BasicConstraints() BasicConstraints {
	bc := BasicConstraints{
		Present:    c.c.BasicConstraintsValid,
		IsCA:       c.c.BasicConstraintsValid && c.c.IsCA,
		MaxPathLen: -1,
	}
	if bc.IsCA && (c.c.MaxPathLen > 0 || c.c.MaxPathLenZero) {
		bc.MaxPathLen = c.c.MaxPathLen
	}
	return bc
}

// Fingerprint returns the hex encoded SHA-256 digest of the DER encoding.
func (c *Certificate) Fingerprint() string { return c.fp }

// Label returns a short human readable name for diagnostics.
func (c *Certificate) Label() string { return c.subject.CommonName() }

// IsSelfIssued reports whether subject and issuer names match.
func (c *Certificate) IsSelfIssued() bool { return c.subject.Equal(c.issuer) }

// Equal reports whether both certificates have identical DER encodings.
func (c *Certificate) Equal(other *Certificate) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.fp == other.fp && bytes.Equal(c.c.Raw, other.c.Raw)
}

// SameIdentity reports whether both certificates carry the same subject name
// and public key, regardless of the rest of their content.
func (c *Certificate) SameIdentity(other *Certificate) bool {
	if c == nil || other == nil {
		return false
	}
	return c.subject.Equal(other.subject) &&
		bytes.Equal(c.c.RawSubjectPublicKeyInfo, other.c.RawSubjectPublicKeyInfo)
}

// CheckSignedBy verifies the signature of c with the public key of issuer.
// It does not look at the issuer's basic constraints.
func (c *Certificate) CheckSignedBy(issuer *Certificate) error {
	return issuer.c.CheckSignature(c.c.SignatureAlgorithm, c.c.RawTBSCertificate, c.c.Signature)
}

// X509 returns the underlying standard library certificate.
// The returned value must be treated as read-only.
func (c *Certificate) X509() *x509.Certificate { return c.c }
