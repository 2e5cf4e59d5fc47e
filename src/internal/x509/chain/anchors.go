// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"fmt"
	"sync"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// TrustAnchor is a certificate explicitly designated as trusted by the caller.
// Two anchors are equal when they share subject name and public key.
type TrustAnchor struct {
	cert *x509certs.Certificate
}

// Certificate returns the anchor certificate.
func (a *TrustAnchor) Certificate() *x509certs.Certificate { return a.cert }

// Equal reports whether both anchors have the same subject and public key.
func (a *TrustAnchor) Equal(other *TrustAnchor) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.cert.SameIdentity(other.cert)
}

// Matches reports whether cert is this anchor (same subject and public key).
func (a *TrustAnchor) Matches(cert *x509certs.Certificate) bool {
	return a.cert.SameIdentity(cert)
}

// AnchorSet is an ordered set of trust anchors, unique by subject and key.
// A nil *AnchorSet is an empty set for every read method.
//
// An AnchorSet is usually filled once and then shared read-only between
// validations. It is safe for concurrent use.
type AnchorSet struct {
	mu        sync.RWMutex
	anchors   []*TrustAnchor
	bySubject map[string][]int
}

// NewAnchorSet creates an anchor set holding the given certificates.
func NewAnchorSet(certs ...*x509certs.Certificate) (*AnchorSet, error) {
	s := &AnchorSet{bySubject: make(map[string][]int)}
	for _, cert := range certs {
		if err := s.Add(cert); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add designates cert as trusted.
//
// It fails with [ErrInvalidAnchor] when the certificate has an empty subject
// or issuer name. The certificate need not be self-signed. Adding an anchor
// that is already present is a no-op.
func (s *AnchorSet) Add(cert *x509certs.Certificate) error {
	if cert == nil {
		return fmt.Errorf("%w: nil certificate", ErrInvalidAnchor)
	}
	if cert.Subject().IsEmpty() {
		return fmt.Errorf("%w: certificate has an empty subject name", ErrInvalidAnchor)
	}
	if cert.Issuer().IsEmpty() {
		return fmt.Errorf("%w: certificate %q has an empty issuer name", ErrInvalidAnchor, cert.Label())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := cert.Subject().Key()
	for _, i := range s.bySubject[key] {
		if s.anchors[i].Matches(cert) {
			return nil
		}
	}

	s.anchors = append(s.anchors, &TrustAnchor{cert: cert})
	s.bySubject[key] = append(s.bySubject[key], len(s.anchors)-1)
	return nil
}

// FindBySubject returns the anchors whose subject equals name, in insertion order.
func (s *AnchorSet) FindBySubject(name x509certs.Name) []*TrustAnchor {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.bySubject[name.Key()]
	out := make([]*TrustAnchor, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.anchors[i])
	}
	return out
}

// Lookup returns the anchor that cert is, if any, along with its insertion rank.
func (s *AnchorSet) Lookup(cert *x509certs.Certificate) (*TrustAnchor, int, bool) {
	if s == nil || cert == nil {
		return nil, -1, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, i := range s.bySubject[cert.Subject().Key()] {
		if s.anchors[i].Matches(cert) {
			return s.anchors[i], i, true
		}
	}
	return nil, -1, false
}

// Contains reports whether cert is one of the anchors.
func (s *AnchorSet) Contains(cert *x509certs.Certificate) bool {
	_, _, ok := s.Lookup(cert)
	return ok
}

// Len returns the number of anchors.
func (s *AnchorSet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anchors)
}

// All returns the anchors in insertion order.
func (s *AnchorSet) All() []*TrustAnchor {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*TrustAnchor(nil), s.anchors...)
}
