// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certtest issues throwaway ECDSA certificates for tests.
//
// Every certificate is valid for one year either side of [Now] unless a
// validity option says otherwise, so tests pass [Now] as validation time and
// stay deterministic regardless of the wall clock.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	"github.com/stretchr/testify/require"
)

// Now is the reference validation time for generated certificates.
var Now = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

var serial atomic.Int64

// Issued is a generated certificate together with its private key.
type Issued struct {
	Cert *x509certs.Certificate
	Key  *ecdsa.PrivateKey
	DER  []byte
}

type template struct {
	notBefore, notAfter time.Time
	basic               bool
	isCA                bool
	maxPathLen          int
	key                 *ecdsa.PrivateKey
	subject             *pkix.Name
}

// Option customises a generated certificate.
type Option func(*template)

// WithValidity sets the validity window.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(t *template) {
		t.notBefore = notBefore
		t.notAfter = notAfter
	}
}

// AsCA marks the certificate as a CA. A negative pathLen means unconstrained.
func AsCA(pathLen int) Option {
	return func(t *template) {
		t.basic = true
		t.isCA = true
		t.maxPathLen = pathLen
	}
}

// NotCA emits basicConstraints with CA=false.
func NotCA() Option {
	return func(t *template) {
		t.basic = true
		t.isCA = false
	}
}

// WithoutBasicConstraints omits the basicConstraints extension.
func WithoutBasicConstraints() Option {
	return func(t *template) {
		t.basic = false
		t.isCA = false
	}
}

// WithKey reuses an existing key pair, keeping the identity of an earlier certificate.
func WithKey(key *ecdsa.PrivateKey) Option {
	return func(t *template) { t.key = key }
}

// WithSubject replaces the subject built from the common name. Attributes in
// ExtraNames are encoded as one RDN each, in order.
func WithSubject(subject pkix.Name) Option {
	return func(t *template) { t.subject = &subject }
}

func newTemplate(opts []Option) *template {
	t := &template{
		notBefore:  Now.AddDate(-1, 0, 0),
		notAfter:   Now.AddDate(1, 0, 0),
		maxPathLen: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewRoot creates a self-signed CA certificate. Without options it is an
// unconstrained CA.
func NewRoot(tb testing.TB, cn string, opts ...Option) *Issued {
	tb.Helper()
	opts = append([]Option{AsCA(-1)}, opts...)
	return issue(tb, cn, nil, newTemplate(opts))
}

// Issue creates a certificate for cn signed by iss. Without options it is an
// end-entity certificate with CA=false.
func (iss *Issued) Issue(tb testing.TB, cn string, opts ...Option) *Issued {
	tb.Helper()
	opts = append([]Option{NotCA()}, opts...)
	return issue(tb, cn, iss, newTemplate(opts))
}

func issue(tb testing.TB, cn string, parent *Issued, t *template) *Issued {
	tb.Helper()

	key := t.key
	if key == nil {
		var err error
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(tb, err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial.Add(1)),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             t.notBefore,
		NotAfter:              t.notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: t.basic,
		IsCA:                  t.isCA,
	}
	if t.subject != nil {
		tmpl.Subject = *t.subject
	}
	if t.isCA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign
		switch {
		case t.maxPathLen == 0:
			tmpl.MaxPathLenZero = true
		case t.maxPathLen > 0:
			tmpl.MaxPathLen = t.maxPathLen
		default:
			tmpl.MaxPathLen = -1
		}
	}

	parentTmpl, signer := tmpl, key
	if parent != nil {
		parentTmpl, signer = parent.Cert.X509(), parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parentTmpl, &key.PublicKey, signer)
	require.NoError(tb, err)

	cert, err := x509certs.Parse(der)
	require.NoError(tb, err)

	return &Issued{Cert: cert, Key: key, DER: der}
}

// Tamper returns a copy of cert whose signature no longer verifies.
func Tamper(tb testing.TB, cert *Issued) *x509certs.Certificate {
	tb.Helper()
	der := append([]byte(nil), cert.DER...)
	// The DER ends with the last byte of the signature value.
	der[len(der)-1] ^= 0xff
	out, err := x509certs.Parse(der)
	require.NoError(tb, err)
	return out
}

// PEM returns the PEM encoding of cert.
func PEM(cert *x509certs.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw()})
}

// WriteFile stores cert as PEM in dir and returns its path.
func WriteFile(tb testing.TB, dir, name string, cert *x509certs.Certificate) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, PEM(cert), 0o600))
	return path
}
