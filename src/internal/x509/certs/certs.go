// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	encasn1 "encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/helper/gc"
	"github.com/cloudflare/cfssl/crypto/pkcs7"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrMalformedDER indicates the certificate envelope is not a well formed
	// SEQUENCE of tbsCertificate, signatureAlgorithm and signatureValue.
	ErrMalformedDER = errors.New("x509certs: malformed certificate encoding")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrEmptyInput indicates that no bytes were supplied.
	ErrEmptyInput = errors.New("x509certs: empty input")

	// ErrMultipleCertificates indicates a bundle where exactly one certificate was expected.
	ErrMultipleCertificates = errors.New("x509certs: expected a single certificate")
)

// ParseError reports a certificate that could not be loaded or decoded.
// Source names the file or input the bytes came from, if known.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse builds a [Certificate] from a single DER encoded certificate.
//
// The outer envelope is checked first so that structurally broken input is
// reported as [ErrMalformedDER] with the missing field named; the contents are
// then decoded by [x509.ParseCertificate].
func Parse(der []byte) (*Certificate, error) {
	if len(der) == 0 {
		return nil, &ParseError{Err: ErrEmptyInput}
	}
	if err := checkEnvelope(der); err != nil {
		return nil, &ParseError{Err: err}
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %v", ErrParseCertificate, err)}
	}
	return FromX509(cert), nil
}

func checkEnvelope(der []byte) error {
	input := cryptobyte.String(der)

	var body cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) {
		return fmt.Errorf("%w: missing certificate SEQUENCE", ErrMalformedDER)
	}
	if !input.Empty() {
		return fmt.Errorf("%w: trailing data after certificate", ErrMalformedDER)
	}

	var tbs, sigAlg cryptobyte.String
	if !body.ReadASN1(&tbs, cbasn1.SEQUENCE) {
		return fmt.Errorf("%w: missing tbsCertificate", ErrMalformedDER)
	}
	if !body.ReadASN1(&sigAlg, cbasn1.SEQUENCE) {
		return fmt.Errorf("%w: missing signatureAlgorithm", ErrMalformedDER)
	}

	var sig encasn1.BitString
	if !body.ReadASN1BitString(&sig) {
		return fmt.Errorf("%w: missing signatureValue", ErrMalformedDER)
	}
	if !body.Empty() {
		return fmt.Errorf("%w: unexpected fields after signatureValue", ErrMalformedDER)
	}
	return nil
}

// Codec decodes and encodes certificates in PEM, DER and PKCS7 form.
// It maintains internal configuration such as the certificate block type.
type Codec struct {
	certBlockType string
}

// New creates a new Codec with default settings.
func New() *Codec {
	return &Codec{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Codec) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Codec) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// Decode decodes exactly one certificate from PEM, DER or a PKCS7 bundle.
// Input carrying more than one certificate is rejected with
// [ErrMultipleCertificates]; use [Codec.DecodeMultiple] for bundles.
func (c *Codec) Decode(data []byte) (*Certificate, error) {
	certs, err := c.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	if len(certs) != 1 {
		return nil, &ParseError{Err: fmt.Errorf("%w: found %d", ErrMultipleCertificates, len(certs))}
	}
	return certs[0], nil
}

// DecodeMultiple decodes every certificate in data, in the order they appear.
//
// PEM input may hold any number of CERTIFICATE blocks; any other block type
// fails the whole input. DER input is either a single certificate or a PKCS7
// bundle.
func (c *Codec) DecodeMultiple(data []byte) ([]*Certificate, error) {
	if !c.IsPEM(data) {
		return c.decodeDER(data)
	}

	var certs []*Certificate
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != c.certBlockType {
			return nil, &ParseError{Err: ErrInvalidBlockType}
		}

		cert, err := Parse(block.Bytes)
		if err != nil {
			return nil, err
		}

		certs = append(certs, cert)
		data = rest
	}

	return certs, nil
}

func (c *Codec) decodeDER(data []byte) ([]*Certificate, error) {
	cert, err := Parse(data)
	if err == nil {
		return []*Certificate{cert}, nil
	}

	// DER that is not a certificate may still be a PKCS7 bundle.
	p, perr := pkcs7.ParsePKCS7(data)
	if perr != nil {
		return nil, err
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, &ParseError{Err: ErrNoCertificatesInPKCS}
	}

	certs := make([]*Certificate, 0, len(p.Content.SignedData.Certificates))
	for _, xc := range p.Content.SignedData.Certificates {
		certs = append(certs, FromX509(xc))
	}
	return certs, nil
}

// LoadFile reads and decodes every certificate stored at path, so a PEM or
// PKCS7 bundle yields all of its certificates in order.
// Any failure is returned as a [*ParseError] naming the path.
func (c *Codec) LoadFile(path string) ([]*Certificate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer f.Close()

	data, err := gc.ReadAll(f)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	certs, err := c.DecodeMultiple(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, &ParseError{Source: path, Err: pe.Err}
		}
		return nil, &ParseError{Source: path, Err: err}
	}
	return certs, nil
}
