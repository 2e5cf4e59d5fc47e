// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderASCIITree renders the validated path as an ASCII tree diagram.
//
// Returns:
//   - string: ASCII tree of the path, leaf first
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if ch.result == nil {
		return "No validated path"
	}

	path := ch.result.Path
	var result strings.Builder
	for i, cert := range path {
		connector := "├── "
		if i == len(path)-1 {
			connector = "└── "
		}
		result.WriteString(strings.Repeat("    ", i))
		result.WriteString(connector)
		fmt.Fprintf(&result, "[✓] %s (%s)\n", cert.Label(), certificateRole(i, len(path)))
	}

	return result.String()
}

// RenderTable renders the validated path as a markdown table.
//
// It lists role, subject, issuer, validity end and key size of every
// certificate using tablewriter.
//
// Returns:
//   - string: Markdown table of the path
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if ch.result == nil {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Status"})

	path := ch.result.Path
	rows := make([][]string, 0, len(path))
	for i, cert := range path {
		status := "verified"
		if i == len(path)-1 {
			status = "trusted"
		}
		algo, size := keyInfo(cert)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			certificateRole(i, len(path)),
			cert.Subject().CommonName(),
			cert.Issuer().CommonName(),
			cert.NotAfter().UTC().Format("2006-01-02"),
			fmt.Sprintf("%d-bit %s", size, algo),
			status,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// VisualizationData is the JSON form of a validation run.
type VisualizationData struct {
	Validated      bool                 `json:"validated"`
	ValidationTime string               `json:"validationTime,omitempty"`
	ChainLength    int                  `json:"chainLength"`
	Certificates   []CertificateVizData `json:"certificates"`
	Relationships  []RelationshipData   `json:"relationships"`
	Rejections     []RejectionData      `json:"rejections,omitempty"`
}

// CertificateVizData describes one certificate of the validated path.
type CertificateVizData struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	Fingerprint        string    `json:"fingerprint"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	KeySize            int       `json:"keySize"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
}

// RelationshipData links a certificate to its issuer.
type RelationshipData struct {
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
	Type      string `json:"type"`
}

// RejectionData is one rejected verify tree node.
type RejectionData struct {
	Subject string `json:"subject"`
	Depth   int    `json:"depth"`
	Reason  string `json:"reason"`
}

// ToVisualizationJSON converts the last validation to structured JSON.
//
// On success the certificates of the validated path and their signed_by
// relationships are included; rejections from the verify tree are always
// included.
//
// Returns:
//   - []byte: JSON representation
//   - error: Error if JSON marshaling fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) ToVisualizationJSON() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	data := VisualizationData{
		Certificates:  []CertificateVizData{},
		Relationships: []RelationshipData{},
	}

	if ch.result != nil {
		path := ch.result.Path
		data.Validated = true
		data.ValidationTime = ch.result.ValidationTime.UTC().Format(time.RFC3339)
		data.ChainLength = len(path)

		for i, cert := range path {
			algo, size := keyInfo(cert)
			data.Certificates = append(data.Certificates, CertificateVizData{
				Index:              i,
				Role:               certificateRole(i, len(path)),
				Subject:            cert.Subject().String(),
				Issuer:             cert.Issuer().String(),
				SerialNumber:       cert.SerialNumber().String(),
				Fingerprint:        cert.Fingerprint(),
				SignatureAlgorithm: cert.SignatureAlgorithm().String(),
				PublicKeyAlgorithm: algo,
				KeySize:            size,
				NotBefore:          cert.NotBefore().UTC(),
				NotAfter:           cert.NotAfter().UTC(),
				IsCA:               cert.BasicConstraints().IsCA,
			})
		}

		// Each certificate is signed by the next one in the path.
		for i := 0; i < len(path)-1; i++ {
			data.Relationships = append(data.Relationships, RelationshipData{
				FromIndex: i,
				ToIndex:   i + 1,
				Type:      "signed_by",
			})
		}
	}

	for _, n := range ch.tree.Rejections() {
		data.Rejections = append(data.Rejections, RejectionData{
			Subject: n.Cert.Subject().String(),
			Depth:   n.Depth,
			Reason:  n.Reason,
		})
	}

	return json.MarshalIndent(data, "", "  ")
}

// certificateRole describes the position of a certificate in a path of
// total certificates.
func certificateRole(index, total int) string {
	switch {
	case total == 1:
		return "Trust Anchor (Target)"
	case index == 0:
		return "End-Entity (Leaf) Certificate"
	case index == total-1:
		return "Trust Anchor"
	default:
		return "Intermediate CA Certificate"
	}
}

func keyInfo(cert *x509certs.Certificate) (string, int) {
	switch pub := cert.PublicKey().Key.(type) {
	case *rsa.PublicKey:
		return "RSA", pub.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
