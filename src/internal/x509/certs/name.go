// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Name is a structured distinguished name.
//
// Two names are equal when their RDN sequences match after RFC 4518 style
// preparation: NFKC normalisation, case folding and whitespace collapsing of
// every string value. RDN order is significant; the order of attributes
// inside a multi-valued RDN is not.
type Name struct {
	dn  pkix.Name
	key string
}

// NewName wraps a [pkix.Name]. Every entry of dn.Names forms its own RDN;
// when Names is empty the sequence is derived from the attribute fields.
func NewName(dn pkix.Name) Name {
	var seq pkix.RDNSequence
	if len(dn.Names) > 0 {
		for _, atv := range dn.Names {
			seq = append(seq, pkix.RelativeDistinguishedNameSET{atv})
		}
	} else {
		seq = dn.ToRDNSequence()
	}
	return Name{dn: dn, key: canonicalName(seq)}
}

// ParseName decodes a DER encoded RDNSequence, keeping multi-valued RDNs intact.
func ParseName(der []byte) (Name, error) {
	var seq pkix.RDNSequence
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return Name{}, fmt.Errorf("x509certs: invalid name: %w", err)
	}
	if len(rest) > 0 {
		return Name{}, errors.New("x509certs: invalid name: trailing data")
	}

	var dn pkix.Name
	dn.FillFromRDNSequence(&seq)
	return Name{dn: dn, key: canonicalName(seq)}, nil
}

// PKIX returns the underlying [pkix.Name].
func (n Name) PKIX() pkix.Name { return n.dn }

// Key returns the canonical comparison form of the name, suitable as a map key.
func (n Name) Key() string { return n.key }

// IsEmpty reports whether the name has no attributes.
func (n Name) IsEmpty() bool { return n.key == "" }

// Equal reports whether both names denote the same distinguished name.
func (n Name) Equal(other Name) bool { return n.key == other.key }

// String returns the RFC 2253 representation of the name.
func (n Name) String() string { return n.dn.String() }

// CommonName returns the CN attribute, falling back to the full DN.
func (n Name) CommonName() string {
	if n.dn.CommonName != "" {
		return n.dn.CommonName
	}
	return n.dn.String()
}

// canonicalName encodes seq so that distinct names never share a key.
// Values are quoted, so separators inside a value cannot be mistaken for
// attribute or RDN boundaries.
func canonicalName(seq pkix.RDNSequence) string {
	var b strings.Builder
	for i, rdn := range seq {
		if i > 0 {
			b.WriteByte(',')
		}
		atvs := make([]string, 0, len(rdn))
		for _, atv := range rdn {
			atvs = append(atvs, atv.Type.String()+"="+encodeValue(atv.Value))
		}
		slices.Sort(atvs)
		b.WriteString(strings.Join(atvs, "+"))
	}
	return b.String()
}

// encodeValue quotes the prepared form of a string value. Other values are
// marked with a leading '#' outside the quotes.
func encodeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return "#" + strconv.Quote(fmt.Sprintf("%T:%v", v, v))
	}
	return strconv.Quote(PrepareString(s))
}

// PrepareString applies the comparison preparation used for name values to s.
func PrepareString(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	s = cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
