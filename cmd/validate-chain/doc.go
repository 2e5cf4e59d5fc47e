// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// validate-chain builds and validates an X.509 certification path from a leaf
// certificate to a trust anchor and explains every rejected branch.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-chain-validator/cmd/validate-chain@latest
//
// # Usage
//
//	validate-chain [FLAGS] <trustedCertFile> <cert_1> [cert_2 ... cert_n]
//
// cert_1 is the leaf. The remaining certificates are candidate intermediates
// in any order. Files may be PEM, DER or PKCS7. A bundle contributes every
// certificate it holds: all certificates in trustedCertFile are trust
// anchors, and a bundle given as cert_1 starts with the leaf. Fewer than two
// arguments print the usage text.
//
// # Flags
//
//	-c, --config              Configuration file (JSON or YAML)
//	-t, --time                Validation time in RFC 3339 format (default: now)
//	    --max-depth           Maximum path length, anchor included
//	    --lenient-ca          Accept intermediates without basicConstraints
//	    --anchor-constraints  Enforce constraints carried by the trust anchor
//	-s, --subject             Required leaf subject (RFC 2253 DN or common name)
//	    --table               Print the validated path as a markdown table
//	    --json                Print the result as JSON
//	    --metrics-file        Write Prometheus metrics in text format to this file
//
// # Output
//
// On success the tool prints SUCCESSFULLY VALIDATED and the accepted path.
// On failure it prints FAILED TO VALIDATE, the reason, and the verify tree
// listing every branch that was tried:
//
//	FAILED TO VALIDATE
//	x509chain: no certificate path to a trust anchor for "leaf.example.com" (1 branches rejected)
//
//	verifyTree is
//	[x] leaf.example.com (3f2a9c1b7d4e8a60) rejected: no issuer found for "CN=Example Intermediate"
//
// # Exit Codes
//
//	0  validated
//	1  validation failed
//	2  usage or configuration error
//	3  a certificate could not be loaded or is not a usable trust anchor
//	130 interrupted
//
// # Environment Variables
//
//	X509_VALIDATOR_CONFIG_FILE  Path to configuration file (alternative to --config flag)
package main
