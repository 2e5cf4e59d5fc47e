// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs provides the immutable [X.509] certificate model used by
// the chain validator, together with the loaders that produce it.
//
// A [Certificate] exposes subject and issuer as structured [Name] values, the
// validity window, public key, signature and basic constraints. Inputs may be
// [PEM], DER or [PKCS7] bundles; structurally invalid input is reported as a
// [*ParseError] so callers can tell load failures apart from validation failures.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
