// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements [X.509] certification path building and
// validation against an explicit set of trust anchors.
// It provides capabilities to:
//   - Build candidate paths from a leaf to any trust anchor out of an
//     unordered set of certificates, shortest first.
//   - Validate each link of a path: name chaining, validity window, signature,
//     CA basic constraint and path length constraint.
//   - Record every attempted certificate and the reason each branch was
//     abandoned in a [VerifyTree].
//   - Render the validated path as a table, an ASCII tree or JSON.
//
// Revocation and name constraints are not checked; callers plug such checks
// in through [LinkChecker].
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
