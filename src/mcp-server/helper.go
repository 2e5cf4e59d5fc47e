// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
)

// errUnreadableInput is returned for an input that is neither a readable
// file, PEM data nor base64.
var errUnreadableInput = errors.New("not a readable file, PEM data, or base64-encoded DER")

// splitList splits a comma-separated argument, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readInput returns the bytes an input refers to and a label naming it.
// A path to an existing file wins over inline data.
func readInput(input, param string, index int) ([]byte, string) {
	if data, err := os.ReadFile(input); err == nil {
		return data, input
	}

	label := fmt.Sprintf("%s[%d]", param, index)
	if strings.Contains(input, "-----BEGIN") {
		return []byte(input), label
	}
	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return nil, label
	}
	return data, label
}

// decodeInputs decodes every entry of a comma-separated argument through
// the shared cache. An entry holding a bundle contributes all of its
// certificates in order. All failures are collected so a single call
// reports every bad input.
func decodeInputs(codec *x509certs.CachedCodec, param, value string) ([]*x509certs.Certificate, error) {
	inputs := splitList(value)
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s: no certificates given", param)
	}

	certs := make([]*x509certs.Certificate, 0, len(inputs))
	var errs []error
	for i, input := range inputs {
		data, label := readInput(input, param, i)
		if data == nil {
			errs = append(errs, &x509certs.ParseError{Source: label, Err: errUnreadableInput})
			continue
		}

		decoded, err := codec.DecodeMultiple(data)
		if err != nil {
			var pe *x509certs.ParseError
			if errors.As(err, &pe) {
				err = pe.Err
			}
			errs = append(errs, &x509certs.ParseError{Source: label, Err: err})
			continue
		}
		certs = append(certs, decoded...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return certs, nil
}
