// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the validate-chain command.
//
// The command takes a trusted certificate followed by the leaf and any number
// of intermediates, builds every candidate path from the leaf to the trust
// anchor and validates them in order. It prints SUCCESSFULLY VALIDATED with the
// accepted path, or FAILED TO VALIDATE followed by the verify tree. Flags
// override the configuration file loaded through the config package.
package cli
