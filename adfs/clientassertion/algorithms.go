// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto/rsa"
	"fmt"
)

type (
	// HSAlgorithm is an HMAC signature algorithm
	HSAlgorithm string
	// RSAlgorithm is an RSA signature algorithm
	RSAlgorithm string
)

// Signing algorithms ADFS accepts for client assertions (RFC 7518).
const (
	HS256 HSAlgorithm = "HS256"
	HS384 HSAlgorithm = "HS384"
	HS512 HSAlgorithm = "HS512"
	RS256 RSAlgorithm = "RS256"
	RS384 RSAlgorithm = "RS384"
	RS512 RSAlgorithm = "RS512"
)

// minSecretLen is the shortest secret allowed for each HMAC algorithm.
var minSecretLen = map[HSAlgorithm]int{
	HS256: 32,
	HS384: 48,
	HS512: 64,
}

// Validate checks the algorithm is supported and the secret is at least as
// long as its hash output.
func (a HSAlgorithm) Validate(secret string) error {
	const op = "HSAlgorithm.Validate"
	want, ok := minSecretLen[a]
	if !ok {
		return fmt.Errorf("%s: %w %q for client secret", op, ErrUnsupportedAlgorithm, a)
	}
	if len(secret) < want {
		return fmt.Errorf("%s: %w: %q needs at least %d bytes", op, ErrInvalidSecretLength, a, want)
	}
	return nil
}

// Validate checks the algorithm is supported and the key passes
// rsa.PrivateKey.Validate.
func (a RSAlgorithm) Validate(key *rsa.PrivateKey) error {
	const op = "RSAlgorithm.Validate"
	if key == nil {
		return fmt.Errorf("%s: %w", op, ErrNilPrivateKey)
	}
	switch a {
	case RS256, RS384, RS512:
	default:
		return fmt.Errorf("%s: %w %q for RSA key", op, ErrUnsupportedAlgorithm, a)
	}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
