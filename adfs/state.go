// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"fmt"
	"time"
)

// State represents one authentication flow for a user against ADFS.  Id() is
// passed as the "state" parameter and is used to find the flow again when
// ADFS redirects back with the authorization code.
type State interface {
	// Id is a unique identifier and an opaque value used to maintain state
	// between the authorization request and the callback. Id cannot equal
	// the Nonce.
	Id() string

	// Nonce is a unique value used to associate a client session with an
	// id_token.  ADFS echoes it in the id_token; it is not verified here.
	Nonce() string

	// PKCEVerifier is the optional PKCE code verifier for the flow.  When
	// set, AuthURL sends its S256 challenge and the exchange sends the
	// verifier.
	PKCEVerifier() string

	// IsExpired returns true if the state has expired.
	IsExpired() bool
}

// St represents the state used for ADFS flows.
type St struct {
	id       string
	nonce    string
	verifier string

	// expiration is the expiration time for the State
	expiration time.Time

	// nowFunc is an optional function that returns the current time
	nowFunc func() time.Time
}

// ensure that St implements the State interface
var _ State = (*St)(nil)

// NewState creates a new State (*St).
//
// Supported options: WithPKCE, WithNow
func NewState(expireIn time.Duration, opt ...Option) (*St, error) {
	const op = "NewState"
	if expireIn <= 0 {
		return nil, fmt.Errorf("%s: expireIn not greater than zero: %w", op, ErrInvalidParameter)
	}
	opts := getStOpts(opt...)
	nonce, err := NewID(WithPrefix("n"))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate a state's nonce: %w", op, err)
	}
	id, err := NewID(WithPrefix("st"))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate a state's id: %w", op, err)
	}
	s := &St{
		id:       id,
		nonce:    nonce,
		verifier: opts.withVerifier,
		nowFunc:  opts.withNowFunc,
	}
	s.expiration = s.now().Add(expireIn)
	return s, nil
}

func (s *St) Id() string           { return s.id }       // Id implements the State.Id() interface function
func (s *St) Nonce() string        { return s.nonce }    // Nonce implements the State.Nonce() interface function
func (s *St) PKCEVerifier() string { return s.verifier } // PKCEVerifier implements the State.PKCEVerifier() interface function

// DefaultStateExpirySkew defines a default time skew when checking a State's
// expiration.
const DefaultStateExpirySkew = 1 * time.Second

// IsExpired returns true if the state has expired, allowing for
// DefaultStateExpirySkew.
func (s *St) IsExpired() bool {
	return s.expiration.Before(s.now().Add(DefaultStateExpirySkew))
}

// now returns the current time using the optional nowFunc.
func (s *St) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now()
}

// stOptions is the set of available options for St functions
type stOptions struct {
	withNowFunc  func() time.Time
	withVerifier string
}

// stDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func stDefaults() stOptions {
	return stOptions{}
}

// getStOpts gets the state defaults and applies the opt overrides passed in
func getStOpts(opt ...Option) stOptions {
	opts := stDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
