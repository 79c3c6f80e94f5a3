// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Token interface represents an OAuth2 access_token, an optional OIDC
// id_token and an optional refresh_token, as returned by an ADFS token
// exchange.
type Token interface {
	// AccessToken is the bearer token issued by ADFS.  ADFS issues it as a
	// JWT, other authorization servers may issue an opaque value.
	AccessToken() AccessToken

	// IdToken is the raw id_token from the token response, if any.
	IdToken() IdToken

	// RefreshToken is the refresh_token from the token response, if any.
	RefreshToken() RefreshToken

	// Expiry is the access_token's expiration time.  A zero value means it
	// doesn't expire.
	Expiry() time.Time

	// Valid reports whether the access_token is non-empty and unexpired.
	Valid() bool

	// IsExpired reports whether the access_token has expired.
	IsExpired() bool

	// StaticTokenSource returns a TokenSource that always returns the same
	// access_token.
	StaticTokenSource() oauth2.TokenSource
}

// Tk satisfies the Token interface and wraps the oauth2.Token returned by
// the exchange.
type Tk struct {
	idToken    IdToken
	underlying *oauth2.Token

	// nowFunc is an optional function that returns the current time
	nowFunc func() time.Time
}

// ensure that Tk implements the Token interface.
var _ Token = (*Tk)(nil)

// NewToken creates a new Token (*Tk).  The id_token is read from the
// token response's raw values, when present.
//
// Supported options: WithNow
func NewToken(t *oauth2.Token, opt ...Option) (*Tk, error) {
	const op = "NewToken"
	if t == nil {
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	}
	opts := getTokenOpts(opt...)
	var idToken IdToken
	if raw, ok := t.Extra("id_token").(string); ok {
		idToken = IdToken(raw)
	}
	return &Tk{
		idToken:    idToken,
		underlying: t,
		nowFunc:    opts.withNowFunc,
	}, nil
}

// AccessToken implements the Token.AccessToken() interface function.
func (t *Tk) AccessToken() AccessToken { return AccessToken(t.underlying.AccessToken) }

// IdToken implements the Token.IdToken() interface function.
func (t *Tk) IdToken() IdToken { return t.idToken }

// RefreshToken implements the Token.RefreshToken() interface function.
func (t *Tk) RefreshToken() RefreshToken { return RefreshToken(t.underlying.RefreshToken) }

// Expiry implements the Token.Expiry() interface function.
func (t *Tk) Expiry() time.Time { return t.underlying.Expiry }

// StaticTokenSource implements the Token.StaticTokenSource() interface
// function.
func (t *Tk) StaticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(t.underlying)
}

// Extra returns a raw value from the token response, for example the
// "resource" ADFS echoes back.
func (t *Tk) Extra(key string) interface{} {
	return t.underlying.Extra(key)
}

// expirySkew is the skew used when checking the access_token's expiration.
const expirySkew = 10 * time.Second

// IsExpired will return true if the token's access token is expired or
// empty.
func (t *Tk) IsExpired() bool {
	if t.underlying.Expiry.IsZero() {
		return false
	}
	return t.underlying.Expiry.Round(0).Before(t.now().Add(expirySkew))
}

// Valid will ensure that the access_token is not empty or expired.
func (t *Tk) Valid() bool {
	if t == nil || t.underlying == nil {
		return false
	}
	if t.underlying.AccessToken == "" {
		return false
	}
	return !t.IsExpired()
}

// now returns the current time using the optional nowFunc.
func (t *Tk) now() time.Time {
	if t.nowFunc != nil {
		return t.nowFunc()
	}
	return time.Now()
}

// tokenOptions is the set of available options for Token functions
type tokenOptions struct {
	withNowFunc func() time.Time
}

// tokenDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func tokenDefaults() tokenOptions {
	return tokenOptions{}
}

// getTokenOpts parses the optional arguments for the Token functions
func getTokenOpts(opt ...Option) tokenOptions {
	opts := tokenDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
