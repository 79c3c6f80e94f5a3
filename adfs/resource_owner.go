// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ResourceOwner is the authenticated user a Token was issued for.  Its
// claims are decoded from the token's id_token and access_token when the
// ResourceOwner is created.
type ResourceOwner struct {
	token   Token
	claims  Claims
	idClaim string
}

// NewResourceOwner creates a ResourceOwner from the token's claims.  The
// idClaim names the claim holding the owner's unique identifier and
// defaults to ResourceOwnerIdClaim when empty.
func NewResourceOwner(t Token, idClaim string) (*ResourceOwner, error) {
	const op = "NewResourceOwner"
	if isNilToken(t) {
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	}
	if idClaim == "" {
		idClaim = ResourceOwnerIdClaim
	}
	return &ResourceOwner{
		token:   t,
		claims:  ExtractClaims(t),
		idClaim: idClaim,
	}, nil
}

// ID returns the value of the owner's identifying claim (upn) or nil.
func (r *ResourceOwner) ID() interface{} {
	return r.claims[r.idClaim]
}

// Claim returns a single claim.
func (r *ResourceOwner) Claim(key string) (interface{}, bool) {
	v, ok := r.claims[key]
	return v, ok
}

// Email returns the email claim or "".
func (r *ResourceOwner) Email() string { return r.stringClaim("email") }

// Name returns the given_name claim or "".
func (r *ResourceOwner) Name() string { return r.stringClaim("given_name") }

// FamilyName returns the family_name claim or "".
func (r *ResourceOwner) FamilyName() string { return r.stringClaim("family_name") }

// UniqueName returns the unique_name claim (DOMAIN\user) or "".
func (r *ResourceOwner) UniqueName() string { return r.stringClaim("unique_name") }

// Claims returns a copy of the claims decoded when the ResourceOwner was
// created.
func (r *ResourceOwner) Claims() Claims {
	c := make(Claims, len(r.claims))
	mergeClaims(c, r.claims)
	return c
}

// ToMap decodes the held token again and returns all of its claims.  The
// result isn't cached.
func (r *ResourceOwner) ToMap() map[string]interface{} {
	return ExtractClaims(r.token)
}

// IdToken returns the raw id_token of the held token.
func (r *ResourceOwner) IdToken() IdToken {
	return ExtractIdToken(r.token)
}

// Subject returns the sub claim.
func (r *ResourceOwner) Subject() (string, error) {
	return jwt.MapClaims(r.claims).GetSubject()
}

// Issuer returns the iss claim.
func (r *ResourceOwner) Issuer() (string, error) {
	return jwt.MapClaims(r.claims).GetIssuer()
}

// Audience returns the aud claim, which may be a single string or a list.
func (r *ResourceOwner) Audience() (jwt.ClaimStrings, error) {
	return jwt.MapClaims(r.claims).GetAudience()
}

// ExpirationTime returns the exp claim, or nil when there isn't one.
func (r *ResourceOwner) ExpirationTime() (*jwt.NumericDate, error) {
	return jwt.MapClaims(r.claims).GetExpirationTime()
}

func (r *ResourceOwner) stringClaim(key string) string {
	if s, ok := r.claims[key].(string); ok {
		return s
	}
	return ""
}
