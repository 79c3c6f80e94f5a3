// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import "encoding/json"

// IdToken is an oidc id_token
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token
func (t IdToken) String() string {
	return RedactedIdToken
}

// MarshalJSON will redact the token
func (t IdToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIdToken)
}

// Claims decodes the id_token's claims payload without verifying its
// signature.  A malformed id_token yields an empty Claims.
func (t IdToken) Claims() Claims {
	claims := Claims{}
	if raw, ok := jwtPayload(string(t)); ok {
		mergeClaims(claims, raw)
	}
	return claims
}
