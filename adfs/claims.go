// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Claims are the decoded claims of one or more JWTs.
type Claims map[string]interface{}

// ExtractClaims decodes the claims carried by the token's id_token and
// access_token and merges them into a single Claims.  The access_token is
// decoded last, so its claims win when both tokens carry the same key.
//
// Signatures are not verified.  Candidates that aren't JWTs (opaque
// access_tokens, bad base64, payloads that aren't a JSON object) are
// skipped.  A nil token yields an empty Claims.
func ExtractClaims(t Token) Claims {
	claims := Claims{}
	if isNilToken(t) {
		return claims
	}
	candidates := make([]string, 0, 2)
	if id := t.IdToken(); id != "" {
		candidates = append(candidates, string(id))
	}
	candidates = append(candidates, string(t.AccessToken()))

	for _, c := range candidates {
		raw, ok := jwtPayload(c)
		if !ok {
			continue
		}
		mergeClaims(claims, raw)
	}
	return claims
}

// ExtractIdToken returns the raw id_token of the token response, or an empty
// IdToken when there is none.  Nothing is decoded.
func ExtractIdToken(t Token) IdToken {
	if isNilToken(t) {
		return ""
	}
	return t.IdToken()
}

// jwtPayload decodes the claims segment of a compact JWT into a JSON object.
func jwtPayload(jwt string) (map[string]interface{}, bool) {
	segment, ok := claimsSegment(jwt)
	if !ok {
		return nil, false
	}
	decoded, ok := decodeSegment(segment)
	if !ok {
		return nil, false
	}
	return parseClaims(decoded)
}

// claimsSegment returns the second dot separated segment.
func claimsSegment(jwt string) (string, bool) {
	parts := strings.Split(jwt, ".")
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// decodeSegment decodes a base64url segment with or without padding.
func decodeSegment(segment string) ([]byte, bool) {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(segment)
	b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(std, "="))
	if err != nil {
		return nil, false
	}
	return b, true
}

// parseClaims decodes a JSON object.  Arrays, scalars, invalid JSON and
// trailing data are rejected.  Numbers are kept as json.Number so large
// integer claims don't lose precision.
func parseClaims(b []byte) (map[string]interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return m, true
}

func mergeClaims(dst Claims, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}

// isNilToken catches both a nil interface and a typed nil *Tk.
func isNilToken(t Token) bool {
	if t == nil {
		return true
	}
	if tk, ok := t.(*Tk); ok && (tk == nil || tk.underlying == nil) {
		return true
	}
	return false
}
