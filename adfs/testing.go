// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestGenerateKeys will generate a test ECDSA P-256 pub/priv key pair
func TestGenerateKeys(t *testing.T) (pub, priv string) {
	t.Helper()
	require := require.New(t)
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)

	{
		derBytes, err := x509.MarshalECPrivateKey(privateKey)
		require.NoError(err)
		priv = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: derBytes}))
	}
	{
		derBytes, err := x509.MarshalPKIXPublicKey(privateKey.Public())
		require.NoError(err)
		pub = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes}))
	}
	return pub, priv
}

// TestSignJWT will bundle the provided claims into a test ES256 signed JWT.
// The provided key must be a PEM encoded ECDSA private key.
func TestSignJWT(t *testing.T, ecdsaPrivKeyPEM string, claims jwt.Claims, privateClaims map[string]interface{}) string {
	t.Helper()
	require := require.New(t)
	block, _ := pem.Decode([]byte(ecdsaPrivKeyPEM))
	require.NotNil(block)
	key, err := x509.ParseECPrivateKey(block.Bytes)
	require.NoError(err)

	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.ES256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(err)

	raw, err := jwt.Signed(sig).
		Claims(claims).
		Claims(privateClaims).
		CompactSerialize()
	require.NoError(err)
	return raw
}

// TestUnsignedJWT will encode the claims as a compact JWT with an "alg" of
// "none" and a placeholder signature segment.  It's good enough for ADFS
// claims extraction, which doesn't verify signatures.
func TestUnsignedJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	require := require.New(t)
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(err)
	payload, err := json.Marshal(claims)
	require.NoError(err)
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// TestNewToken creates a Token from an access_token and an optional
// id_token, as if they were returned by a token exchange.
func TestNewToken(t *testing.T, accessToken, idToken string) *Tk {
	t.Helper()
	require := require.New(t)
	tk := &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"}
	if idToken != "" {
		tk = tk.WithExtra(map[string]interface{}{"id_token": idToken})
	}
	got, err := NewToken(tk)
	require.NoError(err)
	return got
}
