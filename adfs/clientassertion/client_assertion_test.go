// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "test-client-id"
	testSecret   = "a-client-secret-that-is-at-least-64-bytes-long-for-every-hs-alg!"
)

var testAudience = []string{"https://adfs.example.com/adfs/oauth2/token/"}

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func TestNewJWT(t *testing.T) {
	t.Parallel()
	key := testRSAKey(t)
	tests := []struct {
		name      string
		clientID  string
		audience  []string
		opt       []Option
		wantIsErr []error
		check     func(*testing.T, *JWT)
	}{
		{
			name:     "rsa-key",
			clientID: testClientID,
			audience: testAudience,
			opt:      []Option{WithRSAKey(key, RS256), WithKeyID("kid")},
			check: func(t *testing.T, j *JWT) {
				assert.Equal(t, key, j.key)
				assert.Equal(t, jose.RS256, j.alg)
				assert.Equal(t, "kid", j.headers["kid"])
			},
		},
		{
			name:     "client-secret",
			clientID: testClientID,
			audience: testAudience,
			opt:      []Option{WithClientSecret(testSecret, HS512), WithHeaders(map[string]string{"x5t": "thumb"})},
			check: func(t *testing.T, j *JWT) {
				assert.Equal(t, testSecret, j.secret)
				assert.Equal(t, jose.HS512, j.alg)
				assert.Equal(t, map[string]string{"x5t": "thumb"}, j.headers)
			},
		},
		{
			name:      "missing-everything",
			wantIsErr: []error{ErrMissingClientID, ErrMissingAudience, ErrMissingAlgorithm, ErrMissingKeyOrSecret},
		},
		{
			name:      "both-key-and-secret",
			clientID:  testClientID,
			audience:  testAudience,
			opt:       []Option{WithRSAKey(key, RS256), WithClientSecret(testSecret, HS256)},
			wantIsErr: []error{ErrBothKeyAndSecret},
		},
		{
			name:      "short-secret",
			clientID:  testClientID,
			audience:  testAudience,
			opt:       []Option{WithClientSecret("too-short", HS256)},
			wantIsErr: []error{ErrInvalidSecretLength},
		},
		{
			name:      "nil-key",
			clientID:  testClientID,
			audience:  testAudience,
			opt:       []Option{WithRSAKey(nil, RS256)},
			wantIsErr: []error{ErrNilPrivateKey},
		},
		{
			name:      "unsupported-alg",
			clientID:  testClientID,
			audience:  testAudience,
			opt:       []Option{WithRSAKey(key, "PS256")},
			wantIsErr: []error{ErrUnsupportedAlgorithm},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewJWT(tt.clientID, tt.audience, tt.opt...)
			if len(tt.wantIsErr) > 0 {
				require.Error(err)
				assert.Nil(got)
				for _, want := range tt.wantIsErr {
					assert.Truef(errors.Is(err, want), "wanted \"%s\" but got \"%s\"", want, err)
				}
				return
			}
			require.NoError(err)
			assert.Equal(tt.clientID, got.clientID)
			assert.Equal(tt.audience, got.audience)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestJWT_Serialize(t *testing.T) {
	t.Parallel()
	key := testRSAKey(t)
	now := time.Now().Truncate(time.Second)
	testNow := func() time.Time { return now }
	testID := func() (string, error) { return "test-jti", nil }

	t.Run("rsa", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		j, err := NewJWT(testClientID, testAudience, WithRSAKey(key, RS256), WithKeyID("test-kid"))
		require.NoError(err)
		j.now, j.genID = testNow, testID

		raw, err := j.Serialize()
		require.NoError(err)
		assert.Len(strings.Split(raw, "."), 3)

		tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.RS256})
		require.NoError(err)
		require.Len(tok.Headers, 1)
		assert.Equal("test-kid", tok.Headers[0].KeyID)
		assert.Equal("JWT", tok.Headers[0].ExtraHeaders[jose.HeaderType])

		var claims jwt.Claims
		require.NoError(tok.Claims(&key.PublicKey, &claims))
		assert.Equal(testClientID, claims.Issuer)
		assert.Equal(testClientID, claims.Subject)
		assert.Equal(jwt.Audience(testAudience), claims.Audience)
		assert.Equal("test-jti", claims.ID)
		assert.Equal(now.Add(lifetime).Unix(), claims.Expiry.Time().Unix())
		assert.Equal(now.Unix(), claims.IssuedAt.Time().Unix())
		require.NoError(claims.Validate(jwt.Expected{
			Issuer:      testClientID,
			Subject:     testClientID,
			AnyAudience: jwt.Audience(testAudience),
			Time:        now,
		}))
	})
	t.Run("secret", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		j, err := NewJWT(testClientID, testAudience, WithClientSecret(testSecret, HS256))
		require.NoError(err)

		raw, err := j.Serialize()
		require.NoError(err)
		tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
		require.NoError(err)
		var claims jwt.Claims
		require.NoError(tok.Claims([]byte(testSecret), &claims))
		assert.Equal(testClientID, claims.Subject)
	})
	t.Run("new-jti-every-call", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		j, err := NewJWT(testClientID, testAudience, WithClientSecret(testSecret, HS256))
		require.NoError(err)
		first, err := j.Serialize()
		require.NoError(err)
		second, err := j.Serialize()
		require.NoError(err)
		assert.NotEqual(first, second)
	})
	t.Run("id-generator-fails", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		j, err := NewJWT(testClientID, testAudience, WithClientSecret(testSecret, HS256))
		require.NoError(err)
		j.genID = func() (string, error) { return "", errors.New("no entropy") }
		raw, err := j.Serialize()
		require.Error(err)
		assert.Empty(raw)
		assert.Contains(err.Error(), "no entropy")
	})
	t.Run("bare", func(t *testing.T) {
		assert := assert.New(t)
		raw, err := (&JWT{}).Serialize()
		assert.Empty(raw)
		assert.ErrorIs(err, ErrMissingFuncIDGenerator)
		assert.ErrorIs(err, ErrMissingFuncNow)
	})
}

func TestAlgorithms_Validate(t *testing.T) {
	t.Parallel()
	key := testRSAKey(t)
	t.Run("hs", func(t *testing.T) {
		assert := assert.New(t)
		assert.NoError(HS256.Validate(strings.Repeat("s", 32)))
		assert.ErrorIs(HS384.Validate(strings.Repeat("s", 47)), ErrInvalidSecretLength)
		assert.NoError(HS512.Validate(strings.Repeat("s", 64)))
		assert.ErrorIs(HSAlgorithm("HS1").Validate(testSecret), ErrUnsupportedAlgorithm)
		assert.ErrorIs(HS256.Validate(""), ErrInvalidSecretLength)
	})
	t.Run("rs", func(t *testing.T) {
		assert := assert.New(t)
		assert.NoError(RS256.Validate(key))
		assert.NoError(RS512.Validate(key))
		assert.ErrorIs(RS256.Validate(nil), ErrNilPrivateKey)
		assert.ErrorIs(RSAlgorithm("ES256").Validate(key), ErrUnsupportedAlgorithm)
	})
}
