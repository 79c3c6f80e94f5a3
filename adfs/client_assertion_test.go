// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/b3it/adfs-cap/adfs/clientassertion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAssertionProvider returns a provider for a relying party which
// authenticates with a client assertion signed by key.
func testAssertionProvider(t *testing.T, tp *TestProvider, key *rsa.PrivateKey) *Provider {
	t.Helper()
	require := require.New(t)
	const (
		clientID = "test-assertion-client"
		redirect = "https://example.com"
	)
	tp.SetClientCreds(clientID, "")
	tp.SetAllowedRedirectURIs([]string{redirect})
	tp.SetClientAssertionKey(&key.PublicKey)

	c, err := NewConfig(tp.AuthServerURL(), clientID, "", redirect, WithProviderCA(tp.CACert()), WithResource("urn:app"))
	require.NoError(err)
	j, err := clientassertion.NewJWT(c.ClientID, []string{c.TokenEndpoint()},
		clientassertion.WithRSAKey(key, clientassertion.RS256),
		clientassertion.WithKeyID("test-kid"),
	)
	require.NoError(err)
	c.ClientAssertionJWT = j
	require.NoError(c.Validate())

	p, err := NewProvider(c)
	require.NoError(err)
	return p
}

func TestProvider_Exchange_ClientAssertion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tp := StartTestProvider(t)
	tp.SetExpectedAuthCode("valid-code")
	tp.SetExpectedCredentials("alice@example.com", "alice-password")
	p := testAssertionProvider(t, tp, key)

	tests := []struct {
		name          string
		grant         Grant
		wantGrantType string
		wantIdToken   bool
		wantResource  string
	}{
		{
			name:          "authorization-code",
			grant:         AuthorizationCode("valid-code"),
			wantGrantType: "authorization_code",
			wantIdToken:   true,
			wantResource:  "urn:app",
		},
		{
			name:          "refresh-token",
			grant:         RefreshTokenGrant("test-refresh-token"),
			wantGrantType: "refresh_token",
			wantIdToken:   true,
		},
		{
			name:          "password",
			grant:         Password("alice@example.com", "alice-password"),
			wantGrantType: "password",
			wantIdToken:   true,
		},
		{
			name:          "client-credentials",
			grant:         ClientCredentials(),
			wantGrantType: "client_credentials",
			wantResource:  "urn:app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := p.Exchange(ctx, tt.grant)
			require.NoError(err)
			assert.NotEmpty(got.AccessToken())

			req := tp.LastTokenRequest()
			assert.Equal(tt.wantGrantType, req.Get("grant_type"))
			assert.Equal(clientassertion.JWTTypeParam, req.Get("client_assertion_type"))
			assert.NotEmpty(req.Get("client_assertion"))
			assert.Equal("test-assertion-client", req.Get("client_id"))
			assert.Empty(req.Get("client_secret"))
			assert.Equal(tt.wantResource, req.Get("resource"))
			if tt.wantIdToken {
				assert.Equal(got.IdToken(), p.IdToken())
				assert.NotEmpty(p.IdToken())
			}
		})
	}
}

func TestProvider_Exchange_ClientAssertionRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert, require := assert.New(t), require.New(t)
	signingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)

	tp := StartTestProvider(t)
	p := testAssertionProvider(t, tp, signingKey)
	// ADFS only knows another certificate
	tp.SetClientAssertionKey(&otherKey.PublicKey)

	_, err = p.Exchange(ctx, ClientCredentials())
	require.Error(err)
	assert.ErrorIs(err, ErrExchangeFailed)
	assert.Contains(err.Error(), "invalid_client")
}

type testFailingAssertion struct{}

func (testFailingAssertion) Serialize() (string, error) {
	return "", errors.New("signing key unavailable")
}

func TestProvider_Exchange_ClientAssertionSignFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tp := StartTestProvider(t)
	tp.SetExpectedAuthCode("valid-code")
	c := testProviderConfig(t, tp)
	c.ClientSecret = ""
	c.ClientAssertionJWT = testFailingAssertion{}
	p, err := NewProvider(c, WithIdToken("X.Y.Z"))
	require.NoError(t, err)

	for _, g := range []Grant{AuthorizationCode("valid-code"), RefreshTokenGrant("test-refresh-token"), Password("u", "p"), ClientCredentials()} {
		t.Run(g.Type(), func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			_, err := p.Exchange(ctx, g)
			require.Error(err)
			assert.Contains(err.Error(), "signing key unavailable")
			assert.Equal(IdToken("X.Y.Z"), p.IdToken())
		})
	}
}

func TestConfig_ClientAssertion(t *testing.T) {
	t.Parallel()
	t.Run("secret-and-assertion", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := NewConfig("https://adfs.example.com/adfs", "client-id", "secret", "", WithClientAssertionJWT(testFailingAssertion{}))
		require.Error(err)
		assert.ErrorIs(err, ErrInvalidParameter)
		assert.Contains(err.Error(), "mutually exclusive")
	})
	t.Run("assertion-only", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig(" https://adfs.example.com/adfs/ ", "client-id", "", "", WithClientAssertionJWT(testFailingAssertion{}))
		require.NoError(err)
		assert.Equal(testFailingAssertion{}, c.ClientAssertionJWT)
		assert.Equal("https://adfs.example.com/adfs/oauth2/token/", c.TokenEndpoint())
	})
}
