// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Grant is an OAuth2 grant which can be exchanged for a Token with
// Provider.Exchange.  The request itself is made by golang.org/x/oauth2.
type Grant interface {
	// Type is the grant_type sent to the token endpoint.
	Type() string

	token(ctx context.Context, p *Provider, opts exchangeOptions) (*oauth2.Token, error)
}

// AuthorizationCode returns a grant for the code ADFS returned to the
// redirect URL.
func AuthorizationCode(code string) Grant {
	return authorizationCodeGrant{code: code}
}

// RefreshTokenGrant returns a grant which redeems a refresh_token.
func RefreshTokenGrant(rt RefreshToken) Grant {
	return refreshTokenGrant{refreshToken: rt}
}

// ClientCredentials returns a grant which authenticates the relying party
// itself.  The config must carry a client secret.
func ClientCredentials() Grant {
	return clientCredentialsGrant{}
}

// Password returns a resource owner password credentials grant.
func Password(username, password string) Grant {
	return passwordGrant{username: username, password: password}
}

type authorizationCodeGrant struct {
	code string
}

func (authorizationCodeGrant) Type() string { return "authorization_code" }

func (g authorizationCodeGrant) token(ctx context.Context, p *Provider, opts exchangeOptions) (*oauth2.Token, error) {
	const op = "authorizationCodeGrant.token"
	if g.code == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	cfg := p.oauth2Config(opts.withScopes, opts.withRedirectURL)
	authOpts := make([]oauth2.AuthCodeOption, 0, len(opts.withExtraParams)+2)
	for k, v := range opts.withExtraParams {
		if reservedParam(k) {
			continue
		}
		authOpts = append(authOpts, oauth2.SetAuthURLParam(k, v))
	}
	if p.config.Resource != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("resource", p.config.Resource))
	}
	if opts.withVerifier != "" {
		authOpts = append(authOpts, oauth2.VerifierOption(opts.withVerifier))
	}
	assertion, err := p.clientAssertionParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for k := range assertion {
		authOpts = append(authOpts, oauth2.SetAuthURLParam(k, assertion.Get(k)))
	}
	return cfg.Exchange(ctx, g.code, authOpts...)
}

type refreshTokenGrant struct {
	refreshToken RefreshToken
}

func (refreshTokenGrant) Type() string { return "refresh_token" }

func (g refreshTokenGrant) token(ctx context.Context, p *Provider, opts exchangeOptions) (*oauth2.Token, error) {
	const op = "refreshTokenGrant.token"
	if g.refreshToken == "" {
		return nil, fmt.Errorf("%s: refresh token is empty: %w", op, ErrInvalidParameter)
	}
	assertion, err := p.clientAssertionParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if assertion != nil {
		assertion.Set("grant_type", "refresh_token")
		assertion.Set("refresh_token", string(g.refreshToken))
		return assertionToken(ctx, p, nil, assertion)
	}
	cfg := p.oauth2Config(opts.withScopes, opts.withRedirectURL)
	// an expired token forces the source to redeem the refresh_token
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: string(g.refreshToken)}).Token()
}

type clientCredentialsGrant struct{}

func (clientCredentialsGrant) Type() string { return "client_credentials" }

func (clientCredentialsGrant) token(ctx context.Context, p *Provider, opts exchangeOptions) (*oauth2.Token, error) {
	const op = "clientCredentialsGrant.token"
	if p.config.ClientSecret == "" && p.config.ClientAssertionJWT == nil {
		return nil, fmt.Errorf("%s: client secret and client assertion are empty: %w", op, ErrInvalidParameter)
	}
	params, err := p.clientAssertionParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if params == nil {
		params = url.Values{}
	}
	for k, v := range opts.withExtraParams {
		params.Set(k, v)
	}
	if p.config.Resource != "" {
		params.Set("resource", p.config.Resource)
	}
	cfg := clientcredentials.Config{
		ClientID:       p.config.ClientID,
		ClientSecret:   string(p.config.ClientSecret),
		TokenURL:       p.TokenEndpoint(),
		Scopes:         opts.withScopes,
		EndpointParams: params,
	}
	if p.config.ClientAssertionJWT != nil {
		cfg.AuthStyle = oauth2.AuthStyleInParams
	}
	return cfg.Token(ctx)
}

type passwordGrant struct {
	username string
	password string
}

func (passwordGrant) Type() string { return "password" }

func (g passwordGrant) token(ctx context.Context, p *Provider, opts exchangeOptions) (*oauth2.Token, error) {
	const op = "passwordGrant.token"
	if g.username == "" {
		return nil, fmt.Errorf("%s: username is empty: %w", op, ErrInvalidParameter)
	}
	cfg := p.oauth2Config(opts.withScopes, opts.withRedirectURL)
	assertion, err := p.clientAssertionParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if assertion != nil {
		assertion.Set("grant_type", "password")
		assertion.Set("username", g.username)
		assertion.Set("password", g.password)
		return assertionToken(ctx, p, cfg.Scopes, assertion)
	}
	return cfg.PasswordCredentialsToken(ctx, g.username, g.password)
}

// assertionToken posts a grant authenticated by a client assertion.
// oauth2.Config's refresh and password requests can't carry extra params,
// so these are sent through clientcredentials with grant_type replaced.
func assertionToken(ctx context.Context, p *Provider, scopes []string, params url.Values) (*oauth2.Token, error) {
	cfg := clientcredentials.Config{
		ClientID:       p.config.ClientID,
		TokenURL:       p.TokenEndpoint(),
		Scopes:         scopes,
		EndpointParams: params,
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	return cfg.Token(ctx)
}

// exchangeOptions is the set of available options for Provider.Exchange
type exchangeOptions struct {
	withScopes      []string
	withRedirectURL string
	withVerifier    string
	withExtraParams map[string]string
}

// exchangeDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func exchangeDefaults() exchangeOptions {
	return exchangeOptions{}
}

// getExchangeOpts gets the defaults and applies the opt overrides passed in.
func getExchangeOpts(opt ...Option) exchangeOptions {
	opts := exchangeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
