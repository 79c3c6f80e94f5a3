// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/b3it/adfs-cap/internal/strutils"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
)

// adfsScopes are always requested in addition to the caller's default scopes.
var adfsScopes = []string{oidc.ScopeOpenID}

// Provider provides integration with ADFS: it builds the authorize, token
// and logout URLs, exchanges grants for tokens and resolves the resource
// owner from the claims ADFS puts in the tokens.
//
// The Provider keeps the id_token of the last successful exchange, so a
// logout URL built later can carry it as id_token_hint.  Access to it is
// safe for concurrent use with last-writer-wins semantics, but a Provider
// shared by several users' flows will hint with whichever id_token was
// received last, so prefer one Provider per user session.
type Provider struct {
	config *Config
	client *http.Client
	logger hclog.Logger

	mu      sync.RWMutex
	idToken IdToken
}

// NewProvider creates and initializes a Provider.  No request is made to
// ADFS.
//
// Supported options: WithLogger, WithToken, WithIdToken
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	client, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	p := &Provider{
		config:  c,
		client:  client,
		logger:  opts.withLogger.Named("adfs"),
		idToken: opts.withIdToken,
	}
	if opts.withToken != nil {
		p.idToken = ExtractIdToken(opts.withToken)
	}
	return p, nil
}

// Config returns the provider's config.
func (p *Provider) Config() *Config { return p.config }

// HTTPClient returns the http client used for requests to ADFS.
func (p *Provider) HTTPClient() *http.Client { return p.client }

// baseURL is the configured auth server URL without surrounding whitespace
// or slashes.
func (p *Provider) baseURL() string { return trimBaseURL(p.config.AuthServerURL) }

// AuthorizationEndpoint returns ADFS's authorization endpoint.
func (p *Provider) AuthorizationEndpoint() string { return p.baseURL() + authorizePath }

// TokenEndpoint returns ADFS's token endpoint.
func (p *Provider) TokenEndpoint() string { return p.config.TokenEndpoint() }

// LogoutEndpoint returns ADFS's logout endpoint.
func (p *Provider) LogoutEndpoint() string { return p.baseURL() + logoutPath }

// Endpoint returns the ADFS endpoints in the form golang.org/x/oauth2 uses.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  p.AuthorizationEndpoint(),
		TokenURL: p.TokenEndpoint(),
	}
}

// DefaultScopes returns the config's scopes followed by "openid".  The lists
// are concatenated, not de-duplicated.
func (p *Provider) DefaultScopes() []string {
	scopes := make([]string, 0, len(p.config.Scopes)+len(adfsScopes))
	scopes = append(scopes, p.config.Scopes...)
	return append(scopes, adfsScopes...)
}

// IdToken returns the id_token kept from the last exchange (or the one the
// provider was created with).
func (p *Provider) IdToken() IdToken {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.idToken
}

func (p *Provider) setIdToken(t IdToken) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idToken = t
}

// AuthURL will generate a URL the caller can use to kick off an
// authorization code flow with ADFS.  The state's Id is sent as the
// "state", its Nonce as the "nonce" and, when the state carries a PKCE
// verifier, its S256 challenge.  The configured resource is sent as
// "resource".
//
// Supported options: WithScopes, WithRedirectURL, WithPrompt,
// WithUILocales, WithLoginHint, WithDomainHint, WithResponseMode,
// WithExtraParams
func (p *Provider) AuthURL(ctx context.Context, s State, opt ...Option) (string, error) {
	const op = "Provider.AuthURL"
	if s == nil {
		return "", fmt.Errorf("%s: state is nil: %w", op, ErrNilParameter)
	}
	if s.Id() == s.Nonce() {
		return "", fmt.Errorf("%s: state id and nonce cannot be equal: %w", op, ErrInvalidParameter)
	}
	if s.IsExpired() {
		return "", fmt.Errorf("%s: state is expired: %w", op, ErrExpiredState)
	}
	opts := getAuthOpts(opt...)

	authCodeOpts := make([]oauth2.AuthCodeOption, 0, len(opts.withExtraParams)+8)
	for k, v := range opts.withExtraParams {
		if reservedParam(k) {
			continue
		}
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam(k, v))
	}
	authCodeOpts = append(authCodeOpts, oidc.Nonce(s.Nonce()))
	if p.config.Resource != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("resource", p.config.Resource))
	}
	if v := s.PKCEVerifier(); v != "" {
		authCodeOpts = append(authCodeOpts, oauth2.S256ChallengeOption(v))
	}
	if opts.withPrompt != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("prompt", opts.withPrompt))
	}
	if len(opts.withUILocales) > 0 {
		locales := make([]string, 0, len(opts.withUILocales))
		for _, l := range opts.withUILocales {
			locales = append(locales, l.String())
		}
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("ui_locales", strings.Join(locales, " ")))
	}
	if opts.withLoginHint != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("login_hint", opts.withLoginHint))
	}
	if opts.withDomainHint != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("domain_hint", opts.withDomainHint))
	}
	if opts.withResponseMode != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("response_mode", opts.withResponseMode))
	}

	cfg := p.oauth2Config(opts.withScopes, opts.withRedirectURL)
	u := cfg.AuthCodeURL(s.Id(), authCodeOpts...)
	p.logger.Debug("built authorization url", "op", op, "state", s.Id())
	return u, nil
}

// Exchange requests a token from the ADFS token endpoint for the grant.  On
// success the token's id_token replaces the one the provider keeps for
// logout, even when the new token response carries no id_token.  On failure
// the kept id_token is left untouched and the error wraps the error of
// golang.org/x/oauth2 (a *oauth2.RetrieveError when ADFS answered with an
// error response).
//
// Supported options: WithScopes, WithRedirectURL, WithPKCE, WithExtraParams
func (p *Provider) Exchange(ctx context.Context, g Grant, opt ...Option) (*Tk, error) {
	const op = "Provider.Exchange"
	if g == nil {
		return nil, fmt.Errorf("%s: grant is nil: %w", op, ErrNilParameter)
	}
	opts := getExchangeOpts(opt...)

	oauth2Token, err := g.token(HttpClientContext(ctx, p.client), p, opts)
	if err != nil {
		p.logger.Warn("token exchange failed", "op", op, "grant_type", g.Type(), "error", err)
		return nil, fmt.Errorf("%s: unable to exchange %s grant: %w: %w", op, g.Type(), ErrExchangeFailed, err)
	}
	t, err := NewToken(oauth2Token)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create token: %w", op, err)
	}
	idToken := ExtractIdToken(t)
	p.setIdToken(idToken)
	p.logger.Debug("token exchanged", "op", op, "grant_type", g.Type(), "has_id_token", idToken != "")
	return t, nil
}

// ResourceOwner returns the resource owner the token was issued for.  The
// owner's claims come from the token's JWTs; no request is made to ADFS.
func (p *Provider) ResourceOwner(t Token) (*ResourceOwner, error) {
	const op = "Provider.ResourceOwner"
	r, err := NewResourceOwner(t, ResourceOwnerIdClaim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.logger.Trace("resolved resource owner", "op", op, "claims", len(r.claims))
	return r, nil
}

// oauth2Config returns the collaborator config for a single request.  Nil
// scopes fall back to DefaultScopes and an empty redirectURL to the
// configured one.
func (p *Provider) oauth2Config(scopes []string, redirectURL string) *oauth2.Config {
	if scopes == nil {
		scopes = p.DefaultScopes()
	}
	if redirectURL == "" {
		redirectURL = p.config.RedirectURL
	}
	endpoint := p.Endpoint()
	if p.config.ClientAssertionJWT != nil {
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: string(p.config.ClientSecret),
		RedirectURL:  redirectURL,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
}

// reservedParams are set by the provider and can't be replaced by extra
// params.
var reservedParams = []string{
	"client_id",
	"response_type",
	"redirect_uri",
	"scope",
	"state",
	"grant_type",
	"code",
	"client_assertion",
	"client_assertion_type",
}

func reservedParam(k string) bool {
	return strutils.StrListContains(reservedParams, k)
}

// authOptions is the set of available options for Provider.AuthURL
type authOptions struct {
	withScopes       []string
	withRedirectURL  string
	withPrompt       string
	withUILocales    []language.Tag
	withLoginHint    string
	withDomainHint   string
	withResponseMode string
	withExtraParams  map[string]string
}

// authDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func authDefaults() authOptions {
	return authOptions{}
}

// getAuthOpts gets the defaults and applies the opt overrides passed in.
func getAuthOpts(opt ...Option) authOptions {
	opts := authDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// providerOptions is the set of available options for NewProvider
type providerOptions struct {
	withLogger  hclog.Logger
	withToken   Token
	withIdToken IdToken
}

// providerDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func providerDefaults() providerOptions {
	return providerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

// getProviderOpts gets the defaults and applies the opt overrides passed in.
func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the provider
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithToken provides an optional token for a new provider.  Its id_token is
// kept for logout as if the token had just been exchanged.
func WithToken(t Token) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && !isNilToken(t) {
			o.withToken = t
		}
	}
}

// WithIdToken provides an optional id_token for a new provider, kept for
// logout.
func WithIdToken(t IdToken) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withIdToken = t
		}
	}
}
