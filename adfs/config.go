// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	sdkHttp "github.com/b3it/adfs-cap/sdk/http"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"
)

// ClientSecret is an oauth client secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret.
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret.
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret.
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// ResourceOwnerIdClaim is the claim which uniquely identifies the resource
// owner in tokens issued by ADFS.
const ResourceOwnerIdClaim = "upn"

// Config represents the configuration for an ADFS relying party.
type Config struct {
	// AuthServerURL is the ADFS base URL (for example:
	// https://adfs.example.com/adfs).  Surrounding whitespace and slashes are
	// ignored.  Required.
	AuthServerURL string

	// ClientID is the relying party's client identifier.  Required.
	ClientID string

	// ClientSecret is the relying party's secret.  Public clients leave it
	// empty.
	ClientSecret ClientSecret

	// ClientAssertionJWT optionally authenticates the relying party with a
	// signed JWT (private_key_jwt) instead of ClientSecret.  It can't be
	// used together with ClientSecret.
	ClientAssertionJWT ClientAssertionJWT `json:"-"`

	// RedirectURL is the default redirect_uri sent with authorization and
	// token requests.
	RedirectURL string

	// Resource is an optional relying party identifier which is sent as the
	// "resource" parameter.
	Resource string

	// Scopes are the caller's default scopes.  "openid" is always appended
	// to them (see Provider.DefaultScopes).
	Scopes []string

	// ProviderCA is an optional PEM encoded CA cert to use when sending
	// requests to ADFS.
	ProviderCA string

	// Timeout is an optional timeout for requests to ADFS.
	Timeout time.Duration

	// ProxyURL is an optional proxy for requests to ADFS.
	ProxyURL string

	// InsecureSkipVerify disables TLS verification of ADFS's certificate.
	InsecureSkipVerify bool
}

// NewConfig composes a new config for an ADFS provider.
//
// Supported options:
//
//	WithResource
//	WithScopes
//	WithProviderCA
//	WithTimeout
//	WithProxyURL
//	WithInsecureSkipVerify
//	WithClientAssertionJWT
func NewConfig(authServerURL, clientID string, clientSecret ClientSecret, redirectURL string, opt ...Option) (*Config, error) {
	const op = "NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		AuthServerURL:      authServerURL,
		ClientID:           clientID,
		ClientSecret:       clientSecret,
		RedirectURL:        redirectURL,
		Resource:           opts.withResource,
		Scopes:             opts.withScopes,
		ProviderCA:         opts.withProviderCA,
		Timeout:            opts.withTimeout,
		ProxyURL:           opts.withProxyURL,
		InsecureSkipVerify: opts.withInsecureSkipVerify,
		ClientAssertionJWT: opts.withClientAssertionJWT,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid provider config: %w", op, err)
	}
	return c, nil
}

// Validate the provider configuration.  Every problem found is reported,
// not just the first one.  It doesn't verify the AuthServerURL is reachable.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	switch base := trimBaseURL(c.AuthServerURL); {
	case base == "":
		result = multierror.Append(result, fmt.Errorf("auth server URL is empty: %w", ErrInvalidParameter))
	default:
		if _, err := url.Parse(base); err != nil {
			result = multierror.Append(result, fmt.Errorf("auth server URL %q is invalid: %w", base, ErrInvalidAuthServerURL))
		}
	}
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrInvalidParameter))
	}
	if c.ClientSecret != "" && c.ClientAssertionJWT != nil {
		result = multierror.Append(result, fmt.Errorf("client secret and client assertion are mutually exclusive: %w", ErrInvalidParameter))
	}
	if c.RedirectURL != "" {
		if _, err := url.Parse(c.RedirectURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("redirect URL %q is invalid: %w", c.RedirectURL, ErrInvalidParameter))
		}
	}
	if c.ProxyURL != "" {
		if _, err := url.Parse(c.ProxyURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("proxy URL %q is invalid: %w", c.ProxyURL, ErrInvalidParameter))
		}
	}
	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeout %s is negative: %w", c.Timeout, ErrInvalidParameter))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TokenEndpoint returns the token endpoint of the configured auth server.
// It is the audience ADFS expects in a client assertion.
func (c *Config) TokenEndpoint() string {
	return trimBaseURL(c.AuthServerURL) + tokenPath
}

// HttpClient is a helper function that creates a new http client for the
// provider configured.  The transport options (CA, proxy, TLS verification
// and timeout) are passed through without interpretation.
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkHttp.NewClient(
		sdkHttp.WithCACert(c.ProviderCA),
		sdkHttp.WithTimeout(c.Timeout),
		sdkHttp.WithProxyURL(c.ProxyURL),
		sdkHttp.WithInsecureSkipVerify(c.InsecureSkipVerify),
	)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// HttpClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the github.com/coreos/go-oidc and golang.org/x/oauth2 packages, so the
// returned context works for those packages as well.
func HttpClientContext(ctx context.Context, client *http.Client) context.Context {
	// simple to implement as a wrapper for the coreos package
	return oidc.ClientContext(ctx, client)
}

// configOptions is the set of available options for NewConfig
type configOptions struct {
	withResource           string
	withScopes             []string
	withProviderCA         string
	withTimeout            time.Duration
	withProxyURL           string
	withInsecureSkipVerify bool
	withClientAssertionJWT ClientAssertionJWT
}

// configDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func configDefaults() configOptions {
	return configOptions{}
}

// getConfigOpts gets the defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithResource provides an optional relying party identifier for the
// provider's config
func WithResource(resource string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withResource = resource
		}
	}
}

// WithProviderCA provides an optional CA cert for the provider's config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithTimeout provides an optional request timeout for the provider's config
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withTimeout = d
		}
	}
}

// WithProxyURL provides an optional proxy for the provider's config
func WithProxyURL(proxy string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProxyURL = proxy
		}
	}
}

// WithInsecureSkipVerify disables TLS verification for the provider's config
func WithInsecureSkipVerify() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withInsecureSkipVerify = true
		}
	}
}

// WithClientAssertionJWT provides an optional client assertion for the
// provider's config.  See the clientassertion package.
func WithClientAssertionJWT(j ClientAssertionJWT) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withClientAssertionJWT = j
		}
	}
}
