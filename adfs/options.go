// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"time"

	"golang.org/x/text/language"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithNow provides an optional func for determining what the current time it
// is, for: Tk, St
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *tokenOptions:
			v.withNowFunc = now
		case *stOptions:
			v.withNowFunc = now
		}
	}
}

// WithScopes provides an optional list of scopes for: Config (the caller's
// default scopes) and AuthURL (overrides the provider's default scopes for a
// single request).
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withScopes = scopes
		case *authOptions:
			v.withScopes = scopes
		case *exchangeOptions:
			v.withScopes = scopes
		}
	}
}

// WithRedirectURL provides an optional redirect URL for: AuthURL and Exchange
// (overrides the configured redirect_uri) and LogoutURL (where it is sent as
// the post_logout_redirect_uri).
func WithRedirectURL(redirectURL string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authOptions:
			v.withRedirectURL = redirectURL
		case *logoutOptions:
			v.withRedirectURL = redirectURL
		case *exchangeOptions:
			v.withRedirectURL = redirectURL
		}
	}
}

// WithState provides an optional state value for LogoutURL.
func WithState(state string) Option {
	return func(o interface{}) {
		if v, ok := o.(*logoutOptions); ok {
			v.withState = state
		}
	}
}

// WithExtraParams provides optional additional query/form parameters for:
// AuthURL, LogoutURL and Exchange.  Extra params never replace the
// parameters the provider sets itself.
func WithExtraParams(params map[string]string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authOptions:
			v.withExtraParams = params
		case *logoutOptions:
			v.withExtraParams = params
		case *exchangeOptions:
			v.withExtraParams = params
		}
	}
}

// WithPKCE provides an optional PKCE code verifier for: Exchange (sent as the
// code_verifier) and NewState (the state carries the verifier and AuthURL
// sends its S256 challenge).
func WithPKCE(verifier string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *exchangeOptions:
			v.withVerifier = verifier
		case *stOptions:
			v.withVerifier = verifier
		}
	}
}

// WithPrompt provides an optional prompt value for AuthURL (for example:
// "login" to force ADFS to ask for credentials again).
func WithPrompt(prompt string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authOptions); ok {
			v.withPrompt = prompt
		}
	}
}

// WithUILocales provides optional preferred languages for the ADFS sign-in
// pages, sent with AuthURL as ui_locales.
func WithUILocales(locales ...language.Tag) Option {
	return func(o interface{}) {
		if v, ok := o.(*authOptions); ok {
			v.withUILocales = locales
		}
	}
}

// WithLoginHint provides an optional login_hint for AuthURL.
func WithLoginHint(hint string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authOptions); ok {
			v.withLoginHint = hint
		}
	}
}

// WithDomainHint provides an optional domain_hint for AuthURL, which lets ADFS
// skip home realm discovery.
func WithDomainHint(hint string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authOptions); ok {
			v.withDomainHint = hint
		}
	}
}

// WithResponseMode provides an optional response_mode for AuthURL.  With
// "form_post" ADFS returns the code and state to the redirect URL in an auto
// submitted form instead of the query.
func WithResponseMode(mode string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authOptions); ok {
			v.withResponseMode = mode
		}
	}
}
