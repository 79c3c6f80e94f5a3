// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import "net/url"

// LogoutURL builds the URL which ends the user's ADFS session.
//
// A redirect URL (WithRedirectURL) is sent as post_logout_redirect_uri.
// Only when a redirect URL is sent is the kept id_token added as
// id_token_hint; without a redirect URL no hint is sent even if an id_token
// is kept.
//
// Supported options: WithRedirectURL, WithState, WithExtraParams
func (p *Provider) LogoutURL(opt ...Option) string {
	const op = "Provider.LogoutURL"
	opts := getLogoutOpts(opt...)

	params := url.Values{}
	for k, v := range opts.withExtraParams {
		params.Set(k, v)
	}
	params.Set("client_id", p.config.ClientID)
	if opts.withState != "" {
		params.Set("state", opts.withState)
	}
	if p.config.Resource != "" {
		params.Set("resource", p.config.Resource)
	}
	if opts.withRedirectURL != "" {
		params.Set("redirect_uri", opts.withRedirectURL)
	}

	var hinted bool
	if params.Has("redirect_uri") {
		params.Set("post_logout_redirect_uri", params.Get("redirect_uri"))
		params.Del("redirect_uri")
		if idToken := p.IdToken(); idToken != "" {
			params.Set("id_token_hint", string(idToken))
			hinted = true
		}
	}
	p.logger.Debug("built logout url", "op", op, "id_token_hint", hinted)
	return appendQuery(p.LogoutEndpoint(), params.Encode())
}

// logoutOptions is the set of available options for Provider.LogoutURL
type logoutOptions struct {
	withRedirectURL string
	withState       string
	withExtraParams map[string]string
}

// logoutDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func logoutDefaults() logoutOptions {
	return logoutOptions{}
}

// getLogoutOpts gets the defaults and applies the opt overrides passed in.
func getLogoutOpts(opt ...Option) logoutOptions {
	opts := logoutDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
