// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"fmt"
	"net/http"

	"github.com/b3it/adfs-cap/adfs"
)

// Logout creates a handler which redirects the browser to the ADFS logout
// endpoint.  A non-empty redirectURL is sent as the post logout redirect, and
// with it the provider's kept id_token as id_token_hint.  A "state" request
// parameter is passed along so ADFS returns it to the redirectURL.
//
// Supported options: the options of adfs.Provider.LogoutURL
func Logout(p *adfs.Provider, redirectURL string, opt ...adfs.Option) (http.HandlerFunc, error) {
	const op = "callback.Logout"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, adfs.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		opts := make([]adfs.Option, 0, len(opt)+2)
		opts = append(opts, opt...)
		if redirectURL != "" {
			opts = append(opts, adfs.WithRedirectURL(redirectURL))
		}
		if state := req.FormValue("state"); state != "" {
			opts = append(opts, adfs.WithState(state))
		}
		http.Redirect(w, req, p.LogoutURL(opts...), http.StatusFound)
	}, nil
}
