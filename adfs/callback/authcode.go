// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"fmt"
	"net/http"

	"github.com/b3it/adfs-cap/adfs"
)

// AuthCode creates an authorization code callback handler which uses a
// StateReader to read existing adfs.State(s) via the request's "state"
// parameter as a key for the lookup.  The code is exchanged with the state's
// PKCE verifier, when it has one.
//
// The SuccessResponseFunc is used to create a response when callback is
// successful. The ErrorResponseFunc is to create a response when the callback
// fails.
func AuthCode(ctx context.Context, p *adfs.Provider, sr StateReader, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.AuthCode"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, adfs.ErrInvalidParameter)
	case sr == nil:
		return nil, fmt.Errorf("%s: state reader is nil: %w", op, adfs.ErrInvalidParameter)
	case sFn == nil:
		return nil, fmt.Errorf("%s: success response func is nil: %w", op, adfs.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, adfs.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found
		reqState := req.FormValue("state")

		if err := req.FormValue("error"); err != "" {
			reqError := &AuthenErrorResponse{
				Error:       err,
				Description: req.FormValue("error_description"),
				Uri:         req.FormValue("error_uri"),
			}
			eFn(reqState, reqError, nil, w, req)
			return
		}

		reqCode := req.FormValue("code")

		state, err := sr.Read(ctx, reqState)
		if err != nil {
			eFn(reqState, nil, fmt.Errorf("%s: unable to read auth code state: %w", op, err), w, req)
			return
		}
		if state == nil {
			// could have expired or it could be invalid... no way to known for sure
			eFn(reqState, nil, fmt.Errorf("%s: auth code state not found: %w", op, adfs.ErrNotFound), w, req)
			return
		}
		if state.IsExpired() {
			eFn(reqState, nil, fmt.Errorf("%s: authentication state is expired: %w", op, adfs.ErrExpiredState), w, req)
			return
		}
		if reqState != state.Id() {
			// the reader didn't return the correct state for the key given
			eFn(reqState, nil, fmt.Errorf("%s: authen state and response state are not equal: %w", op, adfs.ErrResponseStateInvalid), w, req)
			return
		}

		var exchangeOpts []adfs.Option
		if v := state.PKCEVerifier(); v != "" {
			exchangeOpts = append(exchangeOpts, adfs.WithPKCE(v))
		}
		responseToken, err := p.Exchange(ctx, adfs.AuthorizationCode(reqCode), exchangeOpts...)
		if err != nil {
			eFn(reqState, nil, fmt.Errorf("%s: unable to exchange authorization code: %w", op, err), w, req)
			return
		}
		sFn(reqState, responseToken, w, req)
	}, nil
}
