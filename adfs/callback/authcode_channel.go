// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/b3it/adfs-cap/adfs"
)

// LoginResp is written to the channel returned by AuthCodeWithChannel.
type LoginResp struct {
	Token adfs.Token // Token is populated when the callback successfully exchanges the auth code.
	Error error      // Error is populated when the callback fails.
}

// AuthCodeWithChannel creates an authorization code callback handler for a
// single login attempt and reports its outcome as a LoginResp on the
// returned channel.  It's most appropriate for a process which starts a
// localhost listener for the redirect, like a CLI.
//
// Only the first callback's outcome is written, then the channel is closed.
// Later requests are still answered by sFn or eFn.
//
// The SuccessResponseFunc is used to create a response when callback is
// successful. The ErrorResponseFunc is to create a response when the callback
// fails.
func AuthCodeWithChannel(ctx context.Context, p *adfs.Provider, s adfs.State, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (<-chan LoginResp, http.HandlerFunc, error) {
	const op = "callback.AuthCodeWithChannel"
	switch {
	case s == nil:
		return nil, nil, fmt.Errorf("%s: state is nil: %w", op, adfs.ErrInvalidParameter)
	case sFn == nil:
		return nil, nil, fmt.Errorf("%s: success response func is nil: %w", op, adfs.ErrInvalidParameter)
	case eFn == nil:
		return nil, nil, fmt.Errorf("%s: error response func is nil: %w", op, adfs.ErrInvalidParameter)
	}

	doneCh := make(chan LoginResp, 1)
	var once sync.Once
	done := func(r LoginResp) {
		once.Do(func() {
			doneCh <- r
			close(doneCh)
		})
	}

	h, err := AuthCode(ctx, p, &SingleStateReader{State: s},
		func(state string, t adfs.Token, w http.ResponseWriter, req *http.Request) {
			sFn(state, t, w, req)
			done(LoginResp{Token: t})
		},
		func(state string, r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
			eFn(state, r, e, w, req)
			if e == nil {
				e = fmt.Errorf("%s: %w", op, adfs.ErrLoginFailed)
				if r != nil {
					e = fmt.Errorf("%s: error from adfs: %s: %s: %w", op, r.Error, r.Description, adfs.ErrLoginFailed)
				}
			}
			done(LoginResp{Error: e})
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return doneCh, h, nil
}
