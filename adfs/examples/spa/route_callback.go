// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/b3it/adfs-cap/adfs/callback"
)

func (a *app) callback(w http.ResponseWriter, r *http.Request) {
	const op = "app.callback"
	stateID := r.FormValue("state")
	s, err := a.sessions.session(stateID)
	if err != nil {
		a.failedFn()(stateID, nil, err, w, r)
		return
	}
	h, err := callback.AuthCode(r.Context(), s.p, a.sessions, a.successFn(), a.failedFn())
	if err != nil {
		a.logger.Error("unable to create callback handler", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h(w, r)
}

func (a *app) successFn() callback.SuccessResponseFunc {
	const op = "app.successFn"
	return func(state string, t adfs.Token, w http.ResponseWriter, req *http.Request) {
		if err := a.sessions.SetToken(state, t); err != nil {
			a.logger.Error("error updating session during successful response", "op", op, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// Redirect to logged in page
		http.Redirect(w, req, fmt.Sprintf("/success?state=%s", state), http.StatusSeeOther)
	}
}

func (a *app) failedFn() callback.ErrorResponseFunc {
	const op = "app.failedFn"
	return func(state string, r *callback.AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
		switch {
		case e != nil:
			a.logger.Error("callback error", "op", op, "state", state, "error", e)
			http.Error(w, e.Error(), http.StatusInternalServerError)
		case r != nil:
			a.logger.Warn("callback error from adfs", "op", op, "state", state, "error", r.Error, "description", r.Description)
			http.Error(w, fmt.Sprintf("%s: callback error from adfs: %s %s", op, r.Error, r.Description), http.StatusUnauthorized)
		default:
			http.Error(w, fmt.Sprintf("%s: unknown error from callback", op), http.StatusInternalServerError)
		}
	}
}
