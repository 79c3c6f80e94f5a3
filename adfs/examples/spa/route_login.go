// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"net/http"

	"github.com/b3it/adfs-cap/adfs"
	"golang.org/x/oauth2"
)

func (a *app) login(w http.ResponseWriter, r *http.Request) {
	const op = "app.login"
	p, err := a.newProvider()
	if err != nil {
		a.logger.Error("unable to create provider", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s, err := adfs.NewState(a.attemptExp, adfs.WithPKCE(oauth2.GenerateVerifier()))
	if err != nil {
		a.logger.Error("unable to create state", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.sessions.Add(s, p)

	authURL, err := p.AuthURL(r.Context(), s)
	if err != nil {
		a.logger.Error("error getting auth url", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}
