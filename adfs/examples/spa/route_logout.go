// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"net/http"

	"github.com/b3it/adfs-cap/adfs/callback"
)

// logout ends the session and redirects to ADFS, which ends the user's ADFS
// session and returns the browser to logoutRedirect.
func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	const op = "app.logout"
	id := r.FormValue("session")
	s, err := a.sessions.session(id)
	if err != nil {
		a.logger.Warn("logout of unknown session", "op", op, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	a.sessions.Delete(id)

	h, err := callback.Logout(s.p, a.logoutRedirect)
	if err != nil {
		a.logger.Error("unable to create logout handler", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h(w, r)
}
