// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/b3it/adfs-cap/adfs"
)

type respToken struct {
	IdToken      string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	UPN          interface{}
	Claims       map[string]interface{}
	LogoutURL    string
}

func (a *app) success(w http.ResponseWriter, r *http.Request) {
	const op = "app.success"
	stateID := r.FormValue("state")
	s, err := a.sessions.session(stateID)
	if err != nil {
		a.logger.Error("error reading session", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.t == nil {
		err := fmt.Errorf("%s: session %s has no token", op, stateID)
		a.logger.Error("not logged in", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	owner, err := s.p.ResourceOwner(s.t)
	if err != nil {
		a.logger.Error("unable to get resource owner", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := printableToken(s.t)
	resp.UPN = owner.ID()
	resp.Claims = owner.ToMap()
	resp.LogoutURL = "/logout?session=" + stateID
	data, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		a.logger.Error("unable to marshal response", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		a.logger.Error("unable to write response", "op", op, "error", err)
	}
}

// printableToken is needed because the adfs.Token redacts the IdToken,
// AccessToken and RefreshToken
func printableToken(t adfs.Token) respToken {
	return respToken{
		IdToken:      string(t.IdToken()),
		AccessToken:  string(t.AccessToken()),
		RefreshToken: string(t.RefreshToken()),
		Expiry:       t.Expiry(),
	}
}
