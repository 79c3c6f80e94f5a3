// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"net/http"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
)

type app struct {
	config     *adfs.Config
	logger     hclog.Logger
	sessions   *sessionCache
	attemptExp time.Duration
	// logoutRedirect is where ADFS sends the browser after logout
	logoutRedirect string
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", a.index)
	r.Get("/login", a.login)
	r.Get("/callback", a.callback)
	r.Get("/success", a.success)
	r.Get("/logout", a.logout)
	return r
}

func (a *app) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(`<a href="/login">login with ADFS</a>`))
}

// newProvider creates the provider for one user's session.
func (a *app) newProvider() (*adfs.Provider, error) {
	return adfs.NewProvider(a.config, adfs.WithLogger(a.logger))
}
