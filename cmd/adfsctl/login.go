// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/b3it/adfs-cap/adfs/callback"
	"github.com/spf13/cobra"
)

// grant types supported by the login command
const (
	grantAuthorizationCode = "authorization_code"
	grantPassword          = "password"
	grantClientCredentials = "client_credentials"
	grantRefreshToken      = "refresh_token"
)

type loginFlags struct {
	authURLFlags
	grant        string
	username     string
	password     string
	refreshToken string
}

type loginOutput struct {
	AccessToken  string                 `json:"access_token"`
	IdToken      string                 `json:"id_token,omitempty"`
	RefreshToken string                 `json:"refresh_token,omitempty"`
	Expiry       time.Time              `json:"expiry"`
	UPN          interface{}            `json:"upn,omitempty"`
	Claims       map[string]interface{} `json:"claims"`
	LogoutURL    string                 `json:"logout_url"`
}

func newLoginCmd(c *cli) *cobra.Command {
	f := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with ADFS and print the tokens and the resource owner's claims",
		Long: "Log in with ADFS.  The authorization_code grant listens on the redirect URL " +
			"for the callback; open the printed URL in a browser to complete the login.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "login"
			p, err := c.newProvider()
			if err != nil {
				return err
			}
			var t adfs.Token
			switch f.grant {
			case grantAuthorizationCode:
				t, err = c.authCodeLogin(cmd, p, f)
			case grantPassword:
				t, err = p.Exchange(cmd.Context(), adfs.Password(f.username, f.password))
			case grantClientCredentials:
				t, err = p.Exchange(cmd.Context(), adfs.ClientCredentials(), adfs.WithScopes(c.env.Scopes...))
			case grantRefreshToken:
				t, err = p.Exchange(cmd.Context(), adfs.RefreshTokenGrant(adfs.RefreshToken(f.refreshToken)))
			default:
				return fmt.Errorf("%s: grant %q: %w", op, f.grant, adfs.ErrUnsupportedGrant)
			}
			if err != nil {
				return err
			}
			owner, err := p.ResourceOwner(t)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), loginOutput{
				AccessToken:  string(t.AccessToken()),
				IdToken:      string(t.IdToken()),
				RefreshToken: string(t.RefreshToken()),
				Expiry:       t.Expiry(),
				UPN:          owner.ID(),
				Claims:       owner.ToMap(),
				LogoutURL:    p.LogoutURL(adfs.WithRedirectURL(c.env.RedirectURL)),
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVar(&f.grant, "grant", grantAuthorizationCode, "grant type: authorization_code, password, client_credentials or refresh_token")
	cmd.Flags().StringVar(&f.username, "username", "", "username for the password grant")
	cmd.Flags().StringVar(&f.password, "password", "", "password for the password grant")
	cmd.Flags().StringVar(&f.refreshToken, "refresh-token", "", "refresh_token for the refresh_token grant")
	return cmd
}

// authCodeLogin listens on the redirect URL, prints the authorization URL
// and waits for the callback, an interrupt or the state to expire.
func (c *cli) authCodeLogin(cmd *cobra.Command, p *adfs.Provider, f *loginFlags) (adfs.Token, error) {
	const op = "cli.authCodeLogin"
	ctx, cancel := context.WithTimeout(cmd.Context(), f.expireIn)
	defer cancel()

	redirect, err := url.Parse(c.env.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid redirect URL: %w", op, err)
	}
	s, err := f.newState()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	authOpts, err := f.authOptions()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	authURL, err := p.AuthURL(ctx, s, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doneCh, handler, err := callback.AuthCodeWithChannel(ctx, p, s,
		func(state string, t adfs.Token, w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(successHTML))
		},
		func(state string, r *callback.AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
			switch {
			case e != nil:
				http.Error(w, e.Error(), http.StatusInternalServerError)
			case r != nil:
				http.Error(w, r.Error+": "+r.Description, http.StatusUnauthorized)
			default:
				http.Error(w, "unknown error", http.StatusInternalServerError)
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	srvCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvCh <- err
		}
	}()
	defer func() {
		// let the callback's response finish
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	cmd.PrintErrf("Complete the login via ADFS by opening:\n\n    %s\n\n", authURL)

	select {
	case err := <-srvCh:
		return nil, fmt.Errorf("%s: server closed with error: %w", op, err)
	case resp := <-doneCh:
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %w", op, resp.Error)
		}
		return resp.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: timed out waiting for response from adfs: %w", op, ctx.Err())
	}
}

const successHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>ADFS Authentication Succeeded</title>
</head>
<body>
    <p>Authentication succeeded, you can close this window and return to the terminal.</p>
</body>
</html>
`
