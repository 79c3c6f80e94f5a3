// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
)

type authURLFlags struct {
	pkce       bool
	expireIn   time.Duration
	prompt     string
	loginHint  string
	domainHint string
	uiLocales  []string
}

// authOptions converts the flags shared by auth-url and login to
// AuthURL options.
func (f *authURLFlags) authOptions() ([]adfs.Option, error) {
	const op = "authURLFlags.authOptions"
	var opts []adfs.Option
	if f.prompt != "" {
		opts = append(opts, adfs.WithPrompt(f.prompt))
	}
	if f.loginHint != "" {
		opts = append(opts, adfs.WithLoginHint(f.loginHint))
	}
	if f.domainHint != "" {
		opts = append(opts, adfs.WithDomainHint(f.domainHint))
	}
	if len(f.uiLocales) > 0 {
		tags := make([]language.Tag, 0, len(f.uiLocales))
		for _, l := range f.uiLocales {
			tag, err := language.Parse(l)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid ui locale %q: %w", op, l, err)
			}
			tags = append(tags, tag)
		}
		opts = append(opts, adfs.WithUILocales(tags...))
	}
	return opts, nil
}

func (f *authURLFlags) newState() (*adfs.St, error) {
	var opts []adfs.Option
	if f.pkce {
		opts = append(opts, adfs.WithPKCE(oauth2.GenerateVerifier()))
	}
	return adfs.NewState(f.expireIn, opts...)
}

func (f *authURLFlags) register(cmd *cobra.Command, pkceDefault bool) {
	cmd.Flags().BoolVar(&f.pkce, "pkce", pkceDefault, "use PKCE (S256)")
	cmd.Flags().DurationVar(&f.expireIn, "expire", 2*time.Minute, "how long the login attempt is valid")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "prompt parameter, e.g. login")
	cmd.Flags().StringVar(&f.loginHint, "login-hint", "", "login_hint parameter")
	cmd.Flags().StringVar(&f.domainHint, "domain-hint", "", "domain_hint parameter")
	cmd.Flags().StringSliceVar(&f.uiLocales, "ui-locale", nil, "ui_locales entry (BCP 47), repeatable")
}

type authURLOutput struct {
	URL          string `json:"url"`
	State        string `json:"state"`
	Nonce        string `json:"nonce"`
	CodeVerifier string `json:"code_verifier,omitempty"`
}

func newAuthURLCmd(c *cli) *cobra.Command {
	f := &authURLFlags{}
	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print an authorization URL and the state it was built with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.newProvider()
			if err != nil {
				return err
			}
			s, err := f.newState()
			if err != nil {
				return err
			}
			opts, err := f.authOptions()
			if err != nil {
				return err
			}
			u, err := p.AuthURL(cmd.Context(), s, opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), authURLOutput{
				URL:          u,
				State:        s.Id(),
				Nonce:        s.Nonce(),
				CodeVerifier: s.PKCEVerifier(),
			})
		},
	}
	f.register(cmd, false)
	return cmd
}
