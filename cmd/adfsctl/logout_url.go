// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/spf13/cobra"
)

func newLogoutURLCmd(c *cli) *cobra.Command {
	var (
		redirectURL string
		idToken     string
		state       string
	)
	cmd := &cobra.Command{
		Use:   "logout-url",
		Short: "Print the ADFS logout URL",
		Long: "Print the ADFS logout URL.  The id token is sent as id_token_hint " +
			"only together with a post logout redirect URL.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.newProvider(adfs.WithIdToken(adfs.IdToken(idToken)))
			if err != nil {
				return err
			}
			var opts []adfs.Option
			if redirectURL != "" {
				opts = append(opts, adfs.WithRedirectURL(redirectURL))
			}
			if state != "" {
				opts = append(opts, adfs.WithState(state))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), p.LogoutURL(opts...))
			return err
		},
	}
	cmd.Flags().StringVar(&redirectURL, "post-logout-redirect-url", "", "where ADFS sends the browser after logout")
	cmd.Flags().StringVar(&idToken, "id-token", "", "id_token of the session to end")
	cmd.Flags().StringVar(&state, "state", "", "state returned to the post logout redirect URL")
	return cmd
}
