// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newClaimsCmd(c *cli) *cobra.Command {
	var (
		accessToken string
		idToken     string
	)
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Print the claims of an access_token and id_token, without verifying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "claims"
			if accessToken == "" && idToken == "" {
				return fmt.Errorf("%s: %w", op, errors.New("--access-token or --id-token is required"))
			}
			t := &oauth2.Token{AccessToken: accessToken}
			if idToken != "" {
				t = t.WithExtra(map[string]interface{}{"id_token": idToken})
			}
			tk, err := adfs.NewToken(t)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			claims := adfs.ExtractClaims(tk)
			c.logger.Debug("extracted claims", "op", op, "count", len(claims))
			return printJSON(cmd.OutOrStdout(), claims)
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access_token")
	cmd.Flags().StringVar(&idToken, "id-token", "", "id_token, its claims are overridden by the access_token's")
	return cmd
}
