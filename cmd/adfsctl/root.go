// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// BuildVersion is set at build time.
var BuildVersion = "dev"

// cli is shared by the commands: the global flags and what's derived from
// them once the command line is parsed.
type cli struct {
	flags  globalFlags
	env    envConfig
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "adfsctl",
		Short:         "ADFS OAuth2 client",
		Long:          "adfsctl builds ADFS authorize and logout URLs, decodes token claims and logs in with ADFS.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}
	c.flags.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of adfsctl",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("%s\n", BuildVersion)
			},
		},
		newAuthURLCmd(c),
		newLogoutURLCmd(c),
		newClaimsCmd(c),
		newLoginCmd(c),
	)
	return rootCmd
}

// load reads the environment, applies the flags and creates the logger.
func (c *cli) load(cmd *cobra.Command) error {
	env, err := loadEnvConfig(c.flags.envFile)
	if err != nil {
		return err
	}
	c.env = c.flags.merge(cmd.Flags(), env)
	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "adfsctl",
		Level:  hclog.LevelFromString(c.env.LogLevel),
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// newProvider creates a provider from the merged settings.
func (c *cli) newProvider(opt ...adfs.Option) (*adfs.Provider, error) {
	const op = "cli.newProvider"
	pc, err := c.env.providerConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opt = append([]adfs.Option{adfs.WithLogger(c.logger)}, opt...)
	p, err := adfs.NewProvider(pc, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
