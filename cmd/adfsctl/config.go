// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/b3it/adfs-cap/adfs/clientassertion"
	"github.com/b3it/adfs-cap/internal/strutils"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// envConfig holds the settings read from the environment.  Flags override
// them.
type envConfig struct {
	AuthServerURL  string        `env:"ADFS_AUTH_SERVER_URL"`
	ClientID       string        `env:"ADFS_CLIENT_ID"`
	ClientSecret   string        `env:"ADFS_CLIENT_SECRET"`
	AssertionKey   string        `env:"ADFS_CLIENT_ASSERTION_KEY_FILE"`
	AssertionKeyID string        `env:"ADFS_CLIENT_ASSERTION_KEY_ID"`
	RedirectURL    string        `env:"ADFS_REDIRECT_URL,default=http://localhost:8080/callback"`
	Resource       string        `env:"ADFS_RESOURCE"`
	Scopes         []string      `env:"ADFS_SCOPES"`
	ProviderCAFile string        `env:"ADFS_PROVIDER_CA_FILE"`
	Timeout        time.Duration `env:"ADFS_TIMEOUT,default=30s"`
	LogLevel       string        `env:"ADFS_LOG_LEVEL,default=warn"`
}

// loadEnvConfig loads the optional dotenv file into the environment and
// decodes the environment.  An absent dotenv file is not an error.
func loadEnvConfig(dotEnvFile string) (envConfig, error) {
	const op = "loadEnvConfig"
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return envConfig{}, fmt.Errorf("%s: unable to load %s: %w", op, dotEnvFile, err)
	}
	var cfg envConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return envConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// globalFlags are the root command's persistent flags.
type globalFlags struct {
	envFile        string
	authServerURL  string
	clientID       string
	clientSecret   string
	assertionKey   string
	assertionKeyID string
	redirectURL    string
	resource       string
	scopes         []string
	providerCAFile string
	timeout        time.Duration
	logLevel       string
}

func (g *globalFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&g.envFile, "env-file", ".env", "dotenv file to load before reading ADFS_* environment variables")
	flags.StringVar(&g.authServerURL, "auth-server-url", "", "ADFS base URL, e.g. https://adfs.example.com/adfs (ADFS_AUTH_SERVER_URL)")
	flags.StringVar(&g.clientID, "client-id", "", "client id (ADFS_CLIENT_ID)")
	flags.StringVar(&g.clientSecret, "client-secret", "", "client secret (ADFS_CLIENT_SECRET)")
	flags.StringVar(&g.assertionKey, "client-assertion-key-file", "", "PEM RSA private key which signs a client assertion instead of sending the client secret (ADFS_CLIENT_ASSERTION_KEY_FILE)")
	flags.StringVar(&g.assertionKeyID, "client-assertion-key-id", "", "kid header of the client assertion, e.g. the certificate thumbprint (ADFS_CLIENT_ASSERTION_KEY_ID)")
	flags.StringVar(&g.redirectURL, "redirect-url", "", "redirect URL registered with ADFS (ADFS_REDIRECT_URL)")
	flags.StringVar(&g.resource, "resource", "", "resource identifier sent to ADFS (ADFS_RESOURCE)")
	flags.StringSliceVar(&g.scopes, "scope", nil, "scope to request in addition to openid, repeatable (ADFS_SCOPES, separated by \";\")")
	flags.StringVar(&g.providerCAFile, "provider-ca-file", "", "PEM file of the CA that signed ADFS's certificate (ADFS_PROVIDER_CA_FILE)")
	flags.DurationVar(&g.timeout, "timeout", 0, "http request timeout (ADFS_TIMEOUT)")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn or error (ADFS_LOG_LEVEL)")
}

// merge returns the env config overridden by the flags which were set.
func (g *globalFlags) merge(flags *pflag.FlagSet, env envConfig) envConfig {
	if flags.Changed("auth-server-url") {
		env.AuthServerURL = g.authServerURL
	}
	if flags.Changed("client-id") {
		env.ClientID = g.clientID
	}
	if flags.Changed("client-secret") {
		env.ClientSecret = g.clientSecret
	}
	if flags.Changed("client-assertion-key-file") {
		env.AssertionKey = g.assertionKey
	}
	if flags.Changed("client-assertion-key-id") {
		env.AssertionKeyID = g.assertionKeyID
	}
	if flags.Changed("redirect-url") {
		env.RedirectURL = g.redirectURL
	}
	if flags.Changed("resource") {
		env.Resource = g.resource
	}
	if flags.Changed("scope") {
		env.Scopes = g.scopes
	}
	if flags.Changed("provider-ca-file") {
		env.ProviderCAFile = g.providerCAFile
	}
	if flags.Changed("timeout") {
		env.Timeout = g.timeout
	}
	if flags.Changed("log-level") {
		env.LogLevel = g.logLevel
	}
	env.Scopes = strutils.RemoveDuplicatesStable(env.Scopes, false)
	return env
}

// providerConfig creates the adfs.Config for the merged settings.
func (e envConfig) providerConfig() (*adfs.Config, error) {
	const op = "envConfig.providerConfig"
	opts := []adfs.Option{
		adfs.WithResource(e.Resource),
		adfs.WithScopes(e.Scopes...),
		adfs.WithTimeout(e.Timeout),
	}
	if e.ProviderCAFile != "" {
		pem, err := os.ReadFile(e.ProviderCAFile)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to read provider CA: %w", op, err)
		}
		opts = append(opts, adfs.WithProviderCA(string(pem)))
	}
	c, err := adfs.NewConfig(e.AuthServerURL, e.ClientID, adfs.ClientSecret(e.ClientSecret), e.RedirectURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if e.AssertionKey == "" {
		return c, nil
	}
	key, err := readRSAKey(e.AssertionKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	assertionOpts := []clientassertion.Option{clientassertion.WithRSAKey(key, clientassertion.RS256)}
	if e.AssertionKeyID != "" {
		assertionOpts = append(assertionOpts, clientassertion.WithKeyID(e.AssertionKeyID))
	}
	j, err := clientassertion.NewJWT(c.ClientID, []string{c.TokenEndpoint()}, assertionOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.ClientAssertionJWT = j
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// readRSAKey reads a PKCS#1 or PKCS#8 PEM encoded RSA private key.
func readRSAKey(file string) (*rsa.PrivateKey, error) {
	const op = "readRSAKey"
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read client assertion key: %w", op, err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("%s: %s is not PEM encoded", op, file)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to parse client assertion key: %w", op, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: client assertion key is %T, not RSA", op, parsed)
	}
	return key, nil
}
