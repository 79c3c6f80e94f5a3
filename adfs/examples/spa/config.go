// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// envConfig is read from the environment, after loading an optional .env
// file.
type envConfig struct {
	AuthServerURL string        `env:"ADFS_AUTH_SERVER_URL,required"`
	ClientID      string        `env:"ADFS_CLIENT_ID,required"`
	ClientSecret  string        `env:"ADFS_CLIENT_SECRET"`
	Resource      string        `env:"ADFS_RESOURCE"`
	ProviderCA    string        `env:"ADFS_PROVIDER_CA"`
	Port          string        `env:"ADFS_PORT,default=3000"`
	AttemptExp    time.Duration `env:"ADFS_ATTEMPT_EXP,default=2m"`
	LogLevel      string        `env:"ADFS_LOG_LEVEL,default=info"`
}

func loadEnvConfig(dotEnvFiles ...string) (envConfig, error) {
	const op = "loadEnvConfig"
	if err := godotenv.Load(dotEnvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return envConfig{}, fmt.Errorf("%s: unable to load .env: %w", op, err)
	}
	var cfg envConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}
