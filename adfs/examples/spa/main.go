// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/common-nighthawk/go-figure"
	"github.com/hashicorp/go-hclog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	env, err := loadEnvConfig()
	if err != nil {
		return err
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "adfs-spa",
		Level: hclog.LevelFromString(env.LogLevel),
	})

	baseURL := fmt.Sprintf("http://localhost:%s", env.Port)
	opts := []adfs.Option{adfs.WithResource(env.Resource)}
	if env.ProviderCA != "" {
		opts = append(opts, adfs.WithProviderCA(env.ProviderCA))
	}
	pc, err := adfs.NewConfig(env.AuthServerURL, env.ClientID, adfs.ClientSecret(env.ClientSecret), baseURL+"/callback", opts...)
	if err != nil {
		return err
	}

	a := &app{
		config:         pc,
		logger:         logger,
		sessions:       newSessionCache(),
		attemptExp:     env.AttemptExp,
		logoutRedirect: baseURL + "/",
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%s", env.Port),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// handle ctrl-c
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	figure.NewFigure("adfs-spa", "cybermedium", true).Print()

	srvCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "url", baseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvCh <- err
		}
	}()

	select {
	case err := <-srvCh:
		return fmt.Errorf("server closed with error: %w", err)
	case <-ctx.Done():
		logger.Info("interrupted")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
