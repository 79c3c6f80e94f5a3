// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// adfsctl is a command line client for ADFS OAuth2: it prints authorize and
// logout URLs, decodes token claims and logs in with any supported grant.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	// handle ctrl-c while waiting for the callback
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
