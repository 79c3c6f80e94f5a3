// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

var (
	ErrInvalidCertificatePem = errors.New("invalid certificate PEM")
	ErrInvalidProxyURL       = errors.New("invalid proxy URL")
)

// Option defines a functional option for NewClient.
type Option func(*clientOptions)

type clientOptions struct {
	withCACert             string
	withTimeout            time.Duration
	withProxyURL           string
	withInsecureSkipVerify bool
}

// WithCACert provides an optional PEM encoded CA certificate.  When empty,
// the installed system CA chain is used.
func WithCACert(caPEM string) Option {
	return func(o *clientOptions) { o.withCACert = caPEM }
}

// WithTimeout provides an optional timeout for every request.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.withTimeout = d }
}

// WithProxyURL provides an optional proxy.  When empty, the proxy is taken
// from the environment.
func WithProxyURL(proxy string) Option {
	return func(o *clientOptions) { o.withProxyURL = proxy }
}

// WithInsecureSkipVerify disables server certificate verification when true.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *clientOptions) { o.withInsecureSkipVerify = skip }
}

// NewClient creates a new http client using a pooled cleanhttp transport.
func NewClient(opt ...Option) (*http.Client, error) {
	opts := clientOptions{}
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	tr := cleanhttp.DefaultPooledTransport()

	if opts.withCACert != "" || opts.withInsecureSkipVerify {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: opts.withInsecureSkipVerify, //nolint:gosec // explicitly requested by the caller
		}
		if opts.withCACert != "" {
			certPool := x509.NewCertPool()
			if ok := certPool.AppendCertsFromPEM([]byte(opts.withCACert)); !ok {
				return nil, ErrInvalidCertificatePem
			}
			tlsConfig.RootCAs = certPool
		}
		tr.TLSClientConfig = tlsConfig
	}

	if opts.withProxyURL != "" {
		u, err := url.Parse(opts.withProxyURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProxyURL, err)
		}
		tr.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: tr,
		Timeout:   opts.withTimeout,
	}, nil
}
