// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"fmt"
	"net/url"

	"github.com/b3it/adfs-cap/adfs/clientassertion"
)

// ClientAssertionJWT signs a new client assertion for every token request.
// *clientassertion.JWT implements it.
type ClientAssertionJWT interface {
	Serialize() (string, error)
}

var _ ClientAssertionJWT = (*clientassertion.JWT)(nil)

// clientAssertionParams returns the client_assertion params for one token
// request, or nil when the config has no client assertion.
func (p *Provider) clientAssertionParams() (url.Values, error) {
	const op = "Provider.clientAssertionParams"
	if p.config.ClientAssertionJWT == nil {
		return nil, nil
	}
	assertion, err := p.config.ClientAssertionJWT.Serialize()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to sign client assertion: %w", op, err)
	}
	return url.Values{
		"client_assertion_type": {clientassertion.JWTTypeParam},
		"client_assertion":      {assertion},
	}, nil
}
