// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package clientassertion signs the JWTs an ADFS relying party sends as its
client_assertion (private_key_jwt) instead of a client secret.

ADFS expects the assertion's audience to be its token endpoint, and iss and
sub to be the relying party's client id:

	c, _ := adfs.NewConfig("https://adfs.example.com/adfs", "client-id", "", redirectURL)
	j, _ := clientassertion.NewJWT(c.ClientID, []string{c.TokenEndpoint()},
		clientassertion.WithRSAKey(key, clientassertion.RS256),
		clientassertion.WithKeyID(certThumbprint),
	)
	c.ClientAssertionJWT = j

A new assertion (new jti, iat and exp) is signed every time Serialize is
called, so one JWT can be used for every token request.
*/
package clientassertion
