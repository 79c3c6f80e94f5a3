// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
adfs is a package for integrating relying parties with Active Directory
Federation Services (ADFS) using its OAuth2/OIDC endpoints.

# Primary types provided by the package

* Config: the relying party configuration: the ADFS base URL, client
id/secret, redirect URL, optional resource and the transport options (CA,
proxy, TLS verification, timeout) used for requests to ADFS.

* Provider: builds the authorize, token and logout URLs for the configured
ADFS, exchanges grants (authorization code, refresh token, client
credentials, password) for tokens and keeps the last id_token so logout URLs
can carry an id_token_hint.

* Token: the access_token, id_token and refresh_token of a token response.

* Claims: the claims decoded from the JWTs in a Token (see ExtractClaims).
Signatures are not verified.

* ResourceOwner: the user a Token was issued for, identified by the "upn"
claim.

* State: one user's authorization code flow (state, nonce and an optional
PKCE verifier).

# The adfs/callback package

The callback package includes http.HandlerFuncs for the authorization code
redirect and for sending the user to the ADFS logout endpoint.
*/
package adfs
