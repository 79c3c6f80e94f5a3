// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
callback is a package that provides handlers (in the form of http.HandlerFunc)
for the browser legs of an ADFS login: the authorization code callback (with
optional PKCE) and the redirect to the ADFS logout endpoint.
*/
package callback
