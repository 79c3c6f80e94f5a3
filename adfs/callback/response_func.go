// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/b3it/adfs-cap/adfs"
)

// SuccessResponseFunc is used by AuthCode to create a http response when the
// callback is successful.
//
// The function state parameter will contain the state that was returned as
// part of a successful authorization response. The adfs.Token is the result
// of a successful token exchange with ADFS.  The function should use the
// http.ResponseWriter to send back whatever content (headers, html, JSON,
// etc) it wishes to the client that originated the flow.
type SuccessResponseFunc func(state string, t adfs.Token, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by AuthCode to create a http response when the
// callback fails.
//
// The function receives the state returned as part of the authorization
// response.  It also gets parameters for the ADFS error response and/or the
// callback error raised while processing the request.
type ErrorResponseFunc func(state string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse represents Oauth2 error responses.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthenErrorResponse struct {
	Error       string
	Description string
	Uri         string
}
