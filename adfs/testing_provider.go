// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/b3it/adfs-cap/adfs/clientassertion"
	"github.com/b3it/adfs-cap/internal/strutils"
	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestProviderPath is the path the TestProvider serves ADFS under, so its
// auth server URL is Addr() + TestProviderPath.
const TestProviderPath = "/adfs"

// TestProvider is a local TLS server which answers like the ADFS OAuth2
// endpoints (authorize, token and logout) and makes writing tests much
// easier.  Tokens it issues are ES256 signed JWTs.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	ecdsaPublicKey  string
	ecdsaPrivateKey string

	mu                  sync.Mutex
	clientID            string
	clientSecret        string
	clientAssertionKey  interface{}
	allowedRedirectURIs []string
	expectedAuthCode    string
	expectedAuthNonce   string
	refreshTokenValue   string
	expectedUsername    string
	expectedPassword    string
	replySubject        string
	idTokenClaims       map[string]interface{}
	accessTokenClaims   map[string]interface{}
	omitIDToken         bool
	opaqueAccessToken   bool
	disableToken        bool
	codeChallenge       string
	lastTokenRequest    url.Values
	lastLogoutRequest   url.Values

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider which is stopped when
// the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		t: t,
		allowedRedirectURIs: []string{
			"https://example.com",
		},
		replySubject: "sDMtmUFjbVOn0rB3xZ9VlU4A2Lx8fRL9l6+bWnJmR6Y=",
		idTokenClaims: map[string]interface{}{
			"upn":         "alice@example.com",
			"email":       "alice@example.com",
			"given_name":  "Alice",
			"family_name": "Doe",
			"unique_name": `EXAMPLE\alice`,
		},
		accessTokenClaims: map[string]interface{}{
			"scp": "openid",
			"upn": "alice@example.com",
		},
		refreshTokenValue: "test-refresh-token",
	}
	p.ecdsaPublicKey, p.ecdsaPrivateKey = TestGenerateKeys(t)

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the base URL of the test provider's running webserver.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// AuthServerURL returns the URL to configure as Config.AuthServerURL.
func (p *TestProvider) AuthServerURL() string { return p.Addr() + TestProviderPath }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns an http client which trusts the test provider's CA
// certificate.  Redirects are followed.
func (p *TestProvider) HTTPClient() *http.Client {
	return p.httpServer.Client()
}

// SigningKeys returns the test provider's pem-encoded keys used to sign JWTs.
func (p *TestProvider) SigningKeys() (pub, priv string) {
	return p.ecdsaPublicKey, p.ecdsaPrivateKey
}

// SetClientCreds configures the client credentials the token endpoint
// requires.  An empty secret allows public clients.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// SetClientAssertionKey configures the key which verifies client assertions
// (an *rsa.PublicKey, or the []byte secret of an HMAC signed assertion).
// Once set, requests carrying a client_assertion are authenticated with it
// instead of the client secret.
func (p *TestProvider) SetClientAssertionKey(key interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientAssertionKey = key
}

// SetAllowedRedirectURIs configures the redirect URIs the authorize and token
// endpoints accept.  If not configured "https://example.com" is used.
func (p *TestProvider) SetAllowedRedirectURIs(uris []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetExpectedAuthCode configures the code the authorize endpoint redirects
// with and the token endpoint accepts.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetExpectedAuthNonce configures the nonce the authorize endpoint requires.
func (p *TestProvider) SetExpectedAuthNonce(nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthNonce = nonce
}

// SetExpectedRefreshToken configures the refresh_token the token endpoint
// accepts and returns.
func (p *TestProvider) SetExpectedRefreshToken(rt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshTokenValue = rt
}

// SetExpectedCredentials configures the username and password accepted by
// the password grant.
func (p *TestProvider) SetExpectedCredentials(username, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedUsername = username
	p.expectedPassword = password
}

// SetIdTokenClaims replaces the private claims of issued id_tokens.
func (p *TestProvider) SetIdTokenClaims(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idTokenClaims = claims
}

// SetAccessTokenClaims replaces the private claims of issued access_tokens.
func (p *TestProvider) SetAccessTokenClaims(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessTokenClaims = claims
}

// OmitIDTokens makes the token endpoint answer without an id_token.
func (p *TestProvider) OmitIDTokens(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIDToken = omit
}

// OpaqueAccessTokens makes the token endpoint issue access_tokens which
// aren't JWTs.
func (p *TestProvider) OpaqueAccessTokens(opaque bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opaqueAccessToken = opaque
}

// SetDisableToken makes the token endpoint reject every request.
func (p *TestProvider) SetDisableToken(disable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableToken = disable
}

// LastTokenRequest returns the form of the last token request.
func (p *TestProvider) LastTokenRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTokenRequest
}

// LastLogoutRequest returns the query of the last logout request.
func (p *TestProvider) LastLogoutRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLogoutRequest
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()

	redirectURI := qv.Get("redirect_uri") +
		"?state=" + url.QueryEscape(qv.Get("state")) +
		"&error=" + url.QueryEscape(errorCode)

	if errorMessage != "" {
		redirectURI += "&error_description=" + url.QueryEscape(errorMessage)
	}

	http.Redirect(w, req, redirectURI, http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) error {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return p.writeJSON(w, &body)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch req.URL.Path {
	case TestProviderPath + authorizePath:
		p.serveAuthorize(w, req)
	case TestProviderPath + tokenPath:
		p.serveToken(w, req)
	case TestProviderPath + logoutPath:
		p.serveLogout(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *TestProvider) serveAuthorize(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	qv := req.URL.Query()

	redirectURI := qv.Get("redirect_uri")
	if redirectURI == "" || !strutils.StrListContains(p.allowedRedirectURIs, redirectURI) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch {
	case qv.Get("response_type") != "code":
		p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
		return
	case qv.Get("client_id") != p.clientID:
		p.writeAuthErrorResponse(w, req, "unauthorized_client", "unknown client_id")
		return
	case p.expectedAuthCode == "":
		p.writeAuthErrorResponse(w, req, "access_denied", "")
		return
	case p.expectedAuthNonce != "" && p.expectedAuthNonce != qv.Get("nonce"):
		p.writeAuthErrorResponse(w, req, "access_denied", "unexpected nonce")
		return
	case qv.Get("state") == "":
		p.writeAuthErrorResponse(w, req, "invalid_request", "missing state parameter")
		return
	}
	p.codeChallenge = ""
	if qv.Get("code_challenge_method") == "S256" {
		p.codeChallenge = qv.Get("code_challenge")
	}

	if qv.Get("response_mode") == "form_post" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = formPostTmpl.Execute(w, struct{ Action, State, Code string }{redirectURI, qv.Get("state"), p.expectedAuthCode})
		return
	}
	redirectURI += "?state=" + url.QueryEscape(qv.Get("state")) +
		"&code=" + url.QueryEscape(p.expectedAuthCode)
	http.Redirect(w, req, redirectURI, http.StatusFound)
}

// formPostTmpl is the authorization response for response_mode=form_post.
var formPostTmpl = template.Must(template.New("form_post").Parse(`<!DOCTYPE html>
<html>
<head><title>Working...</title></head>
<body onload="javascript:document.forms[0].submit()">
<form method="post" name="hiddenform" action="{{.Action}}">
<input type="hidden" id="state" name="state" value="{{.State}}" />
<input type="hidden" id="code" name="code" value="{{.Code}}" />
<noscript><p>Script is disabled. Click Submit to continue.</p><input type="submit" value="Submit" /></noscript>
</form>
</body>
</html>
`))

func (p *TestProvider) serveToken(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := req.ParseForm(); err != nil {
		_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "bad form")
		return
	}
	p.lastTokenRequest = req.PostForm

	if p.disableToken {
		_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "token endpoint disabled")
		return
	}
	if !p.validClient(req) {
		_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}

	switch req.PostForm.Get("grant_type") {
	case "authorization_code":
		switch {
		case !strutils.StrListContains(p.allowedRedirectURIs, req.PostForm.Get("redirect_uri")):
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
			return
		case p.expectedAuthCode == "" || req.PostForm.Get("code") != p.expectedAuthCode:
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected auth code")
			return
		case p.codeChallenge != "" && !validVerifier(p.codeChallenge, req.PostForm.Get("code_verifier")):
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "PKCE verification failed")
			return
		}
	case "refresh_token":
		if req.PostForm.Get("refresh_token") != p.refreshTokenValue {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected refresh token")
			return
		}
	case "password":
		if p.expectedUsername == "" || req.PostForm.Get("username") != p.expectedUsername || req.PostForm.Get("password") != p.expectedPassword {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "MSIS9659: Invalid 'username' or 'password'.")
			return
		}
	case "client_credentials":
	default:
		_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "bad grant_type")
		return
	}

	now := time.Now()
	stdClaims := jwt.Claims{
		Subject:   p.replySubject,
		Issuer:    p.AuthServerURL() + "/services/trust",
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
		Expiry:    jwt.NewNumericDate(now.Add(1 * time.Hour)),
		Audience:  jwt.Audience{p.clientID},
	}

	reply := struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		Resource     string `json:"resource,omitempty"`
		RefreshToken string `json:"refresh_token,omitempty"`
		IDToken      string `json:"id_token,omitempty"`
	}{
		TokenType:    "bearer",
		ExpiresIn:    3600,
		Resource:     req.PostForm.Get("resource"),
		RefreshToken: p.refreshTokenValue,
	}
	switch {
	case p.opaqueAccessToken:
		reply.AccessToken = "opaque-access-token"
	default:
		accessClaims := stdClaims
		accessClaims.Audience = jwt.Audience{"microsoft:identityserver:" + p.clientID}
		reply.AccessToken = TestSignJWT(p.t, p.ecdsaPrivateKey, accessClaims, p.accessTokenClaims)
	}
	if !p.omitIDToken && req.PostForm.Get("grant_type") != "client_credentials" {
		reply.IDToken = TestSignJWT(p.t, p.ecdsaPrivateKey, stdClaims, p.idTokenClaims)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = p.writeJSON(w, &reply)
}

func (p *TestProvider) serveLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	qv := req.URL.Query()
	p.lastLogoutRequest = qv

	redirectURI := qv.Get("post_logout_redirect_uri")
	if redirectURI == "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("You have successfully signed out."))
		return
	}
	if !strutils.StrListContains(p.allowedRedirectURIs, redirectURI) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if state := qv.Get("state"); state != "" {
		redirectURI += "?state=" + url.QueryEscape(state)
	}
	http.Redirect(w, req, redirectURI, http.StatusFound)
}

// validClient accepts credentials from either basic auth or the form, or a
// client assertion.
func (p *TestProvider) validClient(req *http.Request) bool {
	if req.PostForm.Get("client_assertion_type") != "" {
		return p.validClientAssertion(req)
	}
	id, secret, ok := req.BasicAuth()
	if !ok {
		id, secret = req.PostForm.Get("client_id"), req.PostForm.Get("client_secret")
	}
	return id == p.clientID && secret == p.clientSecret
}

// validClientAssertion verifies a private_key_jwt assertion the way ADFS
// does: iss and sub are the client id and aud is the token endpoint.
func (p *TestProvider) validClientAssertion(req *http.Request) bool {
	form := req.PostForm
	switch {
	case p.clientAssertionKey == nil,
		form.Get("client_assertion_type") != clientassertion.JWTTypeParam,
		form.Get("client_secret") != "",
		form.Get("client_id") != "" && form.Get("client_id") != p.clientID:
		return false
	}
	if _, _, ok := req.BasicAuth(); ok {
		return false
	}
	tok, err := jwt.ParseSigned(form.Get("client_assertion"))
	if err != nil {
		return false
	}
	var claims jwt.Claims
	if err := tok.Claims(p.clientAssertionKey, &claims); err != nil {
		return false
	}
	err = claims.ValidateWithLeeway(jwt.Expected{
		Issuer:   p.clientID,
		Subject:  p.clientID,
		Audience: jwt.Audience{p.AuthServerURL() + tokenPath},
		Time:     time.Now(),
	}, time.Second)
	return err == nil
}

// validVerifier checks a PKCE code_verifier against its S256 challenge.
func validVerifier(challenge, verifier string) bool {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:]) == challenge
}
