// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/stretchr/testify/require"
)

// testSuccessFn is a test SuccessResponseFunc
func testSuccessFn(stateID string, t adfs.Token, w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("login successful"))
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(stateID string, r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
	if e != nil {
		w.WriteHeader(http.StatusInternalServerError)
		j, _ := json.Marshal(&AuthenErrorResponse{
			Error:       "internal-callback-error",
			Description: e.Error(),
		})
		_, _ = w.Write(j)
		return
	}
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(r)
		_, _ = w.Write(j)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	j, _ := json.Marshal(&AuthenErrorResponse{
		Error: "unknown-callback-error",
	})
	_, _ = w.Write(j)
}

// testNewProvider creates a new Provider for the TestProvider (tp).  It sets
// the TestProvider's client ID/secret and allowed redirect URL so they match
// the provider's configuration. This is helpful internally, but
// intentionally not exported.
func testNewProvider(t *testing.T, clientID, clientSecret, redirectURL string, tp *adfs.TestProvider) *adfs.Provider {
	const op = "testNewProvider"
	t.Helper()
	require := require.New(t)
	require.NotEmptyf(clientID, "%s: client id is empty", op)
	require.NotEmptyf(clientSecret, "%s: client secret is empty", op)
	require.NotEmptyf(redirectURL, "%s: redirect URL is empty", op)

	tp.SetClientCreds(clientID, clientSecret)
	tp.SetAllowedRedirectURIs([]string{redirectURL})
	c, err := adfs.NewConfig(
		tp.AuthServerURL(),
		clientID,
		adfs.ClientSecret(clientSecret),
		redirectURL,
		adfs.WithProviderCA(tp.CACert()),
	)
	require.NoError(err)
	p, err := adfs.NewProvider(c)
	require.NoError(err)
	return p
}

// testNilStateReader is a StateReader which finds nothing and reports no
// error.
type testNilStateReader struct{}

func (*testNilStateReader) Read(_ context.Context, _ string) (adfs.State, error) {
	return nil, nil
}
