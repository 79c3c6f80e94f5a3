// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthCodeWithChannel(t *testing.T) {
	ctx := context.Background()
	tp := adfs.StartTestProvider(t)
	p := testNewProvider(t, "test-client-id", "test-client-secret", "https://alice.com", tp)
	s := newTestState(t)

	tests := []struct {
		name      string
		p         *adfs.Provider
		s         adfs.State
		sFn       SuccessResponseFunc
		eFn       ErrorResponseFunc
		wantErr   bool
		wantIsErr error
	}{
		{"valid", p, s, testSuccessFn, testFailFn, false, nil},
		{"nil-p", nil, s, testSuccessFn, testFailFn, true, adfs.ErrInvalidParameter},
		{"nil-state", p, nil, testSuccessFn, testFailFn, true, adfs.ErrInvalidParameter},
		{"nil-sFn", p, s, nil, testFailFn, true, adfs.ErrInvalidParameter},
		{"nil-eFn", p, s, testSuccessFn, nil, true, adfs.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			ch, h, err := AuthCodeWithChannel(ctx, tt.p, tt.s, tt.sFn, tt.eFn)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				assert.Nil(ch)
				assert.Nil(h)
				return
			}
			require.NoError(err)
			assert.NotNil(ch)
			assert.NotNil(h)
		})
	}
}

func Test_AuthCodeWithChannelResponses(t *testing.T) {
	ctx := context.Background()
	tp := adfs.StartTestProvider(t)
	tp.SetExpectedAuthCode("channel-code")
	callbackSrv := httptest.NewTLSServer(nil)
	defer callbackSrv.Close()
	p := testNewProvider(t, "test-client-id", "test-client-secret", callbackSrv.URL, tp)

	tests := []struct {
		name            string
		nonceOverride   string
		disableExchange bool
		wantStatusCode  int
		wantIsErr       error
		wantErrContains string
	}{
		{
			name:           "success",
			wantStatusCode: http.StatusOK,
		},
		{
			name:            "adfs-error",
			nonceOverride:   "bad-nonce",
			wantStatusCode:  http.StatusUnauthorized,
			wantIsErr:       adfs.ErrLoginFailed,
			wantErrContains: "access_denied",
		},
		{
			name:            "bad-exchange",
			disableExchange: true,
			wantStatusCode:  http.StatusInternalServerError,
			wantIsErr:       adfs.ErrExchangeFailed,
			wantErrContains: "invalid_client",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			state, err := adfs.NewState(1*time.Minute, adfs.WithPKCE(oauth2.GenerateVerifier()))
			require.NoError(err)
			switch {
			case tt.nonceOverride != "":
				tp.SetExpectedAuthNonce(tt.nonceOverride)
			default:
				tp.SetExpectedAuthNonce(state.Nonce())
			}
			if tt.disableExchange {
				tp.SetDisableToken(true)
				defer tp.SetDisableToken(false)
			}

			doneCh, h, err := AuthCodeWithChannel(ctx, p, state, testSuccessFn, testFailFn)
			require.NoError(err)
			callbackSrv.Config.Handler = h

			authURL, err := p.AuthURL(ctx, state)
			require.NoError(err)
			resp, err := tp.HTTPClient().Get(authURL)
			require.NoError(err)
			defer resp.Body.Close()
			_, err = io.ReadAll(resp.Body)
			require.NoError(err)
			assert.Equal(tt.wantStatusCode, resp.StatusCode)

			var got LoginResp
			select {
			case got = <-doneCh:
			case <-time.After(5 * time.Second):
				t.Fatal("no login response written to the channel")
			}
			if tt.wantIsErr != nil {
				require.Error(got.Error)
				assert.Nil(got.Token)
				assert.Truef(errors.Is(got.Error, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, got.Error)
				assert.Contains(got.Error.Error(), tt.wantErrContains)
				return
			}
			require.NoError(got.Error)
			require.NotNil(got.Token)
			assert.NotEmpty(got.Token.AccessToken())
			assert.Equal(state.PKCEVerifier(), tp.LastTokenRequest().Get("code_verifier"))
		})
	}
}

func Test_AuthCodeWithChannelOnce(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	tp := adfs.StartTestProvider(t)
	p := testNewProvider(t, "test-client-id", "test-client-secret", "https://alice.com", tp)
	state := newTestState(t)

	doneCh, h, err := AuthCodeWithChannel(ctx, p, state, testSuccessFn, testFailFn)
	require.NoError(err)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/callback?state="+state.Id()+"&error=access_denied&error_description=denied", nil)
		h(w, req)
		assert.Equal(http.StatusUnauthorized, w.Code)
	}

	first, ok := <-doneCh
	require.True(ok)
	assert.ErrorIs(first.Error, adfs.ErrLoginFailed)
	assert.Contains(first.Error.Error(), "denied")

	_, ok = <-doneCh
	assert.False(ok, "only the first callback is reported")
}
