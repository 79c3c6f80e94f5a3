// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewToken_Tk(t *testing.T) {
	t.Parallel()
	testNow := func() time.Time {
		return time.Now().Add(-1 * time.Minute)
	}
	expiry := time.Now().Add(1 * time.Hour)
	underlying := (&oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       expiry,
	}).WithExtra(map[string]interface{}{
		"id_token": "id.token.value",
		"resource": "urn:app",
	})

	tests := []struct {
		name             string
		token            *oauth2.Token
		opt              []Option
		wantIdToken      IdToken
		wantAccessToken  AccessToken
		wantRefreshToken RefreshToken
		wantExpiry       time.Time
		wantNowFunc      func() time.Time
		wantErr          bool
		wantIsErr        error
	}{
		{
			name:             "valid",
			token:            underlying,
			opt:              []Option{WithNow(testNow)},
			wantIdToken:      "id.token.value",
			wantAccessToken:  "access-token",
			wantRefreshToken: "refresh-token",
			wantExpiry:       expiry,
			wantNowFunc:      testNow,
		},
		{
			name:            "without-id-token",
			token:           &oauth2.Token{AccessToken: "access-token"},
			wantAccessToken: "access-token",
		},
		{
			name:            "non-string-id-token",
			token:           (&oauth2.Token{AccessToken: "access-token"}).WithExtra(map[string]interface{}{"id_token": 42}),
			wantAccessToken: "access-token",
		},
		{
			name:      "nil-token",
			wantErr:   true,
			wantIsErr: ErrNilParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewToken(tt.token, tt.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.wantIdToken, got.IdToken())
			assert.Equal(tt.wantAccessToken, got.AccessToken())
			assert.Equal(tt.wantRefreshToken, got.RefreshToken())
			assert.Equal(tt.wantExpiry, got.Expiry())
			if tt.wantNowFunc != nil {
				assert.Equal(tt.wantNowFunc().Round(time.Second), got.now().Round(time.Second))
			}
			src, err := got.StaticTokenSource().Token()
			require.NoError(err)
			assert.Equal(string(tt.wantAccessToken), src.AccessToken)
		})
	}
	t.Run("extra", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := NewToken(underlying)
		require.NoError(err)
		assert.Equal("urn:app", got.Extra("resource"))
	})
}

func TestTk_Valid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		tk          *Tk
		wantValid   bool
		wantExpired bool
	}{
		{
			name:      "no-expiry",
			tk:        &Tk{underlying: &oauth2.Token{AccessToken: "a"}},
			wantValid: true,
		},
		{
			name:      "unexpired",
			tk:        &Tk{underlying: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}},
			wantValid: true,
		},
		{
			name:        "expired",
			tk:          &Tk{underlying: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(-time.Hour)}},
			wantExpired: true,
		},
		{
			name:        "within-skew",
			tk:          &Tk{underlying: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(expirySkew / 2)}},
			wantExpired: true,
		},
		{
			name: "expired-with-now",
			tk: &Tk{
				underlying: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)},
				nowFunc:    func() time.Time { return time.Now().Add(2 * time.Hour) },
			},
			wantExpired: true,
		},
		{
			name: "empty-access-token",
			tk:   &Tk{underlying: &oauth2.Token{}},
		},
		{
			name: "nil",
			tk:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.wantValid, tt.tk.Valid())
			if tt.tk != nil {
				assert.Equal(tt.wantExpired, tt.tk.IsExpired())
			}
		})
	}
}

func TestTokens_Redacted(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tk   interface {
			String() string
			MarshalJSON() ([]byte, error)
		}
		want string
	}{
		{"access-token", AccessToken("super secret token"), RedactedAccessToken},
		{"id-token", IdToken("super secret token"), RedactedIdToken},
		{"refresh-token", RefreshToken("super secret token"), RedactedRefreshToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			assert.Equalf(tt.want, tt.tk.String(), "String() = %v, want %v", tt.tk.String(), tt.want)
			got, err := tt.tk.MarshalJSON()
			require.NoError(err)
			assert.Equal(fmt.Sprintf(`"%s"`, tt.want), string(got))
		})
	}
}
