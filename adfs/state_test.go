// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	skew := 250 * time.Millisecond
	testNow := func() time.Time {
		return time.Now().Add(-1 * time.Minute)
	}
	tests := []struct {
		name         string
		expireIn     time.Duration
		opt          []Option
		wantNow      func() time.Time
		wantVerifier string
		wantErr      bool
		wantIsErr    error
	}{
		{
			name:         "valid-with-all-options",
			expireIn:     1 * time.Second,
			opt:          []Option{WithNow(testNow), WithPKCE("verifier")},
			wantNow:      testNow,
			wantVerifier: "verifier",
		},
		{
			name:     "valid-no-opt",
			expireIn: 1 * time.Second,
			wantNow:  time.Now,
		},
		{
			name:      "zero-expireIn",
			expireIn:  0,
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "negative-expireIn",
			expireIn:  -1 * time.Second,
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewState(tt.expireIn, tt.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			tExp := tt.wantNow().Add(tt.expireIn)
			assert.True(got.expiration.Before(tExp.Add(skew)))
			assert.True(got.expiration.After(tExp.Add(-skew)))
			assert.NotEqualf(got.Id(), got.Nonce(), "%s id should not equal %s nonce", got.Id(), got.Nonce())
			assert.True(strings.HasPrefix(got.Id(), "st_"))
			assert.True(strings.HasPrefix(got.Nonce(), "n_"))
			assert.Equal(tt.wantVerifier, got.PKCEVerifier())
		})
	}
}

func TestSt_IsExpired(t *testing.T) {
	t.Parallel()
	t.Run("not-expired", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s, err := NewState(2 * time.Second)
		require.NoError(err)
		assert.False(s.IsExpired())
	})
	t.Run("expired", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s, err := NewState(1 * time.Nanosecond)
		require.NoError(err)
		assert.True(s.IsExpired())
	})
}
