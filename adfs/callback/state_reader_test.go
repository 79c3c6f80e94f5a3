// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/b3it/adfs-cap/adfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *adfs.St {
	t.Helper()
	s, err := adfs.NewState(1 * time.Minute)
	require.NoError(t, err)
	return s
}

func TestSingleStateReader_Read(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tests := []struct {
		name       string
		state      adfs.State
		idOverride string
		wantErr    bool
	}{
		{"valid", newTestState(t), "", false},
		{"not-found", newTestState(t), "not-found", true},
		{"nil-state", nil, "any", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			s := &SingleStateReader{
				State: tt.state,
			}
			var id string
			switch {
			case tt.idOverride != "":
				id = tt.idOverride
			default:
				id = s.State.Id()
			}
			got, err := s.Read(ctx, id)
			if tt.wantErr {
				require.Error(err)
				assert.True(errors.Is(err, adfs.ErrNotFound))
				return
			}
			require.NoError(err)
			assert.Equal(tt.state, got)
		})
	}
}
