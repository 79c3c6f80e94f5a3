// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"fmt"

	"github.com/b3it/adfs-cap/adfs"
)

// StateReader defines an interface for finding and reading an adfs.State
// Implementations must be concurrently safe, since the reader will likely be
// used within a concurrent http.Handler
type StateReader interface {
	// Read an existing State entry.  The returned state's Id()
	// must match the stateID used to look it up. Implementations must be
	// concurrently safe, which likely means returning a deep copy.
	Read(ctx context.Context, stateID string) (adfs.State, error)
}

// SingleStateReader implements the StateReader interface for a single state.
// It is concurrently safe.
type SingleStateReader struct {
	State adfs.State
}

// Read() will return it's single-state if the stateID matches it's Id(),
// otherwise it returns an error of adfs.ErrNotFound. It satisfies the
// StateReader interface.  Read() is concurrently safe.
func (s *SingleStateReader) Read(ctx context.Context, stateID string) (adfs.State, error) {
	const op = "SingleStateReader.Read"
	if s.State == nil || s.State.Id() != stateID {
		return nil, fmt.Errorf("%s: state %q: %w", op, stateID, adfs.ErrNotFound)
	}
	return s.State, nil
}
