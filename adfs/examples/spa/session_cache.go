// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/b3it/adfs-cap/adfs"
)

// session is one user's login.  Each session gets its own provider, so the
// id_token it keeps for logout is that user's.
type session struct {
	adfs.State
	p *adfs.Provider
	t adfs.Token
}

type sessionCache struct {
	m sync.Mutex
	c map[string]session
}

func newSessionCache() *sessionCache {
	return &sessionCache{
		c: map[string]session{},
	}
}

// Read implements the callback.StateReader interface.  Expired login
// attempts are removed.
func (sc *sessionCache) Read(ctx context.Context, id string) (adfs.State, error) {
	const op = "sessionCache.Read"
	s, err := sc.session(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.State, nil
}

func (sc *sessionCache) Add(s adfs.State, p *adfs.Provider) {
	sc.m.Lock()
	defer sc.m.Unlock()
	sc.c[s.Id()] = session{State: s, p: p}
}

func (sc *sessionCache) SetToken(id string, t adfs.Token) error {
	const op = "sessionCache.SetToken"
	sc.m.Lock()
	defer sc.m.Unlock()
	s, ok := sc.c[id]
	if !ok {
		return fmt.Errorf("%s: %s: %w", op, id, adfs.ErrNotFound)
	}
	s.t = t
	sc.c[id] = s
	return nil
}

// session returns the session.  A login attempt which expired before a
// token was set is removed.
func (sc *sessionCache) session(id string) (session, error) {
	sc.m.Lock()
	defer sc.m.Unlock()
	s, ok := sc.c[id]
	if !ok {
		return session{}, fmt.Errorf("session %s: %w", id, adfs.ErrNotFound)
	}
	if s.t == nil && s.IsExpired() {
		delete(sc.c, id)
		return session{}, fmt.Errorf("session %s: %w", id, adfs.ErrExpiredState)
	}
	return s, nil
}

func (sc *sessionCache) Delete(id string) {
	sc.m.Lock()
	defer sc.m.Unlock()
	delete(sc.c, id)
}
