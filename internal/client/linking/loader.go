// Copyright (c) 2026 CoPla. All rights reserved.

package linking

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared load, which runs detached from any caller.
const loadTimeout = 30 * time.Second

// LoadFunc builds the provider client, typically by fetching client metadata.
type LoadFunc func(ctx context.Context) (IdentityProvider, error)

// Loader builds the provider once. Overlapping calls share one in-flight
// load; a failed load is retried by the next call.
type Loader struct {
	load  LoadFunc
	group singleflight.Group

	mu       sync.Mutex
	provider IdentityProvider
}

// NewLoader wraps load.
func NewLoader(load LoadFunc) *Loader {
	return &Loader{load: load}
}

// StaticLoader returns a loader for an already built provider.
func StaticLoader(provider IdentityProvider) *Loader {
	return &Loader{provider: provider}
}

// Get returns the provider, loading it on first use.
//
// The shared load keeps the caller's values but not its cancellation, so one
// caller giving up does not fail the others. A cancelled caller still returns
// as soon as its own ctx is done.
func (l *Loader) Get(ctx context.Context) (IdentityProvider, error) {
	l.mu.Lock()
	if l.provider != nil {
		defer l.mu.Unlock()
		return l.provider, nil
	}
	l.mu.Unlock()

	results := l.group.DoChan("provider", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		provider, err := l.load(loadCtx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.provider = provider
		l.mu.Unlock()
		return provider, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(IdentityProvider), nil
	}
}
