// Copyright (c) 2026 CoPla. All rights reserved.

package directory

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ArtistRepository supplies the directory candidates and tag vocabulary.
type ArtistRepository interface {
	ListArtists(ctx context.Context) ([]ArtistRecord, error)
	TagNames(ctx context.Context) ([]string, error)
}

// FollowingRepository resolves the viewer and who they follow.
// CurrentUser returns an empty name for anonymous viewers.
type FollowingRepository interface {
	CurrentUser(ctx context.Context) (string, error)
	Following(ctx context.Context, username string) ([]FollowingEdge, error)
}

// ErrClosed is returned by Load once the view has been closed.
var ErrClosed = errors.New("directory view closed")

// ArtistsLoadError is the displayable error for a failed artist fetch.
const ArtistsLoadError = "Failed to load artists"

// Snapshot is a consistent copy of everything a renderer needs.
type Snapshot struct {
	Visible      []ArtistRecord
	Total        int
	Tags         []string
	Viewer       string
	Filters      FilterState
	ArtistsError string
	Loading      bool
}

// View is one directory page. It owns its FilterState; every read and write
// goes through the view.
type View struct {
	artists   ArtistRepository
	following FollowingRepository
	logger    *slog.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu           sync.Mutex
	closed       bool
	loading      bool
	filters      FilterState
	records      []ArtistRecord
	tags         []string
	viewer       string
	followingSet FollowingSet
	artistsErr   string
}

// NewView returns a view whose lifetime ends when parent is cancelled or
// [View.Close] is called.
func NewView(parent context.Context, artists ArtistRepository, following FollowingRepository, logger *slog.Logger) *View {
	lifetime, cancel := context.WithCancel(parent)
	return &View{
		artists:   artists,
		following: following,
		logger:    logger,
		lifetime:  lifetime,
		cancel:    cancel,
		filters:   DefaultFilterState(),
		tags:      slices.Clone(DefaultTags),
	}
}

/*
Load fetches the tag vocabulary, the viewer, the artists and the viewer's
following list.

The first three run concurrently; the following list waits for the viewer.
Each fetch writes only its own slot, and a failure degrades only that slot.
Results arriving after Close are dropped.

Returns:
  - error: ErrClosed when the view is already closed
*/
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.loading = true
	v.mu.Unlock()

	// Stop when either the caller or the view goes away.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(v.lifetime, cancel)
	defer stop()

	var group errgroup.Group

	group.Go(func() error {
		tags, err := v.artists.TagNames(ctx)
		if err != nil || len(tags) == 0 {
			v.logger.Warn("directory_tags_fallback", slog.Any("error", err))
			tags = DefaultTags
		}
		v.commit(func() { v.tags = slices.Clone(tags) })
		return nil
	})

	group.Go(func() error {
		records, err := v.artists.ListArtists(ctx)
		if err != nil {
			v.logger.Warn("directory_artists_failed", slog.Any("error", err))
			v.commit(func() { v.records, v.artistsErr = nil, ArtistsLoadError })
			return nil
		}
		v.commit(func() { v.records, v.artistsErr = records, "" })
		return nil
	})

	group.Go(func() error {
		viewer, err := v.following.CurrentUser(ctx)
		if err != nil {
			v.logger.Warn("directory_viewer_failed", slog.Any("error", err))
			viewer = ""
		}
		v.commit(func() { v.viewer = viewer })
		if viewer == "" {
			return nil
		}

		edges, err := v.following.Following(ctx, viewer)
		if err != nil {
			v.logger.Warn("directory_following_failed", slog.Any("error", err))
			edges = nil
		}
		v.commit(func() { v.followingSet = NewFollowingSet(edges) })
		return nil
	})

	_ = group.Wait()
	v.commit(func() { v.loading = false })
	return nil
}

// commit applies a slot write unless the view has been closed.
func (v *View) commit(write func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.lifetime.Err() != nil {
		return
	}
	write()
}

// Close ends the view's lifetime. Pending loads stop writing state.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.cancel()
}

// Update applies mutate to the filter state under the view lock.
func (v *View) Update(mutate func(*FilterState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	mutate(&v.filters)
}

// Filters returns a copy of the current filter state.
func (v *View) Filters() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// Visible computes the visible records from the current slots.
func (v *View) Visible() []ArtistRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ComputeVisible(v.records, v.filters, v.followingSet)
}

// Snapshot returns the visible list and every slot in one locked read.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return Snapshot{
		Visible:      ComputeVisible(v.records, v.filters, v.followingSet),
		Total:        len(v.records),
		Tags:         slices.Clone(v.tags),
		Viewer:       v.viewer,
		Filters:      v.filters.Clone(),
		ArtistsError: v.artistsErr,
		Loading:      v.loading,
	}
}
