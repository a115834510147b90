// Copyright (c) 2026 CoPla. All rights reserved.

package artist_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/sec"
)

type fakeRepo struct {
	artists map[string]*artist.Artist
	known   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		artists: map[string]*artist.Artist{
			"ana": {ID: 1, Name: "ana", Verified: true, IsOpenForCommissions: true, LowestPrice: 40, RelatedTags: []string{"Fantasy"}},
			"cy":  {ID: 3, Name: "cy"},
		},
		known: []string{"Fantasy", "Pixel Art"},
	}
}

func (f *fakeRepo) ListArtists(_ context.Context, filter artist.Filter) ([]*artist.Artist, error) {
	var out []*artist.Artist
	for _, name := range []string{"ana", "cy"} {
		a := f.artists[name]
		if filter.Verified != nil && a.Verified != *filter.Verified {
			continue
		}
		if filter.OpenForCommissions != nil && a.IsOpenForCommissions != *filter.OpenForCommissions {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) FindArtistID(_ context.Context, username string) (int64, error) {
	if a, ok := f.artists[username]; ok {
		return a.ID, nil
	}
	return 0, apperr.NotFound("Artist")
}

func (f *fakeRepo) byID(id int64) *artist.Artist {
	for _, a := range f.artists {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeRepo) SetCommissionStatus(_ context.Context, id int64, open bool) error {
	f.byID(id).IsOpenForCommissions = open
	return nil
}

func (f *fakeRepo) SetVerified(_ context.Context, id int64, verified bool) error {
	if a := f.byID(id); a != nil {
		a.Verified = verified
	}
	return nil
}

func (f *fakeRepo) AddTag(_ context.Context, id int64, name string) (bool, error) {
	idx := slices.IndexFunc(f.known, func(k string) bool { return strings.EqualFold(k, name) })
	if idx < 0 {
		return false, nil
	}
	a := f.byID(id)
	if !slices.Contains(a.RelatedTags, f.known[idx]) {
		a.RelatedTags = append(a.RelatedTags, f.known[idx])
	}
	return true, nil
}

func (f *fakeRepo) RemoveTag(_ context.Context, id int64, name string) (bool, error) {
	a := f.byID(id)
	before := len(a.RelatedTags)
	a.RelatedTags = slices.DeleteFunc(a.RelatedTags, func(t string) bool { return strings.EqualFold(t, name) })
	return len(a.RelatedTags) < before, nil
}

func newRouter(repo artist.Repository, caller *sec.AuthClaims) http.Handler {
	service := artist.NewService(repo, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller != nil {
				r = r.WithContext(ctxutil.WithAuthUser(r.Context(), caller))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Route("/api/users", artist.NewHandler(service).RegisterRoutes)
	return router
}

func do(t *testing.T, handler http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder.Code, decoded
}

/*
TestListArtists_Filters checks the optional tri-state query filters.
*/
func TestListArtists_Filters(t *testing.T) {
	router := newRouter(newFakeRepo(), nil)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no_filters", "", 2},
		{"verified", "?verified=true", 1},
		{"unverified", "?verified=false", 1},
		{"open", "?open_for_commissions=true", 1},
		{"garbage_ignored", "?verified=maybe", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, router, http.MethodGet, "/api/users/artists"+tt.query, "")
			assert.Equal(t, http.StatusOK, code)
			assert.Len(t, body["data"], tt.want)
		})
	}
}

/*
TestOwnership rejects anonymous callers and callers editing someone else.
*/
func TestOwnership(t *testing.T) {
	repo := newFakeRepo()

	code, _ := do(t, newRouter(repo, nil), http.MethodPut, "/api/users/ana/commission-status", `{"is_open":false}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	intruder := &sec.AuthClaims{UserID: 3, Username: "cy", Role: string(sec.RoleArtist)}
	code, body := do(t, newRouter(repo, intruder), http.MethodPut, "/api/users/ana/commission-status", `{"is_open":false}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You can only modify your own account", body["error"])
	assert.True(t, repo.artists["ana"].IsOpenForCommissions)
}

/*
TestCommissionStatus toggles availability and requires the field.
*/
func TestCommissionStatus(t *testing.T) {
	repo := newFakeRepo()
	router := newRouter(repo, &sec.AuthClaims{UserID: 1, Username: "ana", Role: string(sec.RoleArtist)})

	code, _ := do(t, router, http.MethodPut, "/api/users/ana/commission-status", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, router, http.MethodPut, "/api/users/ana/commission-status", `{"is_open":false}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["data"].(map[string]any)["is_open_for_commissions"])
	assert.False(t, repo.artists["ana"].IsOpenForCommissions)
}

/*
TestTags covers adding known tags, rejecting unknown ones and removal.
*/
func TestTags(t *testing.T) {
	repo := newFakeRepo()
	router := newRouter(repo, &sec.AuthClaims{UserID: 1, Username: "ana", Role: string(sec.RoleArtist)})

	code, body := do(t, router, http.MethodPost, "/api/users/ana/tags/add", `{"tag_name":"pixel art"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tag 'pixel art' added successfully", body["data"].(map[string]any)["message"])
	assert.Contains(t, repo.artists["ana"].RelatedTags, "Pixel Art")

	code, body = do(t, router, http.MethodPost, "/api/users/ana/tags/add", `{"tag_name":"Baroque"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Tag 'Baroque' not found", body["error"])

	code, _ = do(t, router, http.MethodPost, "/api/users/ana/tags/add", `{"tag_name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodDelete, "/api/users/ana/tags/Fantasy", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, router, http.MethodDelete, "/api/users/ana/tags/Fantasy", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Tag 'Fantasy' not associated with this artist", body["error"])
}

/*
TestSetVerified flips the badge used by social linking.
*/
func TestSetVerified(t *testing.T) {
	repo := newFakeRepo()
	service := artist.NewService(repo, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	require.NoError(t, service.SetVerified(context.Background(), 3, true))
	assert.True(t, repo.artists["cy"].Verified)
}
