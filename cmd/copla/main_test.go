// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/client/directory"
	"github.com/copla/copla/internal/client/localstore"
	"github.com/copla/copla/internal/client/prefs"
	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/users/account"
	"github.com/copla/copla/internal/users/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestLoadConfig merges the file over the defaults.
*/
func TestLoadConfig(t *testing.T) {
	t.Run("Missing file yields defaults", func(t *testing.T) {
		dir := t.TempDir()

		config, err := loadConfig(filepath.Join(dir, configFileName))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", config.APIURL)
		assert.Equal(t, filepath.Join(dir, "state.yaml"), config.StateFile)
		assert.Equal(t, config.APIURL, config.clientOrigin())
	})

	t.Run("File overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), configFileName)
		raw := "api_url: https://api.copla.art/\nclient_origin: https://copla.art\ntheme: Dark\ncallback_port: 8765\n"
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		config, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.copla.art", config.APIURL)
		assert.Equal(t, "https://copla.art", config.clientOrigin())
		assert.Equal(t, prefs.ModeDark, config.Theme)
		assert.Equal(t, 8765, config.CallbackPort)
	})

	t.Run("Unknown theme", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), configFileName)
		require.NoError(t, os.WriteFile(path, []byte("theme: sepia\n"), 0o600))

		_, err := loadConfig(path)
		assert.Error(t, err)
	})

	t.Run("Save round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", configFileName)
		config := defaultConfig(filepath.Dir(path))
		config.Theme = prefs.ModeLight

		require.NoError(t, config.save(path))
		loaded, err := loadConfig(path)
		require.NoError(t, err)
		if diff := cmp.Diff(config, loaded); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})
}

/*
TestDirectoryFlags_Apply maps flags onto a filter state.
*/
func TestDirectoryFlags_Apply(t *testing.T) {
	flags := directoryFlags{
		search:    "ana",
		minPrice:  20,
		maxPrice:  80,
		status:    []string{"open", "busy"},
		tags:      " Portrait, ,Fantasy,Portrait",
		verified:  true,
		following: true,
	}

	filters := directory.DefaultFilterState()
	flags.apply(&filters)

	want := directory.FilterState{
		SearchTerm:    "ana",
		Price:         directory.PriceRange{Min: 20, Max: 80},
		Availability:  []directory.Availability{directory.AvailabilityOpen, directory.AvailabilityBusy},
		Tags:          []string{"Portrait", "Fantasy"},
		VerifiedOnly:  true,
		FollowingOnly: true,
	}
	if diff := cmp.Diff(want, filters); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}
}

/*
TestCallbackServer hands the first redirect's query to Wait.
*/
func TestCallbackServer(t *testing.T) {
	callback, err := listenCallback(0, discardLogger())
	require.NoError(t, err)
	defer callback.Close()

	assert.True(t, strings.HasPrefix(callback.RedirectURI(), "http://127.0.0.1:"))
	assert.True(t, strings.HasSuffix(callback.RedirectURI(), "/bluesky/callback"))

	response, err := http.Get(callback.RedirectURI() + "?code=c1&state=s1&iss=https%3A%2F%2Fauth.example")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)

	params, err := callback.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", params.Get("code"))
	assert.Equal(t, "s1", params.Get("state"))
	assert.Equal(t, "https://auth.example", params.Get("iss"))
}

/*
TestRootCommand_Artists runs the artists command against a fake backend.
*/
func TestRootCommand_Artists(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/users/artists", func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, []artist.Artist{
			{ID: 1, Name: "Ana", LowestPrice: 40, IsOpenForCommissions: true, Verified: true, RelatedTags: []string{"Portrait"}},
			{ID: 2, Name: "Bo", LowestPrice: 120, RelatedTags: []string{"Logo"}},
		})
	})
	router.Get("/api/tags/names", func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, []string{"Portrait", "Logo"})
	})
	router.Get("/api/users/me", func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, account.Me{})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	cases := []struct {
		name    string
		args    []string
		present []string
		absent  []string
	}{
		{"No filters", nil, []string{"Showing 2 of 2", "Ana", "Bo"}, nil},
		{"Tag filter", []string{"--tags", "portrait"}, []string{"Showing 1 of 2", "Ana"}, []string{"Bo"}},
		{"Price ceiling", []string{"--max", "100"}, []string{"Ana"}, []string{"Bo"}},
		{"Busy matches nothing", []string{"--status", "busy"}, []string{"No artists match"}, []string{"Ana", "Bo"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			app := &app{in: strings.NewReader(""), out: &out}
			defer app.close()

			root := newRootCommand(app)
			root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), configFileName), "--api", server.URL, "--theme", "light", "artists"}, tc.args...))
			require.NoError(t, root.ExecuteContext(context.Background()))

			for _, text := range tc.present {
				assert.Contains(t, out.String(), text)
			}
			for _, text := range tc.absent {
				assert.NotContains(t, out.String(), text)
			}
		})
	}
}

/*
TestRootCommand_Login greets the user by username and stores the session.
*/
func TestRootCommand_Login(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/auth/login", func(writer http.ResponseWriter, _ *http.Request) {
		http.SetCookie(writer, &http.Cookie{Name: constants.SessionCookieName, Value: "tok-1", Path: "/"})
		respond.OK(writer, map[string]any{"user": auth.User{ID: 7, Username: "painter"}})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	dir := t.TempDir()
	var out bytes.Buffer
	app := &app{in: strings.NewReader("hunter2\n"), out: &out}
	defer app.close()

	root := newRootCommand(app)
	root.SetArgs([]string{"--config", filepath.Join(dir, configFileName), "--api", server.URL, "--theme", "light", "login", "painter@copla.art"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Logged in as painter")
	token, err := localstore.Open(filepath.Join(dir, "state.yaml")).APIToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

/*
TestArtistsCommand_InvalidStatus rejects statuses outside open, busy and closed
before anything is fetched.
*/
func TestArtistsCommand_InvalidStatus(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		respond.OK(writer, []string{})
	}))
	defer server.Close()

	for _, status := range []string{"Open", "paused"} {
		t.Run("status="+status, func(t *testing.T) {
			var out bytes.Buffer
			app := &app{in: strings.NewReader(""), out: &out}
			defer app.close()

			root := newRootCommand(app)
			root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), configFileName), "--api", server.URL, "--theme", "light", "artists", "--status", status})
			err := root.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Equal(t, clienterr.Validation, clienterr.KindOf(err))
			assert.NotContains(t, out.String(), "No artists match")
		})
	}
	assert.Zero(t, requests.Load())
}

/*
TestApp_ReadPassword reads one line when stdin is not a terminal.
*/
func TestApp_ReadPassword(t *testing.T) {
	app := &app{in: strings.NewReader("hunter2\r\n"), out: &bytes.Buffer{}}

	password, err := app.readPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)

	app.in = strings.NewReader("")
	_, err = app.readPassword("Password: ")
	assert.Error(t, err)
}
