// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/oauth2"

	"github.com/copla/copla/internal/client/clienterr"
)

// Session is an authenticated handle on the account's data server.
type Session struct {
	mu    sync.Mutex
	data  SessionData
	store SessionStore

	tokens oauth2.TokenSource
	http   *http.Client
	logger *slog.Logger
}

func (c *Client) newSession(data *SessionData, key *dpopKey, nonces *nonceCache, store SessionStore) *Session {
	token := &oauth2.Token{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Expiry:       data.Expiry,
		TokenType:    "DPoP",
	}

	// Refreshes run outside any request context so a cancelled call cannot
	// poison the cached source.
	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.dpopClient(key, nonces, nil))
	tokens := oauth2.ReuseTokenSource(token, c.oauthConfig(data.AuthorizationURL, data.TokenURL).TokenSource(refreshCtx, token))

	return &Session{
		data:   *data,
		store:  store,
		tokens: tokens,
		http:   c.dpopClient(key, nonces, tokens),
		logger: c.logger,
	}
}

// DID is the account the session belongs to.
func (s *Session) DID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DID
}

// Handle is the handle the session was started for.
func (s *Session) Handle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Handle
}

// Export serializes the session for storage by the backend.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(s.data)
	if err != nil {
		return "", fmt.Errorf("bluesky_session_export_failed: %w", err)
	}
	return string(raw), nil
}

// # XRPC Reads

// GetProfile reads app.bsky.actor.getProfile for actor.
func (s *Session) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	var profile Profile
	if err := s.query(ctx, "app.bsky.actor.getProfile", url.Values{"actor": {actor}}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetFollows reads one page of app.bsky.graph.getFollows for actor.
func (s *Session) GetFollows(ctx context.Context, actor string, limit int) ([]Follow, error) {
	if limit <= 0 {
		limit = DefaultFollowsLimit
	}

	var out struct {
		Follows []Follow `json:"follows"`
	}
	params := url.Values{"actor": {actor}, "limit": {strconv.Itoa(limit)}}
	if err := s.query(ctx, "app.bsky.graph.getFollows", params, &out); err != nil {
		return nil, err
	}

	follows := make([]Follow, 0, len(out.Follows))
	for _, follow := range out.Follows {
		if follow.DisplayName == "" {
			follow.DisplayName = follow.Handle
		}
		follows = append(follows, follow)
	}
	return follows, nil
}

func (s *Session) query(ctx context.Context, method string, params url.Values, out any) error {
	s.mu.Lock()
	target := s.data.PDS + "/xrpc/" + method + "?" + params.Encode()
	s.mu.Unlock()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return clienterr.Transport(err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := s.http.Do(request)
	if err != nil {
		return tokenError("Bluesky request failed", err)
	}
	defer response.Body.Close()

	if err := decodeResponse(response, out); err != nil {
		return err
	}

	s.persistRefresh(ctx)
	return nil
}

// persistRefresh saves rotated tokens back to the store.
func (s *Session) persistRefresh(ctx context.Context) {
	token, err := s.tokens.Token()
	if err != nil {
		return
	}

	s.mu.Lock()
	if token.AccessToken == s.data.AccessToken {
		s.mu.Unlock()
		return
	}
	s.data.AccessToken = token.AccessToken
	s.data.RefreshToken = token.RefreshToken
	s.data.Expiry = token.Expiry
	snapshot := s.data
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.SaveSession(ctx, &snapshot); err != nil {
		s.logger.Warn("bluesky_session_persist_failed", slog.Any("error", err))
	}
}
