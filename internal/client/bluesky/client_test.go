// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/copla/copla/internal/client/bluesky"
	"github.com/copla/copla/internal/client/clienterr"
)

// # Fakes

type memoryStore struct {
	mu       sync.Mutex
	pending  map[string]bluesky.Pending
	session  *bluesky.SessionData
	saves    int
	deletion bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{pending: make(map[string]bluesky.Pending)}
}

func (m *memoryStore) PutPending(_ context.Context, state string, pending bluesky.Pending) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[state] = pending
	return nil
}

func (m *memoryStore) TakePending(_ context.Context, state string) (*bluesky.Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[state]
	if !ok {
		return nil, nil
	}
	delete(m.pending, state)
	return &pending, nil
}

func (m *memoryStore) LoadSession(context.Context) (*bluesky.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

func (m *memoryStore) SaveSession(_ context.Context, data *bluesky.SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *data
	m.session = &copied
	m.saves++
	return nil
}

func (m *memoryStore) DeleteSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.deletion = true
	return nil
}

// provider fakes a PDS, its authorization server and the identity services
// on one host.
type provider struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	challenge string
	parForm   url.Values
	revoked   string
	refreshes int
}

const nonce = "nonce-1"

func newProvider(t *testing.T) *provider {
	p := &provider{t: t}
	p.server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.server.Close)
	return p
}

func (p *provider) writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}

// checkProof verifies the DPoP header and reports whether it carried the nonce.
func (p *provider) checkProof(request *http.Request, accessToken string) bool {
	raw := request.Header.Get("DPoP")
	if !assert.NotEmpty(p.t, raw, "missing DPoP proof on %s", request.URL.Path) {
		return false
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		encoded, err := json.Marshal(token.Header["jwk"])
		if err != nil {
			return nil, err
		}
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(encoded); err != nil {
			return nil, err
		}
		return jwk.Key, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	if !assert.NoError(p.t, err) {
		return false
	}
	assert.Equal(p.t, "dpop+jwt", token.Header["typ"])

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(p.t, request.Method, claims["htm"])
	assert.Equal(p.t, p.server.URL+request.URL.Path, claims["htu"])
	assert.NotEmpty(p.t, claims["jti"])

	if accessToken != "" {
		assert.Equal(p.t, "DPoP "+accessToken, request.Header.Get("Authorization"))
		assert.NotEmpty(p.t, claims["ath"])
	}
	return claims["nonce"] == nonce
}

func (p *provider) serve(writer http.ResponseWriter, request *http.Request) {
	base := p.server.URL

	switch request.URL.Path {
	case "/xrpc/com.atproto.identity.resolveHandle":
		if request.URL.Query().Get("handle") != "ana.bsky.social" {
			p.writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "InvalidRequest", "message": "Unable to resolve handle"})
			return
		}
		p.writeJSON(writer, http.StatusOK, map[string]string{"did": "did:plc:ana"})

	case "/did:plc:ana":
		p.writeJSON(writer, http.StatusOK, map[string]any{
			"id": "did:plc:ana",
			"service": []map[string]string{
				{"id": "#atproto_pds", "type": "AtprotoPersonalDataServer", "serviceEndpoint": base},
			},
		})

	case "/.well-known/oauth-protected-resource":
		p.writeJSON(writer, http.StatusOK, map[string]any{"authorization_servers": []string{base}})

	case "/.well-known/oauth-authorization-server":
		p.writeJSON(writer, http.StatusOK, map[string]any{
			"issuer":                                base,
			"authorization_endpoint":                base + "/oauth/authorize",
			"token_endpoint":                        base + "/oauth/token",
			"pushed_authorization_request_endpoint": base + "/oauth/par",
			"revocation_endpoint":                   base + "/oauth/revoke",
		})

	case "/oauth/par":
		if !p.checkProof(request, "") {
			writer.Header().Set("DPoP-Nonce", nonce)
			p.writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "use_dpop_nonce"})
			return
		}
		_ = request.ParseForm()
		p.mu.Lock()
		p.parForm = request.PostForm
		p.challenge = request.PostForm.Get("code_challenge")
		p.mu.Unlock()
		p.writeJSON(writer, http.StatusCreated, map[string]any{"request_uri": "urn:ietf:params:oauth:request_uri:1", "expires_in": 60})

	case "/oauth/token":
		if !p.checkProof(request, "") {
			writer.Header().Set("DPoP-Nonce", nonce)
			p.writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "use_dpop_nonce"})
			return
		}
		_ = request.ParseForm()
		p.token(writer, request.PostForm)

	case "/oauth/revoke":
		p.checkProof(request, "")
		_ = request.ParseForm()
		p.mu.Lock()
		p.revoked = request.PostForm.Get("token")
		p.mu.Unlock()
		writer.WriteHeader(http.StatusOK)

	case "/xrpc/app.bsky.actor.getProfile":
		if !p.checkProof(request, strings.TrimPrefix(request.Header.Get("Authorization"), "DPoP ")) {
			writer.Header().Set("DPoP-Nonce", nonce)
			writer.Header().Set("WWW-Authenticate", `DPoP error="use_dpop_nonce"`)
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.writeJSON(writer, http.StatusOK, bluesky.Profile{
			DID: "did:plc:ana", Handle: "ana.bsky.social", DisplayName: "Ana", Description: "paints",
		})

	case "/xrpc/app.bsky.graph.getFollows":
		if !p.checkProof(request, strings.TrimPrefix(request.Header.Get("Authorization"), "DPoP ")) {
			writer.Header().Set("DPoP-Nonce", nonce)
			writer.Header().Set("WWW-Authenticate", `DPoP error="use_dpop_nonce"`)
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(p.t, "100", request.URL.Query().Get("limit"))
		p.writeJSON(writer, http.StatusOK, map[string]any{"follows": []map[string]string{
			{"did": "did:plc:bo", "handle": "bo.bsky.social", "displayName": "Bo"},
			{"did": "did:plc:cy", "handle": "cy.bsky.social"},
		}})

	default:
		http.NotFound(writer, request)
	}
}

func (p *provider) token(writer http.ResponseWriter, form url.Values) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch form.Get("grant_type") {
	case "authorization_code":
		if form.Get("code") != "code-1" || oauth2.S256ChallengeFromVerifier(form.Get("code_verifier")) != p.challenge {
			p.writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "bad code"})
			return
		}
		p.writeJSON(writer, http.StatusOK, map[string]any{
			"access_token": "at-1", "refresh_token": "rt-1", "token_type": "DPoP",
			"expires_in": 3600, "sub": "did:plc:ana", "scope": "atproto transition:generic",
		})
	case "refresh_token":
		assert.Equal(p.t, "rt-1", form.Get("refresh_token"))
		p.refreshes++
		p.writeJSON(writer, http.StatusOK, map[string]any{
			"access_token": "at-2", "refresh_token": "rt-2", "token_type": "DPoP",
			"expires_in": 3600, "sub": "did:plc:ana",
		})
	default:
		p.writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func newClient(t *testing.T, p *provider, store *memoryStore) *bluesky.Client {
	t.Helper()
	client, err := bluesky.New(bluesky.Options{
		ClientID:          "https://copla.art/client-metadata.json",
		RedirectURI:       "http://127.0.0.1:9999/bluesky/callback",
		HTTPClient:        p.server.Client(),
		HandleResolver:    p.server.URL,
		PLCDirectory:      p.server.URL,
		States:            store,
		Sessions:          store,
		RequestsPerSecond: 100,
	})
	require.NoError(t, err)
	return client
}

// authorize runs Authorize and returns the state the provider would echo.
func authorize(t *testing.T, p *provider, client *bluesky.Client, store *memoryStore) string {
	t.Helper()

	authURL, err := client.Authorize(context.Background(), "@Ana.bsky.social")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	assert.Equal(t, "urn:ietf:params:oauth:request_uri:1", parsed.Query().Get("request_uri"))

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, "S256", p.parForm.Get("code_challenge_method"))
	assert.Equal(t, "ana.bsky.social", p.parForm.Get("login_hint"))
	return p.parForm.Get("state")
}

// # Tests

/*
TestClient_FullFlow authorizes, reads, exports, resumes and signs out.
*/
func TestClient_FullFlow(t *testing.T) {
	p := newProvider(t)
	store := newMemoryStore()
	client := newClient(t, p, store)
	ctx := context.Background()

	state := authorize(t, p, client, store)

	session, err := client.Callback(ctx, url.Values{"state": {state}, "code": {"code-1"}, "iss": {p.server.URL}})
	require.NoError(t, err)
	assert.Equal(t, "did:plc:ana", session.DID())
	assert.Equal(t, "ana.bsky.social", session.Handle())
	require.NotNil(t, store.session)
	assert.Equal(t, "at-1", store.session.AccessToken)

	profile, err := session.GetProfile(ctx, session.DID())
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.DisplayName)

	follows, err := session.GetFollows(ctx, session.DID(), 0)
	require.NoError(t, err)
	assert.Equal(t, []bluesky.Follow{
		{DID: "did:plc:bo", Handle: "bo.bsky.social", DisplayName: "Bo"},
		{DID: "did:plc:cy", Handle: "cy.bsky.social", DisplayName: "cy.bsky.social"},
	}, follows)

	exported, err := session.Export()
	require.NoError(t, err)
	resumed, err := client.Resume(ctx, exported)
	require.NoError(t, err)
	_, err = resumed.GetProfile(ctx, resumed.DID())
	require.NoError(t, err)

	restored, err := client.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "did:plc:ana", restored.DID())

	require.NoError(t, client.SignOut(ctx))
	assert.True(t, store.deletion)
	assert.Nil(t, store.session)
	assert.Equal(t, "rt-1", p.revoked)

	restored, err = client.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

/*
TestClient_CallbackRejects covers provider errors, unknown state and issuer mix-up.
*/
func TestClient_CallbackRejects(t *testing.T) {
	p := newProvider(t)
	store := newMemoryStore()
	client := newClient(t, p, store)
	ctx := context.Background()

	_, err := client.Callback(ctx, url.Values{"error": {"access_denied"}, "error_description": {"User declined"}})
	require.ErrorIs(t, err, clienterr.Validation)
	assert.Equal(t, "Authorization failed: User declined", err.Error())

	_, err = client.Callback(ctx, url.Values{"state": {"nope"}, "code": {"code-1"}})
	require.ErrorIs(t, err, clienterr.Validation)

	state := authorize(t, p, client, store)
	_, err = client.Callback(ctx, url.Values{"state": {state}, "code": {"code-1"}, "iss": {"https://evil.example"}})
	require.ErrorIs(t, err, clienterr.Validation)
	assert.Equal(t, "Authorization server mismatch", err.Error())

	state = authorize(t, p, client, store)
	_, err = client.Callback(ctx, url.Values{"state": {state}, "code": {"wrong"}})
	require.ErrorIs(t, err, clienterr.Validation)
	assert.Contains(t, err.Error(), "bad code")
}

/*
TestClient_RefreshesExpiredResumedSession refreshes through the DPoP client.
*/
func TestClient_RefreshesExpiredResumedSession(t *testing.T) {
	p := newProvider(t)
	store := newMemoryStore()
	client := newClient(t, p, store)
	ctx := context.Background()

	state := authorize(t, p, client, store)
	session, err := client.Callback(ctx, url.Values{"state": {state}, "code": {"code-1"}})
	require.NoError(t, err)

	exported, err := session.Export()
	require.NoError(t, err)

	var data bluesky.SessionData
	require.NoError(t, json.Unmarshal([]byte(exported), &data))
	data.Expiry = time.Now().Add(-time.Hour)
	expired, err := json.Marshal(data)
	require.NoError(t, err)

	resumed, err := client.Resume(ctx, string(expired))
	require.NoError(t, err)
	_, err = resumed.GetProfile(ctx, "did:plc:ana")
	require.NoError(t, err)

	exported, err = resumed.Export()
	require.NoError(t, err)
	assert.Contains(t, exported, `"access_token":"at-2"`)
	assert.Equal(t, 1, p.refreshes)
}

/*
TestClient_Authorize validates and classifies resolution failures.
*/
func TestClient_Authorize(t *testing.T) {
	p := newProvider(t)
	client := newClient(t, p, newMemoryStore())

	_, err := client.Authorize(context.Background(), "  @ ")
	assert.ErrorIs(t, err, clienterr.Validation)

	_, err = client.Authorize(context.Background(), "nobody.bsky.social")
	assert.ErrorIs(t, err, clienterr.Validation)
	assert.Equal(t, "Unable to resolve handle", clienterr.Message(err))

	_, err = client.Resume(context.Background(), "{")
	assert.ErrorIs(t, err, clienterr.Validation)
}

/*
TestFetchClientMetadata requires the fields the flow depends on.
*/
func TestFetchClientMetadata(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"complete", `{"client_id":"https://copla.art/client-metadata.json","redirect_uris":["https://copla.art/bluesky/callback"],"scope":"atproto"}`, ""},
		{"missing_client_id", `{"redirect_uris":["x"],"scope":"atproto"}`, "Client metadata is missing client_id"},
		{"missing_redirects", `{"client_id":"x","scope":"atproto"}`, "Client metadata is missing redirect_uris"},
		{"missing_scope", `{"client_id":"x","redirect_uris":["x"]}`, "Client metadata is missing scope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/client-metadata.json", request.URL.Path)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			metadata, err := bluesky.FetchClientMetadata(context.Background(), server.Client(), server.URL+"/")
			if tt.wantErr != "" {
				assert.ErrorIs(t, err, clienterr.Validation)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "atproto", metadata.Scope)
		})
	}

	_, err := bluesky.FetchClientMetadata(context.Background(), http.DefaultClient, "http://127.0.0.1:1")
	assert.True(t, errors.Is(err, clienterr.Network))
}
