// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/copla/copla/internal/client/clienterr"
)

// Options configures a [Client].
type Options struct {
	ClientID    string
	RedirectURI string
	Scope       string

	HTTPClient     *http.Client
	HandleResolver string
	PLCDirectory   string

	States   StateStore
	Sessions SessionStore

	// RequestsPerSecond caps traffic per provider host.
	RequestsPerSecond float64

	Logger *slog.Logger
}

// Client runs the authorization flow and hands out sessions.
type Client struct {
	options  Options
	base     http.RoundTripper
	resolver *Resolver
	logger   *slog.Logger
}

// New validates options and fills in defaults.
func New(options Options) (*Client, error) {
	switch {
	case options.ClientID == "":
		return nil, clienterr.New(clienterr.Validation, "OAuth client id is required")
	case options.RedirectURI == "":
		return nil, clienterr.New(clienterr.Validation, "OAuth redirect URI is required")
	case options.States == nil || options.Sessions == nil:
		return nil, clienterr.New(clienterr.Validation, "OAuth state and session stores are required")
	}

	if options.Scope == "" {
		options.Scope = DefaultScope
	}
	if options.HandleResolver == "" {
		options.HandleResolver = DefaultHandleResolver
	}
	if options.PLCDirectory == "" {
		options.PLCDirectory = DefaultPLCDirectory
	}
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = 5
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	inner := http.DefaultTransport
	if options.HTTPClient != nil && options.HTTPClient.Transport != nil {
		inner = options.HTTPClient.Transport
	}
	base := &limitedTransport{base: inner, limiter: newHostLimiter(options.RequestsPerSecond, 5)}

	return &Client{
		options: options,
		base:    base,
		resolver: &Resolver{
			HTTPClient:     &http.Client{Transport: base, Timeout: 30 * time.Second},
			HandleResolver: options.HandleResolver,
			PLCDirectory:   options.PLCDirectory,
		},
		logger: options.Logger,
	}, nil
}

// Load fetches the client metadata published at origin and builds a client
// from it. Explicit options win over the document.
func Load(ctx context.Context, origin string, options Options) (*Client, error) {
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	metadata, err := FetchClientMetadata(ctx, httpClient, origin)
	if err != nil {
		return nil, err
	}

	options.ClientID = metadata.ClientID
	if options.Scope == "" {
		options.Scope = metadata.Scope
	}
	if options.RedirectURI == "" {
		options.RedirectURI = metadata.RedirectURIs[0]
	}
	return New(options)
}

// Resolver exposes the identity resolver used by the client.
func (c *Client) Resolver() *Resolver { return c.resolver }

func (c *Client) oauthConfig(authURL, tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.options.ClientID,
		RedirectURL: c.options.RedirectURI,
		Scopes:      strings.Fields(c.options.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (c *Client) dpopClient(key *dpopKey, nonces *nonceCache, tokens oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &dpopTransport{base: c.base, key: key, nonces: nonces, tokens: tokens},
		Timeout:   30 * time.Second,
	}
}

// # Authorization

/*
Authorize starts an authorization for handle and returns the URL to open.

Parameters:
  - handle: string (handle or DID, a leading '@' is ignored)

Returns:
  - string: The authorization URL
  - error: Validation on empty input, Network/NotFound on resolution failure
*/
func (c *Client) Authorize(ctx context.Context, handle string) (string, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return "", clienterr.New(clienterr.Validation, "Bluesky handle is required")
	}

	did, err := c.resolver.ResolveHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	pds, err := c.resolver.ResolvePDS(ctx, did)
	if err != nil {
		return "", err
	}
	server, err := c.resolver.AuthServer(ctx, pds)
	if err != nil {
		return "", err
	}

	key, err := newDPoPKey()
	if err != nil {
		return "", err
	}
	encodedKey, err := key.encode()
	if err != nil {
		return "", err
	}

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()
	config := c.oauthConfig(server.AuthorizationEndpoint, server.TokenEndpoint)

	var authURL string
	switch {
	case server.PushedAuthorizationRequestEndpoint != "":
		requestURI, err := c.pushAuthorization(ctx, key, server.PushedAuthorizationRequestEndpoint, state, verifier, handle)
		if err != nil {
			return "", err
		}
		authURL = server.AuthorizationEndpoint + "?" + url.Values{
			"client_id":   {c.options.ClientID},
			"request_uri": {requestURI},
		}.Encode()
	case server.RequirePushedAuthorizationRequests:
		return "", clienterr.New(clienterr.Validation, "Authorization server requires PAR but advertises no endpoint")
	default:
		authURL = config.AuthCodeURL(state,
			oauth2.S256ChallengeOption(verifier),
			oauth2.SetAuthURLParam("login_hint", handle),
		)
	}

	pending := Pending{
		Verifier:         verifier,
		DPoPKey:          encodedKey,
		Handle:           handle,
		DID:              did,
		PDS:              pds,
		Issuer:           strings.TrimRight(server.Issuer, "/"),
		AuthorizationURL: server.AuthorizationEndpoint,
		TokenURL:         server.TokenEndpoint,
		RevocationURL:    server.RevocationEndpoint,
		CreatedAt:        time.Now(),
	}
	if err := c.options.States.PutPending(ctx, state, pending); err != nil {
		return "", err
	}

	c.logger.Debug("bluesky_authorize_started", slog.String("did", did), slog.String("issuer", pending.Issuer))
	return authURL, nil
}

// pushAuthorization sends the authorization parameters to the PAR endpoint
// and returns the request_uri.
func (c *Client) pushAuthorization(ctx context.Context, key *dpopKey, endpoint, state, verifier, handle string) (string, error) {
	form := url.Values{
		"client_id":             {c.options.ClientID},
		"response_type":         {"code"},
		"redirect_uri":          {c.options.RedirectURI},
		"scope":                 {c.options.Scope},
		"state":                 {state},
		"code_challenge":        {oauth2.S256ChallengeFromVerifier(verifier)},
		"code_challenge_method": {"S256"},
		"login_hint":            {handle},
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", clienterr.Transport(err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.dpopClient(key, newNonceCache(), nil).Do(request)
	if err != nil {
		return "", clienterr.Transport(err)
	}
	defer response.Body.Close()

	var out struct {
		RequestURI string `json:"request_uri"`
	}
	if err := decodeResponse(response, &out); err != nil {
		return "", err
	}
	if out.RequestURI == "" {
		return "", clienterr.New(clienterr.Validation, "Authorization server returned no request_uri")
	}
	return out.RequestURI, nil
}

/*
Callback completes the authorization from the redirect query.

Parameters:
  - params: url.Values (code, state, iss or error, error_description)

Returns:
  - *Session: The established session, also saved to the session store
  - error: Validation for provider or state errors, Network on exchange failure
*/
func (c *Client) Callback(ctx context.Context, params url.Values) (*Session, error) {
	if failure := params.Get("error"); failure != "" {
		if description := params.Get("error_description"); description != "" {
			failure = description
		}
		return nil, clienterr.New(clienterr.Validation, "Authorization failed: %s", failure)
	}

	pending, err := c.options.States.TakePending(ctx, params.Get("state"))
	if err != nil {
		return nil, err
	}
	if pending == nil || time.Since(pending.CreatedAt) > PendingTTL {
		return nil, clienterr.New(clienterr.Validation, "Unknown or expired authorization state")
	}
	if issuer := strings.TrimRight(params.Get("iss"), "/"); issuer != "" && issuer != pending.Issuer {
		return nil, clienterr.New(clienterr.Validation, "Authorization server mismatch")
	}

	key, err := parseDPoPKey(pending.DPoPKey)
	if err != nil {
		return nil, err
	}
	nonces := newNonceCache()

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, c.dpopClient(key, nonces, nil))
	token, err := c.oauthConfig(pending.AuthorizationURL, pending.TokenURL).
		Exchange(exchangeCtx, params.Get("code"), oauth2.VerifierOption(pending.Verifier))
	if err != nil {
		return nil, tokenError("Token exchange failed", err)
	}

	subject, _ := token.Extra("sub").(string)
	if subject == "" || subject != pending.DID {
		return nil, clienterr.New(clienterr.Validation, "Token subject does not match the requested account")
	}

	data := &SessionData{
		DID:              subject,
		Handle:           pending.Handle,
		PDS:              pending.PDS,
		Issuer:           pending.Issuer,
		AuthorizationURL: pending.AuthorizationURL,
		TokenURL:         pending.TokenURL,
		RevocationURL:    pending.RevocationURL,
		AccessToken:      token.AccessToken,
		RefreshToken:     token.RefreshToken,
		Expiry:           token.Expiry,
		DPoPKey:          pending.DPoPKey,
	}
	if err := c.options.Sessions.SaveSession(ctx, data); err != nil {
		return nil, err
	}

	c.logger.Info("bluesky_session_created", slog.String("did", subject))
	return c.newSession(data, key, nonces, c.options.Sessions), nil
}

// tokenError classifies an oauth2 token endpoint failure.
func tokenError(prefix string, err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) && retrieve.Response != nil {
		detail := retrieve.ErrorDescription
		if detail == "" {
			detail = retrieve.ErrorCode
		}
		return clienterr.FromStatus(retrieve.Response.StatusCode, prefix+": "+detail)
	}

	var classified *clienterr.Error
	if errors.As(err, &classified) {
		return classified
	}
	return &clienterr.Error{Kind: clienterr.Network, Message: prefix + ": " + err.Error(), Cause: err}
}

// # Sessions

// Restore returns the stored session, or nil when there is none.
func (c *Client) Restore(ctx context.Context) (*Session, error) {
	data, err := c.options.Sessions.LoadSession(ctx)
	if err != nil || data == nil {
		return nil, err
	}

	key, err := parseDPoPKey(data.DPoPKey)
	if err != nil {
		return nil, err
	}
	return c.newSession(data, key, newNonceCache(), c.options.Sessions), nil
}

// Resume rebuilds a session from an [Session.Export] string. The result is
// not written to the local session store.
func (c *Client) Resume(ctx context.Context, sessionData string) (*Session, error) {
	var data SessionData
	if err := json.Unmarshal([]byte(sessionData), &data); err != nil {
		return nil, clienterr.New(clienterr.Validation, "Stored session is unreadable")
	}
	if data.DID == "" || data.PDS == "" || data.AccessToken == "" {
		return nil, clienterr.New(clienterr.Validation, "Stored session is incomplete")
	}

	key, err := parseDPoPKey(data.DPoPKey)
	if err != nil {
		return nil, clienterr.New(clienterr.Validation, "Stored session key is unreadable")
	}
	return c.newSession(&data, key, newNonceCache(), nil), nil
}

// SignOut revokes the stored session when the server supports it and removes
// it locally. Revocation failures are logged, not returned.
func (c *Client) SignOut(ctx context.Context) error {
	data, err := c.options.Sessions.LoadSession(ctx)
	if err != nil {
		return err
	}

	if data != nil && data.RevocationURL != "" {
		if err := c.revoke(ctx, data); err != nil {
			c.logger.Warn("bluesky_revoke_failed", slog.String("did", data.DID), slog.Any("error", err))
		}
	}

	return c.options.Sessions.DeleteSession(ctx)
}

func (c *Client) revoke(ctx context.Context, data *SessionData) error {
	key, err := parseDPoPKey(data.DPoPKey)
	if err != nil {
		return err
	}

	token := data.RefreshToken
	if token == "" {
		token = data.AccessToken
	}
	form := url.Values{"token": {token}, "client_id": {c.options.ClientID}}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, data.RevocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.dpopClient(key, newNonceCache(), nil).Do(request)
	if err != nil {
		return clienterr.Transport(err)
	}
	defer response.Body.Close()
	return decodeResponse(response, nil)
}
