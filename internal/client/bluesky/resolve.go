// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/copla/copla/internal/client/clienterr"
)

// Resolver walks handle → DID → PDS → authorization server.
type Resolver struct {
	HTTPClient     *http.Client
	HandleResolver string
	PLCDirectory   string
}

// NormalizeHandle trims a leading '@' and lowercases.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ResolveHandle returns the DID of handle. A DID is returned unchanged.
func (r *Resolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = NormalizeHandle(handle)
	if strings.HasPrefix(handle, "did:") {
		return handle, nil
	}

	target := strings.TrimRight(r.HandleResolver, "/") +
		"/xrpc/com.atproto.identity.resolveHandle?" + url.Values{"handle": {handle}}.Encode()

	var out struct {
		DID string `json:"did"`
	}
	if err := getJSON(ctx, r.HTTPClient, target, &out); err != nil {
		return "", err
	}
	if out.DID == "" {
		return "", clienterr.New(clienterr.NotFound, "Handle %s did not resolve", handle)
	}
	return out.DID, nil
}

type didDocument struct {
	ID          string   `json:"id"`
	AlsoKnownAs []string `json:"alsoKnownAs"`
	Service     []struct {
		ID              string `json:"id"`
		Type            string `json:"type"`
		ServiceEndpoint string `json:"serviceEndpoint"`
	} `json:"service"`
}

// ResolvePDS returns the personal data server URL from the DID document.
// did:plc documents come from the PLC directory, did:web from the host.
func (r *Resolver) ResolvePDS(ctx context.Context, did string) (string, error) {
	var target string
	switch {
	case strings.HasPrefix(did, "did:plc:"):
		target = strings.TrimRight(r.PLCDirectory, "/") + "/" + did
	case strings.HasPrefix(did, "did:web:"):
		target = "https://" + strings.TrimPrefix(did, "did:web:") + "/.well-known/did.json"
	default:
		return "", clienterr.New(clienterr.Validation, "Unsupported DID method: %s", did)
	}

	var document didDocument
	if err := getJSON(ctx, r.HTTPClient, target, &document); err != nil {
		return "", err
	}

	for _, service := range document.Service {
		if strings.HasSuffix(service.ID, "#atproto_pds") && service.Type == "AtprotoPersonalDataServer" {
			return strings.TrimRight(service.ServiceEndpoint, "/"), nil
		}
	}
	return "", clienterr.New(clienterr.NotFound, "No data server listed for %s", did)
}

// AuthServer returns the metadata of the authorization server protecting pds.
func (r *Resolver) AuthServer(ctx context.Context, pds string) (*AuthServerMetadata, error) {
	var resource protectedResource
	if err := getJSON(ctx, r.HTTPClient, pds+"/.well-known/oauth-protected-resource", &resource); err != nil {
		return nil, err
	}
	if len(resource.AuthorizationServers) == 0 {
		return nil, &clienterr.Error{Kind: clienterr.NotFound, Message: "Data server advertises no authorization server", Cause: errNoAuthServer}
	}

	issuer := strings.TrimRight(resource.AuthorizationServers[0], "/")

	var metadata AuthServerMetadata
	if err := getJSON(ctx, r.HTTPClient, issuer+"/.well-known/oauth-authorization-server", &metadata); err != nil {
		return nil, err
	}
	if strings.TrimRight(metadata.Issuer, "/") != issuer {
		return nil, clienterr.New(clienterr.Validation, "Authorization server issuer mismatch")
	}
	if metadata.AuthorizationEndpoint == "" || metadata.TokenEndpoint == "" {
		return nil, clienterr.New(clienterr.Validation, "Authorization server metadata is incomplete")
	}
	return &metadata, nil
}
