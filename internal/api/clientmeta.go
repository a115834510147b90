// Copyright (c) 2026 CoPla. All rights reserved.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/copla/copla/internal/platform/config"
)

// ClientMetadata is the OAuth client document the provider fetches to learn
// who is asking for authorization. It is served bare, without the API envelope.
type ClientMetadata struct {
	ClientID                string   `json:"client_id"`
	ClientName              string   `json:"client_name"`
	ClientURI               string   `json:"client_uri"`
	RedirectURIs            []string `json:"redirect_uris"`
	Scope                   string   `json:"scope"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	ApplicationType         string   `json:"application_type"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	DPoPBoundAccessTokens   bool     `json:"dpop_bound_access_tokens"`
}

// NewClientMetadataHandler serves GET /client-metadata.json.
func NewClientMetadataHandler(cfg *config.Config) http.HandlerFunc {
	document := ClientMetadata{
		ClientID:                cfg.ClientID(),
		ClientName:              cfg.OAuthClientName,
		ClientURI:               cfg.PublicOrigin,
		RedirectURIs:            cfg.OAuthRedirectURIs,
		Scope:                   cfg.OAuthScope,
		GrantTypes:              []string{"authorization_code", "refresh_token"},
		ResponseTypes:           []string{"code"},
		ApplicationType:         "web",
		TokenEndpointAuthMethod: "none",
		DPoPBoundAccessTokens:   true,
	}
	body, _ := json.Marshal(document)

	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = writer.Write(body)
	}
}
