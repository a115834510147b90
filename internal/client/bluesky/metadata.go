// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/copla/copla/internal/client/clienterr"
)

// ClientMetadata is the published OAuth client document.
type ClientMetadata struct {
	ClientID                string   `json:"client_id"`
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	Scope                   string   `json:"scope"`
	GrantTypes              []string `json:"grant_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	DPoPBoundAccessTokens   bool     `json:"dpop_bound_access_tokens"`
}

// AuthServerMetadata is the subset of RFC 8414 metadata the flow uses.
type AuthServerMetadata struct {
	Issuer                             string   `json:"issuer"`
	AuthorizationEndpoint              string   `json:"authorization_endpoint"`
	TokenEndpoint                      string   `json:"token_endpoint"`
	PushedAuthorizationRequestEndpoint string   `json:"pushed_authorization_request_endpoint"`
	RequirePushedAuthorizationRequests bool     `json:"require_pushed_authorization_requests"`
	RevocationEndpoint                 string   `json:"revocation_endpoint"`
	DPoPSigningAlgValuesSupported      []string `json:"dpop_signing_alg_values_supported"`
}

type protectedResource struct {
	AuthorizationServers []string `json:"authorization_servers"`
}

/*
FetchClientMetadata loads {origin}/client-metadata.json.

Returns:
  - *ClientMetadata: The document with client_id, redirect_uris and scope present
  - error: Network on transport failure, Validation when a field is missing
*/
func FetchClientMetadata(ctx context.Context, httpClient *http.Client, origin string) (*ClientMetadata, error) {
	var metadata ClientMetadata
	if err := getJSON(ctx, httpClient, strings.TrimRight(origin, "/")+"/client-metadata.json", &metadata); err != nil {
		return nil, err
	}

	switch {
	case metadata.ClientID == "":
		return nil, clienterr.New(clienterr.Validation, "Client metadata is missing client_id")
	case len(metadata.RedirectURIs) == 0:
		return nil, clienterr.New(clienterr.Validation, "Client metadata is missing redirect_uris")
	case metadata.Scope == "":
		return nil, clienterr.New(clienterr.Validation, "Client metadata is missing scope")
	}

	return &metadata, nil
}

// getJSON decodes a 2xx JSON response into out.
func getJSON(ctx context.Context, httpClient *http.Client, target string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return clienterr.Transport(err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := httpClient.Do(request)
	if err != nil {
		return clienterr.Transport(err)
	}
	defer response.Body.Close()

	return decodeResponse(response, out)
}

// xrpcError is the error body of both XRPC and OAuth endpoints.
type xrpcError struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func decodeResponse(response *http.Response, out any) error {
	body, err := io.ReadAll(io.LimitReader(response.Body, 4<<20))
	if err != nil {
		return clienterr.Transport(err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var failure xrpcError
		_ = json.Unmarshal(body, &failure)

		message := failure.Message
		if message == "" {
			message = failure.ErrorDescription
		}
		if message == "" {
			message = failure.Error
		}
		return clienterr.FromStatus(response.StatusCode, message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return clienterr.Transport(fmt.Errorf("decode %s: %w", response.Request.URL.Path, err))
	}
	return nil
}

var errNoAuthServer = errors.New("no authorization server advertised")
