// Copyright (c) 2026 CoPla. All rights reserved.

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
)

// Handler implements the HTTP layer for social links.
type Handler struct {
	service *Service
}

// NewHandler constructs a new profile [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the social link routes on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/link-bluesky", handler.linkBluesky)

	router.Post("/{username}/social/bluesky", handler.addBluesky)
	router.Delete("/{username}/social/{platform}/{account}", handler.unlink)
	router.Get("/{username}/bluesky-session", handler.blueskySession)
}

type addBlueskyRequest struct {
	Username string `json:"username"`
}

type addBlueskyResponse struct {
	Message string   `json:"message"`
	Profile *Profile `json:"profile"`
}

/*
POST /api/users/{username}/social/bluesky.

Description: Records an unverified Bluesky handle on the caller's profile.

Response:
  - 201: addBlueskyResponse
  - 403: Not the owner
  - 409: Already linked
*/
func (handler *Handler) addBluesky(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addBlueskyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.AddBluesky(request.Context(), claims.Username, input.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, addBlueskyResponse{Message: "Bluesky account added successfully", Profile: profile})
}

type linkBlueskyRequest struct {
	DID         string `json:"bluesky_did"`
	Handle      string `json:"bluesky_handle"`
	DisplayName string `json:"bluesky_display_name"`
	SessionData string `json:"session_data"`
}

/*
POST /api/users/link-bluesky.

Description: Stores a provider-verified link for the authenticated caller.

Response:
  - 200: {message}
  - 401: Not authenticated
*/
func (handler *Handler) linkBluesky(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input linkBlueskyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.LinkVerified(request.Context(), claims.UserID, VerifiedLink{
		DID:         input.DID,
		Handle:      input.Handle,
		DisplayName: input.DisplayName,
		SessionData: input.SessionData,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Bluesky account linked successfully")
}

/*
GET /api/users/{username}/bluesky-session.

Response:
  - 200: StoredSession
  - 404: No verified or sync-capable link
*/
func (handler *Handler) blueskySession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.BlueskySession(request.Context(), claims.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

/*
DELETE /api/users/{username}/social/{platform}/{account}.

Response:
  - 200: {message}
  - 404: Social account not found
*/
func (handler *Handler) unlink(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Unlink(request.Context(), claims.Username,
		requestutil.Param(request, "platform"), requestutil.Param(request, "account"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Social account unlinked successfully")
}
