// Copyright (c) 2026 CoPla. All rights reserved.

package following

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
)

// Handler implements the HTTP layer for follow edges.
type Handler struct {
	service *Service
}

// NewHandler constructs a new following [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the following routes on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{username}/following", handler.list)
	router.Post("/{username}/sync-bluesky-following", handler.sync)
}

/*
GET /api/users/{username}/following.

Request:
  - query: open_only (bool)

Response:
  - 200: []Edge
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	openOnly := requestutil.OptionalBool(request, "open_only")
	edges, err := handler.service.List(request.Context(), claims.Username, openOnly != nil && *openOnly)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, edges)
}

type syncRequest struct {
	Following []Account `json:"following"`
}

/*
POST /api/users/{username}/sync-bluesky-following.

Request:
  - body: {following: [{handle, did, display_name}]}

Response:
  - 200: SyncResult
*/
func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input syncRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Sync(request.Context(), claims.Username, input.Following)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
