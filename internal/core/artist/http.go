// Copyright (c) 2026 CoPla. All rights reserved.

package artist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the directory and artist self-service routes on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/artists", handler.listArtists)

	router.Put("/{username}/commission-status", handler.updateCommissionStatus)
	router.Post("/{username}/tags/add", handler.addTag)
	router.Delete("/{username}/tags/{tagName}", handler.removeTag)
}

func (handler *Handler) listArtists(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Verified:           requestutil.OptionalBool(request, "verified"),
		OpenForCommissions: requestutil.OptionalBool(request, "open_for_commissions"),
	}

	artists, err := handler.service.ListArtists(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, artists)
}

type commissionStatusRequest struct {
	IsOpen *bool `json:"is_open"`
}

func (handler *Handler) updateCommissionStatus(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commissionStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.IsOpen == nil {
		respond.Error(writer, request, validate.RequiredError(FieldIsOpen, "Missing 'is_open' field in request body"))
		return
	}

	status, err := handler.service.SetCommissionStatus(request.Context(), claims.Username, *input.IsOpen)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, status)
}

type addTagRequest struct {
	TagName string `json:"tag_name"`
}

func (handler *Handler) addTag(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addTagRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.service.AddTag(request.Context(), claims.Username, input.TagName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, message)
}

func (handler *Handler) removeTag(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.service.RemoveTag(request.Context(), claims.Username, requestutil.Param(request, "tagName"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, message)
}
