// Copyright (c) 2026 CoPla. All rights reserved.

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copla/copla/internal/platform/middleware"
	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/names", handler.listNames)
	router.Get("/all", handler.listTags)

	// Admin only
	router.With(middleware.RequireRole(sec.RoleAdmin)).Post("/", handler.createTag)
}

func (handler *Handler) listNames(writer http.ResponseWriter, request *http.Request) {
	names, err := handler.service.ListNames(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, names)
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context(), request.URL.Query().Get("category"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

type createTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var input createTagRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag := &Tag{Name: input.Name, Description: input.Description, Category: input.Category}
	if err := handler.service.CreateTag(request.Context(), tag); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tag)
}
