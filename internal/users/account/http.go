// Copyright (c) 2026 CoPla. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/pkg/pagination"
)

const (
	maxBioLength  = 1000
	maxPathLength = 512
)

// Handler implements the HTTP layer for user profiles.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes mounts the profile endpoints on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listUsers)
	router.Get("/me", handler.getMe)
	router.Get("/{username}", handler.getProfile)
	router.Patch("/{username}", handler.updateProfile)
}

// # Endpoints

/*
GET /api/users/me.

Description: Reports who the caller is. Never fails for anonymous callers.

Response:
  - 200: Me
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.accountService.Me(requestutil.Claims(request)))
}

/*
GET /api/users.

Request:
  - query: page, limit

Response:
  - 200: []User with pagination meta
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/users/{username}.

Response:
  - 200: Profile
  - 404: ErrNotFound
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.GetProfile(request.Context(), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

type updateProfileRequest struct {
	Bio            *string `json:"bio"`
	ProfilePicPath *string `json:"profile_pic_path"`
}

/*
PATCH /api/users/{username}.

Request:
  - body: updateProfileRequest (partial)

Response:
  - 200: User
  - 400: Validation failures
  - 403: Not the owner
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.Bio != nil {
		validator.MaxLen("bio", *input.Bio, maxBioLength)
	}
	if input.ProfilePicPath != nil {
		validator.MaxLen("profile_pic_path", *input.ProfilePicPath, maxPathLength)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), claims.Username, UpdateProfileInput{
		Bio:            input.Bio,
		ProfilePicPath: input.ProfilePicPath,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
