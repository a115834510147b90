// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/middleware"
	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the registration and session endpoints.
type Handler struct {
	authService  *Service
	secureCookie bool
}

// NewHandler constructs a new [Handler]. secureCookie marks the session
// cookie Secure, which production deployments behind TLS must set.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{authService: service, secureCookie: secureCookie}
}

// RegisterRoutes mounts the endpoints on the /api router.
//
// # Endpoints
//   - POST /register     : Creates a new account.
//   - POST /auth/login   : Authenticates and sets the session cookie.
//   - POST /auth/logout  : Revokes the session and clears the cookie.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/auth/login", handler.login)
	router.Post("/auth/logout", handler.logout)
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsArtist bool   `json:"is_artist"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new account.

POST /api/register

Response:
  - 201: User: Created account
  - 400: Validation failure
  - 409: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Name,
		Email:    input.Email,
		Password: input.Password,
		IsArtist: input.IsArtist,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and sets the session cookie.

POST /api/auth/login

Response:
  - 200: {user}: The logged in account
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	middleware.SetSessionCookie(writer, session.Token, handler.secureCookie)
	respond.OK(writer, map[string]any{
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}

/*
Logout terminates the current session. Anonymous calls succeed too.

POST /api/auth/logout

Response:
  - 204: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		if err := handler.authService.Logout(request.Context(), claims.SessionID()); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	middleware.ClearSessionCookie(writer, handler.secureCookie)
	respond.NoContent(writer)
}
