// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmoretti/tasknest/internal/platform/middleware"
	requestutil "github.com/lmoretti/tasknest/internal/platform/request"
	"github.com/lmoretti/tasknest/internal/platform/respond"
)

// Handler exposes the authentication flows over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted under /api/v1/auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Logout needs a verified (non-expired) access token: the denylist entry
	// is keyed by the jti the middleware already validated.
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// # Endpoints

// register handles POST /api/v1/auth/register.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.CreateUser(request.Context(), CreateIdentityInput{
		Username:    payload.Username,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		Password:    payload.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeOutcome(writer, outcome, http.StatusCreated)
}

// login handles POST /api/v1/auth/login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.Login(
		request.Context(), payload.Login, payload.Password, middleware.RealIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeOutcome(writer, outcome, http.StatusOK)
}

// refresh handles POST /api/v1/auth/refresh.
//
// The endpoint is anonymous: the expired access token travels in the body,
// not the Authorization header, because the authentication middleware would
// reject it for being expired.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var payload refreshRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.service.ExchangeRefreshToken(
		request.Context(), payload.AccessToken, payload.RefreshToken,
		handler.service.signer.Key(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeOutcome(writer, outcome, http.StatusOK)
}

// logout handles POST /api/v1/auth/logout.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The body is optional: a client that lost its refresh token can still
	// kill the access token.
	var payload logoutRequest
	_ = requestutil.DecodeJSON(request, &payload)

	if err := handler.service.Logout(request.Context(), claims, payload.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Outcome Serialization

// writeOutcome maps an [AuthOutcome] to its HTTP representation. Success uses
// the flow's status; failure codes carry their contractual status.
func writeOutcome(writer http.ResponseWriter, outcome *AuthOutcome, successStatus int) {
	status := successStatus
	if !outcome.Success {
		switch outcome.Code {
		case CodeUserCreatedFailure:
			status = http.StatusBadRequest
		case CodeUserLoginFailure, CodeRefreshTokenFailure:
			status = http.StatusUnauthorized
		default:
			status = http.StatusBadRequest
		}
	}

	respond.JSON(writer, status, outcome)
}
